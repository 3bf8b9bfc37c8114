package provider

import (
	"context"
	"fmt"
)

// ChainData is the set of capabilities the tools consume from a blockchain data provider.
type ChainData interface {
	// RecentTransactions returns the recent transactions of an account in provider order.
	RecentTransactions(ctx context.Context, chain, address string) ([]Transaction, error)

	// TranslatedTransaction returns the classified form of a single transaction.
	TranslatedTransaction(ctx context.Context, chain, txHash string) (*Transaction, error)

	// TokenPrice returns the price of a token. An empty timestamp asks for the latest price.
	TokenPrice(ctx context.Context, chain, tokenAddress, timestamp string) (*TokenPrice, error)
}

// Transaction is a classified on-chain transaction.
type Transaction struct {
	TransactionHash string `json:"transactionHash"`
	Description     string `json:"description"`
	Type            string `json:"type"`
}

// TokenPrice is a price quote for a token at a block.
type TokenPrice struct {
	Chain       string    `json:"chain"`
	Block       string    `json:"block"`
	Token       Token     `json:"token"`
	Price       Price     `json:"price"`
	PricedBy    *PricedBy `json:"pricedBy,omitempty"`
	PriceType   string    `json:"priceType"`
	PriceStatus string    `json:"priceStatus"`
}

// Token identifies the priced token.
type Token struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Price carries the amount as a decimal string, exactly as the provider sent it.
type Price struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// PricedBy describes the pool that produced the quote.
type PricedBy struct {
	PoolAddress string    `json:"poolAddress,omitempty"`
	Exchange    *Exchange `json:"exchange,omitempty"`
	Liquidity   float64   `json:"liquidity,omitempty"`
}

// Exchange names the venue of a pool.
type Exchange struct {
	Name string `json:"name"`
}

// Error is returned by provider clients for failed lookups.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: provider returned status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}
