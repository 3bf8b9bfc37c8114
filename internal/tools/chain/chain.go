// Package chain implements the wallet, transaction and token price tools on top
// of a provider.ChainData.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"noves-mcp-go/internal/provider"
	"noves-mcp-go/internal/tools"
)

// Tool names as published by tools/list.
const (
	NameRecentTransactions    = "get_recent_transactions"
	NameTransactionDetails    = "get_transaction_details"
	NameTranslatedTransaction = "get_translated_transaction"
	NameTransactionTransfers  = "get_transaction_transfers"
	NameWalletSummary         = "get_wallet_summary"
	NameAnalyzeWallet         = "analyze_wallet"
	NameCurrentTokenPrice     = "get_current_token_price"
	NameHistoricalTokenPrice  = "get_historical_token_price"
	NameTokenPriceComparison  = "get_token_price_comparison"
)

// Provider operation names reported to the observer.
const (
	opRecentTransactions    = "recent_transactions"
	opTranslatedTransaction = "translated_transaction"
	opTokenPrice            = "token_price"
)

// Deps are the collaborators shared by every chain tool.
type Deps struct {
	Provider provider.ChainData
	Observer tools.Observer
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() *Deps {
	if d.Observer == nil {
		d.Observer = tools.NopObserver{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &d
}

// Tools returns the nine chain tools in catalog order.
func Tools(deps Deps) []tools.Tool {
	d := deps.withDefaults()
	return []tools.Tool{
		recentTransactions(d),
		transactionDetails(d),
		translatedTransaction(d),
		transactionTransfers(d),
		walletSummary(d),
		analyzeWallet(d),
		currentTokenPrice(d),
		historicalTokenPrice(d),
		tokenPriceComparison(d),
	}
}

// Names returns the tool names in catalog order.
func Names() []string {
	return []string{
		NameRecentTransactions,
		NameTransactionDetails,
		NameTranslatedTransaction,
		NameTransactionTransfers,
		NameWalletSummary,
		NameAnalyzeWallet,
		NameCurrentTokenPrice,
		NameHistoricalTokenPrice,
		NameTokenPriceComparison,
	}
}

// Register adds the chain tools to registry.
func Register(registry *tools.Registry, deps Deps) {
	registry.Register(Tools(deps)...)
}

// handler adapts a typed run function to tools.Tool. It owns argument
// validation and turns every failure into "<errPrefix>: <message>" text.
type handler[A any] struct {
	name        string
	title       string
	description string
	errPrefix   string
	schema      func(now time.Time) map[string]any
	defaults    A
	run         func(ctx context.Context, args A) (string, error)

	deps      *Deps
	validator *tools.Validator
}

func (h *handler[A]) bind(d *Deps) *handler[A] {
	h.deps = d
	h.validator = tools.MustValidator(h.name, h.schema(d.Now()))
	return h
}

func (h *handler[A]) Name() string {
	return h.name
}

// Definition builds the catalog entry. Schema defaults that depend on the
// clock are evaluated on every call.
func (h *handler[A]) Definition() tools.Definition {
	return tools.Definition{
		Name:        h.name,
		Description: h.description,
		InputSchema: h.schema(h.deps.Now()),
		Annotations: &tools.Annotations{
			Title:         h.title,
			ReadOnlyHint:  true,
			OpenWorldHint: true,
		},
	}
}

func (h *handler[A]) Call(ctx context.Context, raw json.RawMessage) (*tools.Result, error) {
	args := h.defaults

	h.deps.Observer.ValidationStarted(ctx, h.name)
	err := h.validator.Decode(raw, &args)
	h.deps.Observer.ValidationFinished(ctx, h.name, err)
	if err != nil {
		return h.fail(ctx, err), nil
	}

	text, err := h.run(ctx, args)
	if err != nil {
		return h.fail(ctx, err), nil
	}
	return tools.TextResult(text), nil
}

func (h *handler[A]) fail(ctx context.Context, err error) *tools.Result {
	h.deps.Observer.ToolFailed(ctx, h.name, err)
	return tools.ErrorResult(fmt.Sprintf("%s: %s", h.errPrefix, err.Error()))
}

// observe reports a provider call to the observer around call.
func observe[T any](ctx context.Context, d *Deps, tool, op string, call func() (T, error)) (T, error) {
	d.Observer.ProviderCallStarted(ctx, tool, op)
	start := time.Now()
	out, err := call()
	d.Observer.ProviderCallFinished(ctx, tool, op, time.Since(start), err)
	return out, err
}

func (d *Deps) recentTransactions(ctx context.Context, tool, chain, address string) ([]provider.Transaction, error) {
	return observe(ctx, d, tool, opRecentTransactions, func() ([]provider.Transaction, error) {
		return d.Provider.RecentTransactions(ctx, chain, address)
	})
}

func (d *Deps) translatedTransaction(ctx context.Context, tool, chain, hash string) (*provider.Transaction, error) {
	tx, err := observe(ctx, d, tool, opTranslatedTransaction, func() (*provider.Transaction, error) {
		return d.Provider.TranslatedTransaction(ctx, chain, hash)
	})
	if err == nil && tx == nil {
		err = errors.New("provider returned no transaction")
	}
	return tx, err
}

// tokenPrice looks up a price; an empty timestamp asks for the latest one.
func (d *Deps) tokenPrice(ctx context.Context, tool, chain, token, timestamp string) (*provider.TokenPrice, error) {
	price, err := observe(ctx, d, tool, opTokenPrice, func() (*provider.TokenPrice, error) {
		return d.Provider.TokenPrice(ctx, chain, token, timestamp)
	})
	if err == nil && price == nil {
		err = errors.New("provider returned no price data")
	}
	return price, err
}

// limitOf converts a JSON number limit to a slice bound, truncating toward zero.
func limitOf(limit float64) int {
	switch {
	case math.IsNaN(limit):
		return 0
	case limit > math.MaxInt32:
		return math.MaxInt32
	case limit < math.MinInt32:
		return math.MinInt32
	}
	return int(limit)
}
