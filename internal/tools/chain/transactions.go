package chain

import (
	"context"
	"strings"

	"noves-mcp-go/internal/analytics"
	"noves-mcp-go/internal/format"
	"noves-mcp-go/internal/tools"
)

type walletArgs struct {
	Chain         string  `json:"chain"`
	WalletAddress string  `json:"walletAddress"`
	Limit         float64 `json:"limit"`
}

type transactionArgs struct {
	Chain           string `json:"chain"`
	TransactionHash string `json:"transactionHash"`
}

func recentTransactions(d *Deps) tools.Tool {
	h := &handler[walletArgs]{
		name:        NameRecentTransactions,
		title:       "Recent Transactions",
		description: "Get recent transactions for a wallet address with natural language descriptions",
		errPrefix:   "Error fetching recent transactions",
		schema:      recentTransactionsSchema,
		defaults:    walletArgs{Limit: 10},
	}
	h.run = func(ctx context.Context, args walletArgs) (string, error) {
		txs, err := d.recentTransactions(ctx, h.name, args.Chain, args.WalletAddress)
		if err != nil {
			return "", err
		}
		shown := analytics.Head(txs, limitOf(args.Limit))
		return format.RecentTransactions(args.WalletAddress, args.Chain, len(txs), shown), nil
	}
	return h.bind(d)
}

func transactionDetails(d *Deps) tools.Tool {
	h := &handler[transactionArgs]{
		name:        NameTransactionDetails,
		title:       "Transaction Details",
		description: "Get detailed analysis of a specific transaction with natural language description",
		errPrefix:   "Error fetching transaction details",
		schema:      transactionHashSchema("Transaction hash to analyze"),
	}
	h.run = func(ctx context.Context, args transactionArgs) (string, error) {
		// The hash is passed as the address of the recent-transactions lookup;
		// only transactions in that batch can be found.
		txs, err := d.recentTransactions(ctx, h.name, args.Chain, args.TransactionHash)
		if err != nil {
			return "", err
		}
		for _, tx := range txs {
			if strings.EqualFold(tx.TransactionHash, args.TransactionHash) {
				return format.TransactionDetails(tx, args.Chain), nil
			}
		}
		return format.TransactionNotFound(args.TransactionHash, args.Chain), nil
	}
	return h.bind(d)
}

func translatedTransaction(d *Deps) tools.Tool {
	h := &handler[transactionArgs]{
		name:        NameTranslatedTransaction,
		title:       "Translated Transaction",
		description: "Get human-readable description of a specific transaction using Noves translation",
		errPrefix:   "Error fetching translated transaction",
		schema:      transactionHashSchema("Transaction hash to get human-readable description"),
	}
	h.run = func(ctx context.Context, args transactionArgs) (string, error) {
		tx, err := d.translatedTransaction(ctx, h.name, args.Chain, args.TransactionHash)
		if err != nil {
			return "", err
		}
		return format.TranslatedTransaction(args.TransactionHash, args.Chain, *tx), nil
	}
	return h.bind(d)
}

func transactionTransfers(d *Deps) tools.Tool {
	h := &handler[walletArgs]{
		name:        NameTransactionTransfers,
		title:       "Transaction Transfers",
		description: "Get detailed transfer information from recent transactions (focus on token movements)",
		errPrefix:   "Error fetching transaction transfers",
		schema:      transactionTransfersSchema,
		defaults:    walletArgs{Limit: 5},
	}
	h.run = func(ctx context.Context, args walletArgs) (string, error) {
		txs, err := d.recentTransactions(ctx, h.name, args.Chain, args.WalletAddress)
		if err != nil {
			return "", err
		}
		shown := analytics.Head(txs, limitOf(args.Limit))
		return format.TransactionTransfers(args.WalletAddress, args.Chain, shown), nil
	}
	return h.bind(d)
}
