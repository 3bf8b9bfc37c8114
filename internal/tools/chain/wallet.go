package chain

import (
	"context"

	"noves-mcp-go/internal/analytics"
	"noves-mcp-go/internal/format"
	"noves-mcp-go/internal/tools"
)

const defaultTimeframe = "30d"

type analyzeArgs struct {
	Chain         string `json:"chain"`
	WalletAddress string `json:"walletAddress"`
	Timeframe     string `json:"timeframe"`
}

func walletSummary(d *Deps) tools.Tool {
	h := &handler[walletArgs]{
		name:        NameWalletSummary,
		title:       "Wallet Summary",
		description: "Get a comprehensive summary of wallet activity with key insights",
		errPrefix:   "Error fetching wallet summary",
		schema:      walletSummarySchema,
		defaults:    walletArgs{Limit: 10},
	}
	h.run = func(ctx context.Context, args walletArgs) (string, error) {
		txs, err := d.recentTransactions(ctx, h.name, args.Chain, args.WalletAddress)
		if err != nil {
			return "", err
		}
		shown := analytics.Head(txs, limitOf(args.Limit))
		table := analytics.Frequencies(txs)
		return format.WalletSummary(args.WalletAddress, args.Chain, len(txs), shown, table), nil
	}
	return h.bind(d)
}

// analyzeWallet reports on the whole recent batch. The timeframe is shown as
// given and does not filter anything.
func analyzeWallet(d *Deps) tools.Tool {
	h := &handler[analyzeArgs]{
		name:        NameAnalyzeWallet,
		title:       "Analyze Wallet",
		description: "Analyze wallet activity and provide insights with natural language summaries",
		errPrefix:   "Error analyzing wallet",
		schema:      analyzeWalletSchema,
		defaults:    analyzeArgs{Timeframe: defaultTimeframe},
	}
	h.run = func(ctx context.Context, args analyzeArgs) (string, error) {
		txs, err := d.recentTransactions(ctx, h.name, args.Chain, args.WalletAddress)
		if err != nil {
			return "", err
		}
		table := analytics.Frequencies(txs)
		return format.WalletAnalysis(args.WalletAddress, args.Chain, args.Timeframe, txs, table), nil
	}
	return h.bind(d)
}
