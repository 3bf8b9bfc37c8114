package chain

import (
	"strconv"
	"time"
)

const (
	chainDescription     = "Blockchain network"
	chainListDescription = "Blockchain network (e.g., ethereum, polygon, arbitrum)"
	walletDescription    = "Wallet address to analyze"
	tokenDescription     = "Token contract address"
)

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func limitProp(description string, def int) map[string]any {
	return map[string]any{"type": "number", "description": description, "default": def}
}

func recentTransactionsSchema(time.Time) map[string]any {
	return objectSchema(map[string]any{
		"chain":         stringProp("Blockchain network (e.g., ethereum, polygon, arbitrum, bsc)"),
		"walletAddress": stringProp(walletDescription),
		"limit":         limitProp("Number of transactions to return (default: 10)", 10),
	}, "chain", "walletAddress")
}

func transactionHashSchema(hashDescription string) func(time.Time) map[string]any {
	return func(time.Time) map[string]any {
		return objectSchema(map[string]any{
			"chain":           stringProp(chainDescription),
			"transactionHash": stringProp(hashDescription),
		}, "chain", "transactionHash")
	}
}

func transactionTransfersSchema(time.Time) map[string]any {
	return objectSchema(map[string]any{
		"chain":         stringProp(chainDescription),
		"walletAddress": stringProp(walletDescription),
		"limit":         limitProp("Number of transactions to return (default: 5)", 5),
	}, "chain", "walletAddress")
}

func walletSummarySchema(time.Time) map[string]any {
	return objectSchema(map[string]any{
		"chain":         stringProp(chainDescription),
		"walletAddress": stringProp(walletDescription),
		"limit":         limitProp("Number of recent transactions to include in summary (default: 10)", 10),
	}, "chain", "walletAddress")
}

func analyzeWalletSchema(time.Time) map[string]any {
	timeframe := stringProp(`Time period to analyze (e.g., "7d", "30d", "1y")`)
	timeframe["default"] = defaultTimeframe

	return objectSchema(map[string]any{
		"chain":         stringProp(chainDescription),
		"walletAddress": stringProp(walletDescription),
		"timeframe":     timeframe,
	}, "chain", "walletAddress")
}

func currentTokenPriceSchema(time.Time) map[string]any {
	return objectSchema(map[string]any{
		"chain":        stringProp(chainListDescription),
		"tokenAddress": stringProp(tokenDescription),
	}, "chain", "tokenAddress")
}

func historicalTokenPriceSchema(time.Time) map[string]any {
	return objectSchema(map[string]any{
		"chain":        stringProp(chainListDescription),
		"tokenAddress": stringProp(tokenDescription),
		"timestamp":    stringProp("Unix timestamp for historical price"),
	}, "chain", "tokenAddress", "timestamp")
}

// tokenPriceComparisonSchema advertises now as the default end of the range.
func tokenPriceComparisonSchema(now time.Time) map[string]any {
	to := stringProp("End Unix timestamp for comparison (default: current time)")
	to["default"] = strconv.FormatInt(now.Unix(), 10)

	return objectSchema(map[string]any{
		"chain":         stringProp(chainListDescription),
		"tokenAddress":  stringProp(tokenDescription),
		"fromTimestamp": stringProp("Start Unix timestamp for comparison"),
		"toTimestamp":   to,
	}, "chain", "tokenAddress", "fromTimestamp")
}
