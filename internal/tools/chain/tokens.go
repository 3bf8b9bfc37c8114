package chain

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"noves-mcp-go/internal/analytics"
	"noves-mcp-go/internal/format"
	"noves-mcp-go/internal/provider"
	"noves-mcp-go/internal/tools"
)

type tokenArgs struct {
	Chain        string `json:"chain"`
	TokenAddress string `json:"tokenAddress"`
}

type historicalArgs struct {
	Chain        string `json:"chain"`
	TokenAddress string `json:"tokenAddress"`
	Timestamp    string `json:"timestamp"`
}

type comparisonArgs struct {
	Chain         string `json:"chain"`
	TokenAddress  string `json:"tokenAddress"`
	FromTimestamp string `json:"fromTimestamp"`
	ToTimestamp   string `json:"toTimestamp"`
}

func parseUnix(field, value string) (time.Time, error) {
	secs, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: expected Unix seconds", field, value)
	}
	return time.Unix(secs, 0).UTC(), nil
}

func currentTokenPrice(d *Deps) tools.Tool {
	h := &handler[tokenArgs]{
		name:        NameCurrentTokenPrice,
		title:       "Current Token Price",
		description: "Get current price of a token on a specific blockchain",
		errPrefix:   "Error fetching current token price",
		schema:      currentTokenPriceSchema,
	}
	h.run = func(ctx context.Context, args tokenArgs) (string, error) {
		price, err := d.tokenPrice(ctx, h.name, args.Chain, args.TokenAddress, "")
		if err != nil {
			return "", err
		}
		return format.CurrentPrice(args.TokenAddress, args.Chain, price, d.Now()), nil
	}
	return h.bind(d)
}

func historicalTokenPrice(d *Deps) tools.Tool {
	h := &handler[historicalArgs]{
		name:        NameHistoricalTokenPrice,
		title:       "Historical Token Price",
		description: "Get historical price of a token at a specific timestamp",
		errPrefix:   "Error fetching historical token price",
		schema:      historicalTokenPriceSchema,
	}
	h.run = func(ctx context.Context, args historicalArgs) (string, error) {
		at, err := parseUnix("timestamp", args.Timestamp)
		if err != nil {
			return "", err
		}
		price, err := d.tokenPrice(ctx, h.name, args.Chain, args.TokenAddress, args.Timestamp)
		if err != nil {
			return "", err
		}
		return format.HistoricalPrice(args.TokenAddress, args.Chain, args.Timestamp, at, price), nil
	}
	return h.bind(d)
}

// tokenPriceComparison fetches both ends of the range concurrently. An end
// equal to the current second is served by the latest price instead of a
// timestamped lookup.
func tokenPriceComparison(d *Deps) tools.Tool {
	h := &handler[comparisonArgs]{
		name:        NameTokenPriceComparison,
		title:       "Token Price Comparison",
		description: "Compare token price between two timestamps to show price change",
		errPrefix:   "Error comparing token prices",
		schema:      tokenPriceComparisonSchema,
	}
	h.run = func(ctx context.Context, args comparisonArgs) (string, error) {
		nowStr := strconv.FormatInt(d.Now().Unix(), 10)
		end := args.ToTimestamp
		if end == "" {
			end = nowStr
		}
		useLatest := end == nowStr

		fromTime, err := parseUnix("fromTimestamp", args.FromTimestamp)
		if err != nil {
			return "", err
		}
		toTime, err := parseUnix("toTimestamp", end)
		if err != nil {
			return "", err
		}

		var from, to *provider.TokenPrice
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			from, err = d.tokenPrice(gctx, h.name, args.Chain, args.TokenAddress, args.FromTimestamp)
			return err
		})
		g.Go(func() error {
			timestamp := end
			if useLatest {
				timestamp = ""
			}
			var err error
			to, err = d.tokenPrice(gctx, h.name, args.Chain, args.TokenAddress, timestamp)
			return err
		})
		if err := g.Wait(); err != nil {
			return "", err
		}

		fromAmount, err := analytics.ParseAmount(from.Price.Amount)
		if err != nil {
			return "", err
		}
		toAmount, err := analytics.ParseAmount(to.Price.Amount)
		if err != nil {
			return "", err
		}

		return format.PriceComparison(format.Comparison{
			TokenAddress: args.TokenAddress,
			Chain:        args.Chain,
			From:         from,
			To:           to,
			FromTime:     fromTime,
			ToTime:       toTime,
			Delta:        analytics.PriceDelta(fromAmount, toAmount),
		}), nil
	}
	return h.bind(d)
}
