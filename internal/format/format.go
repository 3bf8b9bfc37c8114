// Package format renders provider data as the markdown-flavoured text returned by the tools.
// Every function here is pure; timestamps are passed in by the caller.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"noves-mcp-go/internal/analytics"
	"noves-mcp-go/internal/provider"
)

const (
	unknown      = "Unknown"
	notAvailable = "N/A"

	isoLayout        = "2006-01-02T15:04:05.000Z"
	localeDateLayout = "1/2/2006"
	localeTimeLayout = "3:04:05 PM"

	breakdownTop = 5
	sampleSize   = 3
)

var printer = message.NewPrinter(language.English)

// ISOTime formats t like JavaScript's Date.toISOString.
func ISOTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// LocaleDate formats the date part of t in en-US form, in UTC.
func LocaleDate(t time.Time) string {
	return t.UTC().Format(localeDateLayout)
}

// LocaleTime formats the time part of t in en-US form, in UTC.
func LocaleTime(t time.Time) string {
	return t.UTC().Format(localeTimeLayout)
}

// Signed formats v with prec decimals and a leading "+" for non-negative values.
func Signed(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if v >= 0 {
		// -0 also lands here
		return "+" + strings.TrimPrefix(s, "-")
	}
	return s
}

// Liquidity formats a pool liquidity in dollars with grouping, or N/A when unset.
func Liquidity(v float64) string {
	if v == 0 || math.IsNaN(v) {
		return notAvailable
	}
	return "$" + printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// RecentTransactions renders the recent transaction list of a wallet.
func RecentTransactions(wallet, chain string, total int, shown []provider.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d total transactions for wallet %s on %s. Showing %d most recent:\n\n",
		total, wallet, chain, len(shown))

	for i, tx := range shown {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. **%s**\n   - Type: %s\n   - Hash: %s\n   ", i+1, tx.Description, tx.Type, tx.TransactionHash)
	}
	return b.String()
}

// TransactionDetails renders a single transaction found in a recent batch.
func TransactionDetails(tx provider.Transaction, chain string) string {
	return fmt.Sprintf(`**Transaction Analysis**

**Description:** %s
**Type:** %s
**Hash:** %s
**Chain:** %s`, tx.Description, tx.Type, tx.TransactionHash, chain)
}

// TransactionNotFound is the text for a hash missing from the recent batch.
func TransactionNotFound(hash, chain string) string {
	return fmt.Sprintf("Transaction %s not found in recent transactions on %s. "+
		"This might be an older transaction or from a different address.", hash, chain)
}

// TranslatedTransaction renders a provider translation of one transaction.
func TranslatedTransaction(hash, chain string, tx provider.Transaction) string {
	return fmt.Sprintf(`**Transaction Translation**

**Hash:** %s
**Chain:** %s
**Description:** %s
**Type:** %s

**Human-Readable Summary:**
%s`, hash, chain, tx.Description, tx.Type, tx.Description)
}

// TransactionTransfers renders the transfer-focused view of recent transactions.
func TransactionTransfers(wallet, chain string, shown []provider.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Token Transfer Analysis for %s**\n\n**Chain:** %s\n**Analyzing:** %d recent transactions\n\n"+
		"**Detailed Transfer Information:**\n\n", wallet, chain, len(shown))

	for i, tx := range shown {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. **%s**\n   - **Type:** %s\n   - **Hash:** %s\n   - **Transfer Details:** %s",
			i+1, tx.Description, tx.Type, tx.TransactionHash, tx.Description)
	}
	return b.String()
}

func mostCommon(table analytics.FrequencyTable, unit string) string {
	top, ok := table.MostCommon()
	if !ok {
		return "None"
	}
	return fmt.Sprintf("%s (%d%s)", top.Type, top.Count, unit)
}

func writeBreakdown(b *strings.Builder, rows []analytics.TypeCount) {
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "- %s: %d transactions", row.Type, row.Count)
	}
}

func writeDescriptions(b *strings.Builder, txs []provider.Transaction) {
	for i, tx := range txs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "%d. %s", i+1, tx.Description)
	}
}

// WalletSummary renders the wallet overview. table covers every fetched transaction,
// shown only the truncated recent list.
func WalletSummary(wallet, chain string, total int, shown []provider.Transaction, table analytics.FrequencyTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, `**Comprehensive Wallet Summary**

**Wallet:** %s
**Chain:** %s
**Analysis of %d Recent Transactions**

**Quick Stats:**
- Total Recent Transactions: %d
- Most Common Activity: %s
- Transaction Types: %d

**Recent Activity:**
`, wallet, chain, len(shown), total, mostCommon(table, "x"), table.Len())

	writeDescriptions(&b, shown)
	b.WriteString("\n\n**Activity Breakdown:**\n")

	rows := table.Sorted()
	if len(rows) > breakdownTop {
		rows = rows[:breakdownTop]
	}
	writeBreakdown(&b, rows)
	return b.String()
}

// WalletAnalysis renders the type breakdown of a wallet. timeframe is a label only.
func WalletAnalysis(wallet, chain, timeframe string, txs []provider.Transaction, table analytics.FrequencyTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, `**Wallet Analysis for %s**

**Summary:**
- Total Recent Transactions: %d
- Unique Transaction Types: %d
- Most Common Activity: %s
- Chain: %s
- Analysis Period: %s

**Transaction Type Breakdown:**
`, wallet, len(txs), table.Len(), mostCommon(table, " times"), chain, timeframe)

	writeBreakdown(&b, table.Sorted())
	b.WriteString("\n\n**Recent Activity Sample:**\n")
	writeDescriptions(&b, analytics.Head(txs, sampleSize))
	return b.String()
}

func writeTokenIdentity(b *strings.Builder, token provider.Token) {
	if token.Symbol != "" {
		fmt.Fprintf(b, "**Symbol:** %s\n", token.Symbol)
	}
	if token.Name != "" {
		fmt.Fprintf(b, "**Name:** %s\n", token.Name)
	}
}

func writePricingDetails(b *strings.Builder, price *provider.TokenPrice) {
	exchange, pool, liquidity := unknown, notAvailable, notAvailable
	if pb := price.PricedBy; pb != nil {
		if pb.Exchange != nil {
			exchange = or(pb.Exchange.Name, unknown)
		}
		pool = or(pb.PoolAddress, notAvailable)
		liquidity = Liquidity(pb.Liquidity)
	}

	fmt.Fprintf(b, "**Pricing Details:**\n- Priced by: %s (%s)\n- Liquidity: %s\n- Price Type: %s",
		exchange, pool, liquidity, or(price.PriceType, unknown))
}

func writePriceInfo(b *strings.Builder, price *provider.TokenPrice) {
	fmt.Fprintf(b, "**Price Information:**\n- Amount: %s\n- Currency: %s\n- Status: %s\n- Block: %s\n",
		or(price.Price.Amount, notAvailable), or(price.Price.Currency, unknown), or(price.Price.Status, unknown), or(price.Block, notAvailable))
}

// CurrentPrice renders a latest-price quote. retrievedAt is the wall-clock time of the lookup.
func CurrentPrice(tokenAddress, chain string, price *provider.TokenPrice, retrievedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Current Token Price**\n\n**Token Address:** %s\n**Chain:** %s\n**Current Price:** %s %s\n",
		tokenAddress, chain, or(price.Price.Amount, notAvailable), or(price.Price.Currency, unknown))
	writeTokenIdentity(&b, price.Token)

	b.WriteString("\n")
	writePriceInfo(&b, price)
	fmt.Fprintf(&b, "- Retrieved at: %s\n\n", ISOTime(retrievedAt))
	writePricingDetails(&b, price)
	return b.String()
}

// HistoricalPrice renders a quote at a Unix timestamp; at is that timestamp as a time.
func HistoricalPrice(tokenAddress, chain, timestamp string, at time.Time, price *provider.TokenPrice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Historical Token Price**\n\n**Token Address:** %s\n**Chain:** %s\n**Historical Price:** %s %s\n**Date:** %s\n",
		tokenAddress, chain, or(price.Price.Amount, notAvailable), or(price.Price.Currency, unknown), ISOTime(at))
	writeTokenIdentity(&b, price.Token)

	b.WriteString("\n")
	writePriceInfo(&b, price)
	fmt.Fprintf(&b, "- Timestamp: %s (Unix)\n- Date: %s %s\n\n", timestamp, LocaleDate(at), LocaleTime(at))
	writePricingDetails(&b, price)
	return b.String()
}

// Comparison holds everything rendered by PriceComparison.
type Comparison struct {
	TokenAddress string
	Chain        string
	From, To     *provider.TokenPrice
	FromTime     time.Time
	ToTime       time.Time
	Delta        analytics.Delta
}

// Direction returns the indicator and verb of a price move.
func Direction(d analytics.Delta) (indicator, verb string) {
	if d.Increased() {
		return "📈", "increased"
	}
	return "📉", "decreased"
}

// PriceComparison renders the change of a token price between two points in time.
func PriceComparison(c Comparison) string {
	indicator, verb := Direction(c.Delta)
	currency := or(c.From.Price.Currency, unknown)

	var b strings.Builder
	fmt.Fprintf(&b, "**Token Price Comparison**\n\n**Token Address:** %s\n**Chain:** %s\n", c.TokenAddress, c.Chain)
	writeTokenIdentity(&b, c.From.Token)

	fmt.Fprintf(&b, `
**Price Comparison:**
- **From:** %s - %s %s
- **To:** %s - %s %s

**Price Movement:** %s
- **Change:** %s %s
- **Percentage:** %s%%
- **Direction:** Price has %s %s

**Analysis:**
The token price has %s by %s%% over the selected period.

**Pricing Details:**
- From Block: %s
- To Block: %s
- Price Type: %s`,
		LocaleDate(c.FromTime), c.From.Price.Amount, currency,
		LocaleDate(c.ToTime), c.To.Price.Amount, or(c.To.Price.Currency, unknown),
		indicator,
		Signed(c.Delta.Change, 6), currency,
		Signed(c.Delta.Percentage, 2),
		verb, indicator,
		verb, strconv.FormatFloat(math.Abs(c.Delta.Percentage), 'f', 2, 64),
		or(c.From.Block, notAvailable), or(c.To.Block, notAvailable), or(c.From.PriceType, unknown))
	return b.String()
}
