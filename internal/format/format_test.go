package format

import (
	"strings"
	"testing"
	"time"

	"noves-mcp-go/internal/analytics"
	"noves-mcp-go/internal/provider"
)

var sampleTxs = []provider.Transaction{
	{TransactionHash: "0x01", Description: "Swapped 1 ETH for 3,000 USDC", Type: "swap"},
	{TransactionHash: "0x02", Description: "Sent 20 USDC", Type: "sendToken"},
	{TransactionHash: "0x03", Description: "Swapped 500 USDC for 0.16 ETH", Type: "swap"},
	{TransactionHash: "0x04", Description: "Received 1 NFT", Type: "receiveNFT"},
}

func TestTimeFormats(t *testing.T) {
	at := time.Unix(1704207845, 0) // 2024-01-02 15:04:05 UTC

	if got := ISOTime(at); got != "2024-01-02T15:04:05.000Z" {
		t.Errorf("ISOTime: got %s", got)
	}
	if got := LocaleDate(at); got != "1/2/2024" {
		t.Errorf("LocaleDate: got %s", got)
	}
	if got := LocaleTime(at); got != "3:04:05 PM" {
		t.Errorf("LocaleTime: got %s", got)
	}
}

func TestSigned(t *testing.T) {
	tests := []struct {
		v    float64
		prec int
		want string
	}{
		{2, 6, "+2.000000"},
		{20, 2, "+20.00"},
		{0, 2, "+0.00"},
		{-1.5, 2, "-1.50"},
		{-0.125, 6, "-0.125000"},
	}

	for _, tt := range tests {
		if got := Signed(tt.v, tt.prec); got != tt.want {
			t.Errorf("Signed(%v, %d): expected %s, got %s", tt.v, tt.prec, tt.want, got)
		}
	}
}

func TestLiquidity(t *testing.T) {
	if got := Liquidity(0); got != "N/A" {
		t.Errorf("Expected N/A for zero liquidity, got %s", got)
	}
	if got := Liquidity(1234567.5); got != "$1,234,567.5" {
		t.Errorf("Expected grouped liquidity, got %s", got)
	}
}

func TestRecentTransactions(t *testing.T) {
	text := RecentTransactions("0xwallet", "eth", 4, sampleTxs[:2])

	if !strings.HasPrefix(text, "Found 4 total transactions for wallet 0xwallet on eth. Showing 2 most recent:\n\n") {
		t.Errorf("Unexpected header: %q", text)
	}
	if !strings.Contains(text, "1. **Swapped 1 ETH for 3,000 USDC**\n   - Type: swap\n   - Hash: 0x01\n") {
		t.Errorf("Missing first transaction block: %q", text)
	}
	if !strings.Contains(text, "\n2. **Sent 20 USDC**") {
		t.Errorf("Missing second transaction: %q", text)
	}
	if strings.Contains(text, "0x03") {
		t.Error("Only shown transactions should be rendered")
	}
}

func TestRecentTransactions_ExactLayout(t *testing.T) {
	text := RecentTransactions("0xwallet", "eth", 2, sampleTxs[:2])

	want := "Found 2 total transactions for wallet 0xwallet on eth. Showing 2 most recent:\n\n" +
		"1. **" + sampleTxs[0].Description + "**\n   - Type: " + sampleTxs[0].Type + "\n   - Hash: " + sampleTxs[0].TransactionHash + "\n   \n" +
		"2. **" + sampleTxs[1].Description + "**\n   - Type: " + sampleTxs[1].Type + "\n   - Hash: " + sampleTxs[1].TransactionHash + "\n   "
	if text != want {
		t.Errorf("Unexpected layout\n got: %q\nwant: %q", text, want)
	}
}

func TestTransactionNotFound(t *testing.T) {
	text := TransactionNotFound("0xdead", "polygon")
	if !strings.Contains(text, "0xdead") || !strings.Contains(text, "polygon") {
		t.Errorf("Expected hash and chain in %q", text)
	}
}

func TestTranslatedTransaction_RepeatsDescription(t *testing.T) {
	text := TranslatedTransaction("0x01", "eth", sampleTxs[0])
	if strings.Count(text, sampleTxs[0].Description) != 2 {
		t.Errorf("Expected description twice in %q", text)
	}
	if !strings.HasSuffix(text, "**Human-Readable Summary:**\n"+sampleTxs[0].Description) {
		t.Errorf("Unexpected summary section: %q", text)
	}
}

func TestTransactionTransfers(t *testing.T) {
	text := TransactionTransfers("0xwallet", "eth", sampleTxs[:2])

	if !strings.Contains(text, "**Analyzing:** 2 recent transactions") {
		t.Errorf("Missing count: %q", text)
	}
	if !strings.Contains(text, "   - **Transfer Details:** Sent 20 USDC") {
		t.Errorf("Missing transfer details: %q", text)
	}
}

func TestWalletSummary(t *testing.T) {
	table := analytics.Frequencies(sampleTxs)
	text := WalletSummary("0xwallet", "eth", len(sampleTxs), sampleTxs[:1], table)

	for _, want := range []string{
		"**Analysis of 1 Recent Transactions**",
		"- Total Recent Transactions: 4",
		"- Most Common Activity: swap (2x)",
		"- Transaction Types: 3",
		"**Recent Activity:**\n1. Swapped 1 ETH for 3,000 USDC\n\n",
		"**Activity Breakdown:**\n- swap: 2 transactions\n- sendToken: 1 transactions\n- receiveNFT: 1 transactions",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestWalletSummary_Empty(t *testing.T) {
	text := WalletSummary("0xwallet", "eth", 0, nil, analytics.Frequencies(nil))
	if !strings.Contains(text, "- Most Common Activity: None") {
		t.Errorf("Expected None for empty wallet: %s", text)
	}
}

func TestWalletSummary_BreakdownTopFive(t *testing.T) {
	var txs []provider.Transaction
	for _, typ := range []string{"a", "b", "c", "d", "e", "f", "f"} {
		txs = append(txs, provider.Transaction{Type: typ})
	}
	text := WalletSummary("w", "eth", len(txs), nil, analytics.Frequencies(txs))

	if !strings.Contains(text, "**Activity Breakdown:**\n- f: 2 transactions\n- a: 1 transactions") {
		t.Errorf("Expected f first in breakdown:\n%s", text)
	}
	if !strings.HasSuffix(text, "- d: 1 transactions") {
		t.Errorf("Expected breakdown to end with the fifth type:\n%s", text)
	}
	if strings.Contains(text, "- e: 1") {
		t.Errorf("Sixth type should be cut from breakdown:\n%s", text)
	}
}

func TestWalletAnalysis(t *testing.T) {
	text := WalletAnalysis("0xwallet", "eth", "7d", sampleTxs, analytics.Frequencies(sampleTxs))

	for _, want := range []string{
		"- Total Recent Transactions: 4",
		"- Unique Transaction Types: 3",
		"- Most Common Activity: swap (2 times)",
		"- Analysis Period: 7d",
		"**Recent Activity Sample:**\n1. Swapped 1 ETH for 3,000 USDC\n2. Sent 20 USDC\n3. Swapped 500 USDC for 0.16 ETH",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Received 1 NFT") {
		t.Error("Activity sample should hold three transactions")
	}
}

func samplePrice(amount string) *provider.TokenPrice {
	return &provider.TokenPrice{
		Chain: "eth",
		Block: "19000000",
		Token: provider.Token{Address: "0xtoken", Symbol: "WETH", Name: "Wrapped Ether"},
		Price: provider.Price{Amount: amount, Currency: "USD", Status: "resolved"},
		PricedBy: &provider.PricedBy{
			PoolAddress: "0xpool",
			Exchange:    &provider.Exchange{Name: "Uniswap V3"},
			Liquidity:   1500,
		},
		PriceType: "dexHighestLiquidity",
	}
}

func TestCurrentPrice(t *testing.T) {
	text := CurrentPrice("0xtoken", "eth", samplePrice("3012.55"), time.Unix(1704207845, 0))

	for _, want := range []string{
		"**Current Price:** 3012.55 USD",
		"**Symbol:** WETH",
		"**Name:** Wrapped Ether",
		"- Status: resolved",
		"- Block: 19000000",
		"- Retrieved at: 2024-01-02T15:04:05.000Z",
		"- Priced by: Uniswap V3 (0xpool)",
		"- Liquidity: $1,500",
		"- Price Type: dexHighestLiquidity",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestCurrentPrice_MissingFieldsUsePlaceholders(t *testing.T) {
	price := &provider.TokenPrice{}
	text := CurrentPrice("0xtoken", "eth", price, time.Unix(0, 0))

	for _, want := range []string{
		"**Current Price:** N/A Unknown",
		"- Amount: N/A",
		"- Currency: Unknown",
		"- Priced by: Unknown (N/A)",
		"- Liquidity: N/A",
		"- Block: N/A",
		"- Price Type: Unknown",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "**Symbol:**") || strings.Contains(text, "**Name:**") {
		t.Error("Absent symbol and name should be omitted")
	}
}

func TestHistoricalPrice(t *testing.T) {
	text := HistoricalPrice("0xtoken", "eth", "1704207845", time.Unix(1704207845, 0), samplePrice("2300"))

	for _, want := range []string{
		"**Historical Price:** 2300 USD",
		"**Date:** 2024-01-02T15:04:05.000Z",
		"- Timestamp: 1704207845 (Unix)",
		"- Date: 1/2/2024 3:04:05 PM",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestPriceComparison(t *testing.T) {
	text := PriceComparison(Comparison{
		TokenAddress: "0xtoken",
		Chain:        "eth",
		From:         samplePrice("10"),
		To:           samplePrice("12"),
		FromTime:     time.Unix(1000, 0),
		ToTime:       time.Unix(1704207845, 0),
		Delta:        analytics.PriceDelta(10, 12),
	})

	for _, want := range []string{
		"- **From:** 1/1/1970 - 10 USD",
		"- **To:** 1/2/2024 - 12 USD",
		"**Price Movement:** 📈",
		"- **Change:** +2.000000 USD",
		"- **Percentage:** +20.00%",
		"- **Direction:** Price has increased 📈",
		"The token price has increased by 20.00% over the selected period.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestPriceComparison_Decrease(t *testing.T) {
	text := PriceComparison(Comparison{
		TokenAddress: "0xtoken",
		Chain:        "eth",
		From:         samplePrice("20"),
		To:           samplePrice("15"),
		FromTime:     time.Unix(1000, 0),
		ToTime:       time.Unix(2000, 0),
		Delta:        analytics.PriceDelta(20, 15),
	})

	for _, want := range []string{
		"- **Change:** -5.000000 USD",
		"- **Percentage:** -25.00%",
		"Price has decreased 📉",
		"The token price has decreased by 25.00% over the selected period.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestPriceComparison_MissingCurrency(t *testing.T) {
	from, to := samplePrice("1"), samplePrice("2")
	from.Price.Currency = ""
	to.Price.Currency = ""

	text := PriceComparison(Comparison{
		TokenAddress: "0xtoken",
		Chain:        "eth",
		From:         from,
		To:           to,
		FromTime:     time.Unix(1000, 0),
		ToTime:       time.Unix(2000, 0),
		Delta:        analytics.PriceDelta(1, 2),
	})

	for _, want := range []string{
		"- **From:** 1/1/1970 - 1 Unknown",
		"- **To:** 1/1/1970 - 2 Unknown",
		"- **Change:** +1.000000 Unknown",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}
