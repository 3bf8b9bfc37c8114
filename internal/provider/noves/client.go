package noves

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"noves-mcp-go/internal/provider"
)

const (
	DefaultTranslateURL = "https://translate.noves.fi"
	DefaultPricingURL   = "https://pricing.noves.fi"

	apiKeyHeader = "apiKey"
)

// Config contains the client configuration.
type Config struct {
	TranslateURL string
	PricingURL   string
	APIKey       string
	Timeout      time.Duration

	// RateLimit is the sustained requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
}

// Client talks to the Noves translate and pricing REST APIs.
type Client struct {
	translateURL string
	pricingURL   string
	apiKey       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       zerolog.Logger
}

var _ provider.ChainData = (*Client)(nil)

// NewClient creates a new Noves client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.TranslateURL == "" {
		cfg.TranslateURL = DefaultTranslateURL
	}
	if cfg.PricingURL == "" {
		cfg.PricingURL = DefaultPricingURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		translateURL: strings.TrimRight(cfg.TranslateURL, "/"),
		pricingURL:   strings.TrimRight(cfg.PricingURL, "/"),
		apiKey:       cfg.APIKey,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      limiter,
		logger:       logger.With().Str("component", "noves_client").Logger(),
	}
}

// wire shapes of the Noves APIs

type classifiedTx struct {
	ClassificationData struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"classificationData"`
	RawTransactionData struct {
		TransactionHash string `json:"transactionHash"`
	} `json:"rawTransactionData"`
}

func (tx classifiedTx) toTransaction() provider.Transaction {
	return provider.Transaction{
		TransactionHash: tx.RawTransactionData.TransactionHash,
		Description:     tx.ClassificationData.Description,
		Type:            tx.ClassificationData.Type,
	}
}

type txPage struct {
	Items       []classifiedTx `json:"items"`
	HasNextPage bool           `json:"hasNextPage"`
	NextPageURL string         `json:"nextPageUrl"`
}

type priceResponse struct {
	Chain       string         `json:"chain"`
	Block       flexString     `json:"block"`
	Token       provider.Token `json:"token"`
	Price       provider.Price `json:"price"`
	PriceType   string         `json:"priceType"`
	PriceStatus string         `json:"priceStatus"`
	PricedBy    *struct {
		PoolAddress string             `json:"poolAddress"`
		Exchange    *provider.Exchange `json:"exchange"`
		Liquidity   float64            `json:"liquidity"`
	} `json:"pricedBy"`
}

// flexString accepts both JSON strings and numbers; block heights arrive in either form.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// RecentTransactions fetches the first page of classified transactions for an address.
func (c *Client) RecentTransactions(ctx context.Context, chain, address string) ([]provider.Transaction, error) {
	endpoint := fmt.Sprintf("%s/evm/%s/txs/%s", c.translateURL, url.PathEscape(chain), url.PathEscape(address))

	var page txPage
	if err := c.get(ctx, "recent transactions", endpoint, &page); err != nil {
		return nil, err
	}

	txs := make([]provider.Transaction, 0, len(page.Items))
	for _, item := range page.Items {
		txs = append(txs, item.toTransaction())
	}
	return txs, nil
}

// TranslatedTransaction fetches the classification of one transaction.
func (c *Client) TranslatedTransaction(ctx context.Context, chain, txHash string) (*provider.Transaction, error) {
	endpoint := fmt.Sprintf("%s/evm/%s/tx/%s", c.translateURL, url.PathEscape(chain), url.PathEscape(txHash))

	var tx classifiedTx
	if err := c.get(ctx, "translated transaction", endpoint, &tx); err != nil {
		return nil, err
	}

	out := tx.toTransaction()
	return &out, nil
}

// TokenPrice fetches a token price, optionally at a Unix timestamp.
func (c *Client) TokenPrice(ctx context.Context, chain, tokenAddress, timestamp string) (*provider.TokenPrice, error) {
	endpoint := fmt.Sprintf("%s/evm/%s/price/%s", c.pricingURL, url.PathEscape(chain), url.PathEscape(tokenAddress))
	if timestamp != "" {
		endpoint += "?timestamp=" + url.QueryEscape(timestamp)
	}

	var resp priceResponse
	if err := c.get(ctx, "token price", endpoint, &resp); err != nil {
		return nil, err
	}

	price := &provider.TokenPrice{
		Chain:       resp.Chain,
		Block:       string(resp.Block),
		Token:       resp.Token,
		Price:       resp.Price,
		PriceType:   resp.PriceType,
		PriceStatus: resp.PriceStatus,
	}
	if resp.PricedBy != nil {
		price.PricedBy = &provider.PricedBy{
			PoolAddress: resp.PricedBy.PoolAddress,
			Exchange:    resp.PricedBy.Exchange,
			Liquidity:   resp.PricedBy.Liquidity,
		}
	}
	return price, nil
}

func (c *Client) get(ctx context.Context, op, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &provider.Error{Op: op, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &provider.Error{Op: op, Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &provider.Error{Op: op, Cause: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.Error{Op: op, Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug().
		Str("op", op).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Provider request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &provider.Error{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &provider.Error{Op: op, Cause: fmt.Errorf("invalid response body: %w", err)}
	}
	return nil
}

// errorMessage pulls a readable message out of an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}
