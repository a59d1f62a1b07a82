// Package paypal открывает платёжные транзакции через PayPal Orders API v2.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/example/configurator-checkout/internal/domain"
	"github.com/example/configurator-checkout/internal/pricing"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	tokenPath  = "/v1/oauth2/token"
	ordersPath = "/v2/checkout/orders"

	intentCapture         = "CAPTURE"
	categoryPhysicalGoods = "PHYSICAL_GOODS"
	zeroValue             = "0.00"

	// токен обновляется заранее, чтобы не истечь посреди запроса
	tokenExpirySkew = time.Minute
	maxErrorBody    = 4 << 10
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client безопасен для конкурентного использования.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	now          func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = SandboxBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Breakdown struct {
	ItemTotal        Money `json:"item_total"`
	Discount         Money `json:"discount"`
	Handling         Money `json:"handling"`
	Insurance        Money `json:"insurance"`
	ShippingDiscount Money `json:"shipping_discount"`
	Shipping         Money `json:"shipping"`
	TaxTotal         Money `json:"tax_total"`
}

type Amount struct {
	CurrencyCode string    `json:"currency_code"`
	Value        string    `json:"value"`
	Breakdown    Breakdown `json:"breakdown"`
}

type Item struct {
	Name       string `json:"name"`
	UnitAmount Money  `json:"unit_amount"`
	Quantity   string `json:"quantity"`
	Category   string `json:"category"`
}

type PurchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	Amount      Amount `json:"amount"`
	Items       []Item `json:"items"`
}

type OrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id"`
	// ответ oauth2 использует другие поля
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// BuildOrderRequest собирает одну позицию покупки с полной разбивкой суммы:
// провайдер требует все поля разбивки, даже нулевые.
func BuildOrderRequest(intent domain.PaymentIntent) OrderRequest {
	total := pricing.FormatMajor(intent.Amount)
	money := func(v string) Money { return Money{CurrencyCode: intent.Currency, Value: v} }
	return OrderRequest{
		Intent: intentCapture,
		PurchaseUnits: []PurchaseUnit{{
			ReferenceID: intent.ReferenceID,
			Amount: Amount{
				CurrencyCode: intent.Currency,
				Value:        total,
				Breakdown: Breakdown{
					ItemTotal:        money(total),
					Discount:         money(zeroValue),
					Handling:         money(zeroValue),
					Insurance:        money(zeroValue),
					ShippingDiscount: money(zeroValue),
					Shipping:         money(zeroValue),
					TaxTotal:         money(zeroValue),
				},
			},
			Items: []Item{{
				Name:       intent.ItemName,
				UnitAmount: money(total),
				Quantity:   "1",
				Category:   categoryPhysicalGoods,
			}},
		}},
	}
}

// CreateTransaction создаёт заказ у провайдера. Повторов нет: любая ошибка
// возвращается как domain.ErrProviderFailure.
func (c *Client) CreateTransaction(ctx context.Context, intent domain.PaymentIntent) (domain.Transaction, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
	}

	body, err := json.Marshal(BuildOrderRequest(intent))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: marshal order: %w", domain.ErrProviderFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ordersPath, bytes.NewReader(body))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: build request: %w", domain.ErrProviderFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: create order: %w", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Transaction{}, fmt.Errorf("%w: create order: %s", domain.ErrProviderFailure, describe(resp))
	}
	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: decode order: %w", domain.ErrProviderFailure, err)
	}
	if out.ID == "" {
		return domain.Transaction{}, fmt.Errorf("%w: provider returned order without id", domain.ErrProviderFailure)
	}
	return domain.Transaction{ID: out.ID, Status: out.Status}, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, nil
	}
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("paypal credentials not set")
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request token: %s", describe(resp))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	c.token = tr.AccessToken
	c.expiry = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySkew)
	return c.token, nil
}

func describe(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil {
		switch {
		case e.Message != "":
			return fmt.Sprintf("status %d: %s: %s (debug_id=%s)", resp.StatusCode, e.Name, e.Message, e.DebugID)
		case e.ErrorDescription != "":
			return fmt.Sprintf("status %d: %s: %s", resp.StatusCode, e.Error, e.ErrorDescription)
		}
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

var _ domain.PaymentProvider = (*Client)(nil)
