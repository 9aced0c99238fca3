package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stripe-shop-backend/internal/config"
	"stripe-shop-backend/internal/model"
)

// ErrSignatureVerification is returned by ConstructEvent when the
// stripe-signature header does not match the payload.
var ErrSignatureVerification = errors.New("webhook signature verification failed")

// signatureTolerance bounds how old a signed webhook timestamp may be.
const signatureTolerance = 5 * time.Minute

type StripeClient interface {
	RetrieveProduct(ctx context.Context, id string) (*StripeProduct, error)
	RetrievePrice(ctx context.Context, id string) (*StripePrice, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*StripePaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*StripeCheckoutSession, error)
	ConstructEvent(payload []byte, sigHeader string, secret string) (*model.StripeEvent, error)
}

type StripeProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	// ID of the product's default price object.
	DefaultPrice string `json:"default_price"`
}

type StripePrice struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	// Minor units as a decimal string, e.g. "1999" for $19.99.
	UnitAmountDecimal string `json:"unit_amount_decimal"`
}

type StripePaymentIntent struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

type StripeCheckoutSession struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type CheckoutLineItem struct {
	Price    string
	Quantity int32
}

type CheckoutSessionParams struct {
	LineItems []CheckoutLineItem
	// Attached to the session's payment intent so webhook reconciliation
	// can find the local order.
	OrderID   string
	ReturnURL string
}

// StripeError carries Stripe's machine-readable error code alongside the
// human message. Code "resource_missing" maps to a not-found outcome.
type StripeError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"-"`
}

func (e *StripeError) Error() string {
	return fmt.Sprintf("stripe error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func (e *StripeError) IsResourceMissing() bool {
	return e.Code == "resource_missing"
}

type stripeClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: stripeCfg.BaseApiURL,
		apiKey:     stripeCfg.APIKey,
	}
}

func (c *stripeClientImpl) RetrieveProduct(ctx context.Context, id string) (*StripeProduct, error) {
	var product StripeProduct
	if err := c.doGet(ctx, "/v1/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *stripeClientImpl) RetrievePrice(ctx context.Context, id string) (*StripePrice, error) {
	var price StripePrice
	if err := c.doGet(ctx, "/v1/prices/"+url.PathEscape(id), &price); err != nil {
		return nil, err
	}
	return &price, nil
}

func (c *stripeClientImpl) RetrievePaymentIntent(ctx context.Context, id string) (*StripePaymentIntent, error) {
	var pi StripePaymentIntent
	if err := c.doGet(ctx, "/v1/payment_intents/"+url.PathEscape(id), &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*StripeCheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("ui_mode", "embedded")
	form.Set("return_url", params.ReturnURL)
	form.Set("payment_intent_data[capture_method]", "manual")
	form.Set("payment_intent_data[metadata][order_id]", params.OrderID)
	for i, item := range params.LineItems {
		form.Set(fmt.Sprintf("line_items[%d][price]", i), item.Price)
		form.Set(fmt.Sprintf("line_items[%d][quantity]", i), strconv.Itoa(int(item.Quantity)))
	}

	var session StripeCheckoutSession
	if err := c.doForm(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ConstructEvent decodes a webhook payload and, when secret is non-empty,
// verifies the stripe-signature header against it.
func (c *stripeClientImpl) ConstructEvent(payload []byte, sigHeader string, secret string) (*model.StripeEvent, error) {
	var event model.StripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("decode webhook payload: missing event type")
	}

	if secret != "" {
		if err := VerifySignature(payload, sigHeader, secret, time.Now()); err != nil {
			return nil, err
		}
	}

	return &event, nil
}

// VerifySignature checks a "t=<unix>,v1=<hex hmac>" header against
// HMAC-SHA256(secret, "<t>.<payload>").
func VerifySignature(payload []byte, sigHeader string, secret string, now time.Time) error {
	var timestamp int64
	var signatures [][]byte

	for _, part := range strings.Split(sigHeader, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrSignatureVerification)
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed header", ErrSignatureVerification)
	}
	if now.Sub(time.Unix(timestamp, 0)) > signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureVerification)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrSignatureVerification
}

func ComputeSignatureHeader(payload []byte, secret string, now time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", now.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func (c *stripeClientImpl) doGet(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseApiURL+path, nil)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	return c.do(req, out)
}

func (c *stripeClientImpl) doForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *stripeClientImpl) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		var errResp struct {
			Error StripeError `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
			return &StripeError{
				Message:    strings.TrimSpace(string(body)),
				StatusCode: resp.StatusCode,
			}
		}
		stripeErr := errResp.Error
		stripeErr.StatusCode = resp.StatusCode
		return &stripeErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}
