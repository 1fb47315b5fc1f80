package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"doorparts-be/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrSignatureInvalid = errors.New("invalid webhook signature")
	ErrMissingHeaders   = errors.New("missing webhook transmission headers")
)

type paypalGateway struct {
	baseURL    string
	clientID   string
	secret     string
	webhookID  string
	skipVerify bool
	httpClient *http.Client

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewPayPalGateway builds the PayPal REST client. skipVerify disables webhook
// signature verification and must never be set outside local development.
func NewPayPalGateway(baseURL, clientID, secret, webhookID string, skipVerify bool) Gateway {
	if clientID == "" || secret == "" {
		logger.L().Warn("PayPal credentials are empty")
	}
	if skipVerify {
		logger.L().Warn("PayPal webhook signature verification is DISABLED")
	}

	return &paypalGateway{
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
		webhookID:  webhookID,
		skipVerify: skipVerify,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// token returns a cached OAuth access token, refreshing when near expiry.
func (g *paypalGateway) token(ctx context.Context) (string, error) {
	g.tokenMu.Lock()
	defer g.tokenMu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.tokenExpiry.Add(-time.Minute)) {
		return g.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		g.baseURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.clientID, g.secret)
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read paypal token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token error: %s", string(bodyBytes))
	}

	var res struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		return "", err
	}

	g.accessToken = res.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(res.ExpiresIn) * time.Second)
	return g.accessToken, nil
}

func (g *paypalGateway) doJSON(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, 0, err
	}

	tok, err := g.token(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to obtain paypal token: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+tok)
	req.Header.Add("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read paypal response: %w", err)
	}

	return bodyBytes, resp.StatusCode, nil
}

func centsToDecimal(cents int64) string {
	return strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}

// decimalToCents parses a provider money string ("95.50", "95.5", "95")
// into cents without losing short or absent fractions.
func decimalToCents(value string) (int64, error) {
	whole, frac, _ := strings.Cut(value, ".")

	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q", value)
	}

	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("malformed amount %q", value)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q", value)
	}

	if strings.HasPrefix(whole, "-") {
		return dollars*100 - cents, nil
	}
	return dollars*100 + cents, nil
}

func (g *paypalGateway) CreateOrder(ctx context.Context, correlationID string, amountCents int64, currency string) (*ProviderOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("correlation_id", correlationID),
		zap.Int64("amount", amountCents),
		zap.String("currency", currency),
	)

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"custom_id": correlationID,
				"amount": map[string]string{
					"currency_code": currency,
					"value":         centsToDecimal(amountCents),
				},
			},
		},
	}

	log.Info("creating paypal order")

	respBody, status, err := g.doJSON(ctx, "POST", "/v2/checkout/orders", body)
	if err != nil {
		log.Error("paypal order request failed", zap.Error(err))
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		log.Error("paypal returned non-success status",
			zap.Int("status", status),
			zap.ByteString("response", respBody),
		)
		return nil, fmt.Errorf("paypal error: %s", string(respBody))
	}

	var res struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Links  []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, err
	}

	var approveURL string
	for _, link := range res.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
			break
		}
	}

	log.Info("paypal order created",
		zap.String("paypal_order_id", res.ID),
		zap.String("status", res.Status),
	)

	return &ProviderOrder{
		ProviderOrderID: res.ID,
		Status:          res.Status,
		ApproveURL:      approveURL,
	}, nil
}

func (g *paypalGateway) CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error) {
	log := logger.FromCtx(ctx).With(zap.String("paypal_order_id", providerOrderID))

	respBody, status, err := g.doJSON(ctx, "POST",
		"/v2/checkout/orders/"+providerOrderID+"/capture", nil)
	if err != nil {
		log.Error("paypal capture request failed", zap.Error(err))
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		log.Error("paypal capture returned non-success status",
			zap.Int("status", status),
			zap.ByteString("response", respBody),
		)
		return nil, fmt.Errorf("paypal capture error: %s", string(respBody))
	}

	var res struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID     string `json:"id"`
					Status string `json:"status"`
					Amount Amount `json:"amount"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, err
	}

	result := &CaptureResult{
		ProviderOrderID: res.ID,
		Status:          res.Status,
	}
	for _, pu := range res.PurchaseUnits {
		for _, c := range pu.Payments.Captures {
			result.CaptureID = c.ID
			result.Currency = c.Amount.CurrencyCode
			cents, cErr := decimalToCents(c.Amount.Value)
			if cErr != nil {
				log.Warn("unparseable capture amount", zap.String("value", c.Amount.Value))
			} else {
				result.AmountCents = cents
			}
			break
		}
	}

	log.Info("paypal order captured",
		zap.String("capture_id", result.CaptureID),
		zap.String("status", result.Status),
	)

	return result, nil
}

func (g *paypalGateway) RefundCapture(ctx context.Context, captureID string, amountCents int64, currency string) error {
	log := logger.FromCtx(ctx).With(zap.String("capture_id", captureID))

	var body any
	if amountCents > 0 {
		body = map[string]interface{}{
			"amount": map[string]string{
				"currency_code": currency,
				"value":         centsToDecimal(amountCents),
			},
		}
	}

	respBody, status, err := g.doJSON(ctx, "POST",
		"/v2/payments/captures/"+captureID+"/refund", body)
	if err != nil {
		log.Error("paypal refund request failed", zap.Error(err))
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		log.Error("paypal refund returned non-success status",
			zap.Int("status", status),
			zap.ByteString("response", respBody),
		)
		return fmt.Errorf("paypal refund error: %s", string(respBody))
	}

	log.Info("paypal refund issued")
	return nil
}

// VerifyWebhookSignature calls PayPal's verify-webhook-signature API with the
// transmission headers and the raw event body. Any verdict other than SUCCESS
// rejects the delivery.
func (g *paypalGateway) VerifyWebhookSignature(ctx context.Context, r *http.Request, body []byte) error {
	if g.skipVerify {
		return nil // local development only
	}

	transmissionID := r.Header.Get("Paypal-Transmission-Id")
	transmissionTime := r.Header.Get("Paypal-Transmission-Time")
	transmissionSig := r.Header.Get("Paypal-Transmission-Sig")
	certURL := r.Header.Get("Paypal-Cert-Url")
	authAlgo := r.Header.Get("Paypal-Auth-Algo")

	if transmissionID == "" || transmissionTime == "" || transmissionSig == "" || certURL == "" || authAlgo == "" {
		return ErrMissingHeaders
	}

	payload := map[string]interface{}{
		"transmission_id":   transmissionID,
		"transmission_time": transmissionTime,
		"transmission_sig":  transmissionSig,
		"cert_url":          certURL,
		"auth_algo":         authAlgo,
		"webhook_id":        g.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	respBody, status, err := g.doJSON(ctx, "POST", "/v1/notifications/verify-webhook-signature", payload)
	if err != nil {
		return fmt.Errorf("signature verification request failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("signature verification error: %s", string(respBody))
	}

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.Unmarshal(respBody, &res); err != nil {
		return err
	}

	if res.VerificationStatus != "SUCCESS" {
		return ErrSignatureInvalid
	}
	return nil
}
