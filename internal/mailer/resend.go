package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"doorparts-be/internal/logger"
	"doorparts-be/internal/metrics"

	"go.uber.org/zap"
)

const resendBaseURL = "https://api.resend.com"

type resendSender struct {
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewResendSender(apiKey, from string) Sender {
	if apiKey == "" {
		logger.L().Warn("Resend API key is empty")
	}

	return &resendSender{
		apiKey: apiKey,
		from:   from,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *resendSender) Send(ctx context.Context, msg Message) error {
	log := logger.FromCtx(ctx).With(
		zap.String("to", msg.To),
		zap.String("template", msg.Template),
	)

	body := map[string]interface{}{
		"from":    s.from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", resendBaseURL+"/emails", bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}

	req.Header.Add("Authorization", "Bearer "+s.apiKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.EmailSendsTotal.WithLabelValues(msg.Template, "error").Inc()
		log.Error("email request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read resend response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.EmailSendsTotal.WithLabelValues(msg.Template, "rejected").Inc()
		log.Error("resend returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return fmt.Errorf("resend error: %s", string(bodyBytes))
	}

	metrics.EmailSendsTotal.WithLabelValues(msg.Template, "sent").Inc()
	log.Info("email sent")
	return nil
}
