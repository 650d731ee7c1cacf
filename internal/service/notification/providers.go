// internal/service/notification/providers.go
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cobramax-service/internal/config"

	"go.uber.org/zap"
)

// Provider delivers one message to a phone number and returns the provider
// side message id when it has one.
type Provider interface {
	Send(ctx context.Context, to, body string) (string, error)
}

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioProvider sends WhatsApp or SMS messages through the Twilio REST API.
type TwilioProvider struct {
	accountSID string
	authToken  string
	from       string
	whatsapp   bool
	httpClient *http.Client
}

func NewTwilioWhatsApp(cfg config.TwilioConfig) *TwilioProvider {
	return &TwilioProvider{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.WhatsAppNumber,
		whatsapp:   true,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func NewTwilioSMS(cfg config.TwilioConfig) *TwilioProvider {
	return &TwilioProvider{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.SMSNumber,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether credentials and a sender number are present.
func (p *TwilioProvider) Configured() bool {
	return p.accountSID != "" && p.authToken != "" && p.from != ""
}

func (p *TwilioProvider) address(number string) string {
	if p.whatsapp {
		return "whatsapp:" + number
	}
	return number
}

func (p *TwilioProvider) Send(ctx context.Context, to, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioBaseURL, p.accountSID)

	form := url.Values{}
	form.Set("From", p.address(p.from))
	form.Set("To", p.address(to))
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build twilio request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read twilio response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		return "", fmt.Errorf("twilio returned %d: %s", resp.StatusCode, apiErr.Message)
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode twilio response: %w", err)
	}
	return out.SID, nil
}

// SimulatedProvider stands in when no real provider is configured. Messages
// go to the log so development environments still show the traffic.
type SimulatedProvider struct {
	channel string
	logger  *zap.Logger
}

func NewSimulatedProvider(channel string, logger *zap.Logger) *SimulatedProvider {
	return &SimulatedProvider{channel: channel, logger: logger}
}

func (p *SimulatedProvider) Send(_ context.Context, to, body string) (string, error) {
	p.logger.Info("simulated message delivery",
		zap.String("channel", p.channel),
		zap.String("to", to),
		zap.String("body", body),
	)
	return "", nil
}

// SimulatedMailSender is the email counterpart of SimulatedProvider, used
// when SMTP credentials are missing.
type SimulatedMailSender struct {
	logger *zap.Logger
}

func NewSimulatedMailSender(logger *zap.Logger) *SimulatedMailSender {
	return &SimulatedMailSender{logger: logger}
}

func (s *SimulatedMailSender) Send(to, subject, _ string) error {
	s.logger.Info("simulated message delivery",
		zap.String("channel", "email"),
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
