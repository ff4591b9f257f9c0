package notifications

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/anjiri1684/study_hub/metrics"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Endpoint    string

	client *http.Client
	cb     *gobreaker.CircuitBreaker[struct{}]
}

var EmailClient *BrevoService

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoPayload struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func NewBrevoService(apiKey, senderEmail, senderName string) *BrevoService {
	s := &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		Endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
	s.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "brevo-email",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("email circuit breaker state change")
		},
	})
	return s
}

// InitEmailService configures the package client; without credentials email is disabled.
func InitEmailService(cfg *config.Config) {
	if cfg.BrevoAPIKey == "" || cfg.EmailSender == "" {
		log.Warn().Msg("email service not configured, missing BREVO_API_KEY or EMAIL_SENDER")
		EmailClient = nil
		return
	}
	EmailClient = NewBrevoService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName)
	log.Info().Str("sender", cfg.EmailSender).Msg("email service initialized")
}

func (s *BrevoService) Send(ctx context.Context, toEmail, toName, subject, htmlContent string) error {
	at := strings.Index(toEmail, "@")
	if at <= 0 {
		return errors.Errorf("invalid recipient email: %s", toEmail)
	}
	if toName == "" {
		toName = toEmail[:at]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      brevoContact{Email: s.SenderEmail, Name: s.SenderName},
		To:          []brevoContact{{Email: toEmail, Name: toName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	_, err = s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.post(ctx, body)
	})
	return err
}

func (s *BrevoService) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("brevo returned %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

// SendEmail is fire-and-forget; callers run it in a goroutine.
func SendEmail(toName, toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Debug().Str("to", toEmail).Msg("email client not initialized, skipping email send")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := EmailClient.Send(ctx, toEmail, toName, subject, htmlContent); err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("to", toEmail).Str("subject", subject).Msg("failed to send email")
		return
	}
	metrics.EmailsSent.WithLabelValues("sent").Inc()
	log.Debug().Str("to", toEmail).Str("subject", subject).Msg("email sent")
}
