package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	config "github.com/anjiri1684/study_hub/configs"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsBrevoPayload(t *testing.T) {
	var got brevoPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("api-key"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewBrevoService("key", "noreply@studyhub.test", "Study Hub")
	s.Endpoint = srv.URL

	require.NoError(t, s.Send(context.Background(), "ada@example.com", "", "Hi", "<p>x</p>"))
	assert.Equal(t, "noreply@studyhub.test", got.Sender.Email)
	require.Len(t, got.To, 1)
	assert.Equal(t, "ada", got.To[0].Name)
	assert.Equal(t, "Hi", got.Subject)
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	s := NewBrevoService("key", "noreply@studyhub.test", "Study Hub")
	assert.Error(t, s.Send(context.Background(), "not-an-email", "", "Hi", ""))
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewBrevoService("key", "noreply@studyhub.test", "Study Hub")
	s.Endpoint = srv.URL

	for i := 0; i < 5; i++ {
		assert.Error(t, s.Send(context.Background(), "ada@example.com", "Ada", "Hi", ""))
	}
	err := s.Send(context.Background(), "ada@example.com", "Ada", "Hi", "")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestInitEmailServiceWithoutCredentials(t *testing.T) {
	InitEmailService(&config.Config{})
	assert.Nil(t, EmailClient)
	SendEmail("Ada", "ada@example.com", "Hi", "")
}

func TestTemplatesEscapeInput(t *testing.T) {
	subject, body := BookingConfirmed("<b>Algebra</b>", time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "Your session is booked", subject)
	assert.Contains(t, body, "&lt;b&gt;Algebra&lt;/b&gt;")

	_, body = AppointmentDecision("approved", time.Now(), "https://meet.example.com/r")
	assert.Contains(t, body, "https://meet.example.com/r")
}
