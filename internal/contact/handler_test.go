package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []Email
	failOn int // fail the nth send (1-based), 0 disables
}

func (m *fakeMailer) Send(ctx context.Context, email *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn > 0 && len(m.sent)+1 == m.failOn {
		return errors.New("ses unavailable")
	}
	m.sent = append(m.sent, *email)
	return nil
}

func (m *fakeMailer) emails() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}

func newTestHandler(mailer *fakeMailer) (*Handler, *time.Duration) {
	h := NewHandler(mailer, config.Get(), logger.New(logger.Config{Level: "error"}))
	var slept time.Duration
	h.sleep = func(d time.Duration) { slept = d }
	return h, &slept
}

func submit(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader(data))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Submit(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSubmitSendsBothEmails(t *testing.T) {
	mailer := &fakeMailer{}
	h, slept := newTestHandler(mailer)

	w := submit(t, h, Submission{
		Name:    "Dana",
		Email:   "  Dana@Example.COM ",
		Message: "I'd like a demo.",
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Message sent successfully", body["message"])

	emails := mailer.emails()
	require.Len(t, emails, 2)

	// First the team notification, with Reply-To pointing back at the
	// normalized submitter address.
	notification := emails[0]
	assert.Equal(t, config.Get().Email.To, notification.To)
	assert.Equal(t, "dana@example.com", notification.ReplyTo)
	assert.Contains(t, notification.Subject, "Dana")
	assert.Contains(t, notification.TextBody, "I'd like a demo.")

	// Then the auto-response to the submitter.
	auto := emails[1]
	assert.Equal(t, "dana@example.com", auto.To)
	assert.Empty(t, auto.ReplyTo)
	assert.Contains(t, auto.Subject, "Thank you")

	assert.Equal(t, config.Get().Email.SendDelay, *slept)
}

func TestSubmitArabicAutoResponse(t *testing.T) {
	mailer := &fakeMailer{}
	h, _ := newTestHandler(mailer)

	w := submit(t, h, Submission{
		Name:    "Omar",
		Email:   "omar@example.com",
		Message: "مرحبا",
		Locale:  "ar",
	})

	require.Equal(t, http.StatusOK, w.Code)
	emails := mailer.emails()
	require.Len(t, emails, 2)
	assert.Equal(t, autoResponseSubject("ar"), emails[1].Subject)
	assert.Contains(t, emails[1].TextBody, "Omar")
}

func TestSubmitMissingFields(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
	}{
		{"no name", Submission{Email: "a@b.co", Message: "hi"}},
		{"no email", Submission{Name: "A", Message: "hi"}},
		{"no message", Submission{Name: "A", Email: "a@b.co"}},
		{"whitespace only", Submission{Name: "  ", Email: "a@b.co", Message: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			h, _ := newTestHandler(mailer)

			w := submit(t, h, tt.sub)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Name, email and message are required", body["error"])
			assert.Empty(t, mailer.emails(), "no email may be sent for an invalid submission")
		})
	}
}

func TestSubmitInvalidEmail(t *testing.T) {
	for _, email := range []string{"plainaddress", "a b@c.co", "a@b", "a@b co.com", "@missing.local"} {
		t.Run(email, func(t *testing.T) {
			mailer := &fakeMailer{}
			h, _ := newTestHandler(mailer)

			w := submit(t, h, Submission{Name: "A", Email: email, Message: "hi"})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Invalid email address", decode(t, w)["error"])
			assert.Empty(t, mailer.emails())
		})
	}
}

func TestSubmitMalformedBody(t *testing.T) {
	mailer := &fakeMailer{}
	h, _ := newTestHandler(mailer)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewReader([]byte("{not json")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Submit(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitNotificationFailure(t *testing.T) {
	mailer := &fakeMailer{failOn: 1}
	h, _ := newTestHandler(mailer)

	w := submit(t, h, Submission{Name: "A", Email: "a@b.co", Message: "hi"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to send message. Please try again later.", body["error"])
	assert.Empty(t, mailer.emails())
}

func TestSubmitAutoResponseFailure(t *testing.T) {
	mailer := &fakeMailer{failOn: 2}
	h, _ := newTestHandler(mailer)

	w := submit(t, h, Submission{Name: "A", Email: "a@b.co", Message: "hi"})

	// Either send failing fails the whole submission; no partial
	// success is reported even though the notification went out.
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to send message. Please try again later.", body["error"])
	assert.Len(t, mailer.emails(), 1)
}
