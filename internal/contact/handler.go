package contact

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"sentimentai/voice-server/pkg/config"
	"sentimentai/voice-server/pkg/logger"
	"sentimentai/voice-server/pkg/observability"

	"github.com/gin-gonic/gin"
)

// emailPattern is deliberately loose: one @, no whitespace, a dot in
// the domain. Real validation happens when SES tries to deliver.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is a contact form payload after normalization
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Locale  string `json:"locale"`
}

// Handler processes contact form submissions: validate, notify the
// team, then send the submitter a localized auto-response.
type Handler struct {
	mailer Mailer
	cfg    *config.Config
	log    *logger.Logger

	// sleep is swappable so tests don't wait out the send delay
	sleep func(time.Duration)
}

// NewHandler builds the contact handler
func NewHandler(mailer Mailer, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		cfg:    cfg,
		log:    log,
		sleep:  time.Sleep,
	}
}

// Submit handles POST /api/contact
func (h *Handler) Submit(c *gin.Context) {
	var sub Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	sub.Message = strings.TrimSpace(sub.Message)
	if sub.Locale != "ar" {
		sub.Locale = "en"
	}

	if sub.Name == "" || sub.Email == "" || sub.Message == "" {
		observability.ContactSubmissions.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Name, email and message are required",
		})
		return
	}
	if !emailPattern.MatchString(sub.Email) {
		observability.ContactSubmissions.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid email address",
		})
		return
	}

	ctx := c.Request.Context()
	if err := h.mailer.Send(ctx, &Email{
		To:       h.cfg.Email.To,
		ReplyTo:  sub.Email,
		Subject:  notificationSubject(sub.Name),
		TextBody: notificationText(&sub),
		HTMLBody: notificationHTML(&sub),
	}); err != nil {
		observability.ContactSubmissions.WithLabelValues("failed").Inc()
		h.log.LogError(err, "Failed to send contact notification", "email", sub.Email)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to send message. Please try again later.",
		})
		return
	}

	// Short pause between the two sends keeps SES from throttling the
	// sandbox account.
	h.sleep(h.cfg.Email.SendDelay)
	if err := h.mailer.Send(ctx, &Email{
		To:       sub.Email,
		Subject:  autoResponseSubject(sub.Locale),
		TextBody: autoResponseText(&sub),
		HTMLBody: autoResponseHTML(&sub),
	}); err != nil {
		observability.ContactSubmissions.WithLabelValues("failed").Inc()
		h.log.LogError(err, "Failed to send auto-response", "email", sub.Email)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to send message. Please try again later.",
		})
		return
	}

	observability.ContactSubmissions.WithLabelValues("sent").Inc()
	h.log.Info("Contact form processed", "email", sub.Email, "locale", sub.Locale)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message sent successfully",
	})
}
