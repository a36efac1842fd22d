package handlers

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"

	"challengebot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody bounds a single Telegram update payload.
const maxWebhookBody = 1 << 20

// SecretTokenHeader carries the secret_token registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookProcessor consumes raw Telegram webhook payloads.
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, webhookData []byte) error
}

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	processor WebhookProcessor
	secret    string
	logger    *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance. Requests whose
// secret token header does not equal secret are rejected; an empty secret
// rejects every request.
func NewWebhookHandler(processor WebhookProcessor, secret string, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secret:    secret,
		logger:    logger,
	}
}

// HandleTelegramWebhook processes incoming Telegram webhook updates. Once
// the sender is authenticated it always answers 200 so Telegram does not
// redeliver an update the bot cannot process.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	log := requestLogger(c, h.logger)

	if !h.authorized(c.GetHeader(SecretTokenHeader)) {
		log.Warnw("Rejected webhook request with invalid secret token",
			"client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Errorw("Failed to read webhook body", "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if len(body) == 0 {
		log.Warnw("Received empty webhook body")
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if contentType := c.ContentType(); contentType != gin.MIMEJSON {
		log.Warnw("Unexpected content type", "content_type", contentType)
	}

	// Processing finishes even if Telegram drops the connection.
	if err := h.processor.HandleWebhook(context.WithoutCancel(c.Request.Context()), body); err != nil {
		log.Errorw("Failed to process webhook",
			"error", err,
			"body_size", len(body))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	log.Debugw("Webhook processed", "body_size", len(body))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WebhookHandler) authorized(token string) bool {
	if h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
