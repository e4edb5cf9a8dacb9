package webhook

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"cafe_bot_backend/internal/bot"
	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/httpkit"
	"cafe_bot_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	errReadBody     = "failed to read request body"
	errInvalidBody  = "invalid webhook body"
	errEventFailure = "failed to handle webhook event"
)

// EventParser verifies a webhook call and decodes its events.
type EventParser interface {
	ParseRequest(r *http.Request) ([]bot.Event, error)
}

// EventDispatcher handles a single event.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event bot.Event) error
}

// Handler handles LINE webhook HTTP requests.
type Handler struct {
	parser     EventParser
	dispatcher EventDispatcher
	dedup      Deduplicator
	log        *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(parser EventParser, dispatcher EventDispatcher, dedup Deduplicator, log *logger.Logger) *Handler {
	if dedup == nil {
		dedup = NoopDeduplicator{}
	}
	return &Handler{parser: parser, dispatcher: dispatcher, dedup: dedup, log: log}
}

// HandleCallback verifies the signature, then dispatches every event in order.
// POST /callback
func (h *Handler) HandleCallback(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadRequest, errReadBody, err))
		return
	}
	h.log.WithContext(ctx).Debug("request body", "body", string(body))
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	events, err := h.parser.ParseRequest(c.Request)
	if err != nil {
		if _, ok := apperr.As(err); !ok {
			err = apperr.Wrap(apperr.KindBadRequest, errInvalidBody, err)
		}
		httpkit.HandleError(c, err)
		return
	}

	for _, event := range events {
		if err := h.handleEvent(ctx, event); err != nil {
			httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, errEventFailure, err))
			return
		}
	}

	c.String(http.StatusOK, "OK")
}

func (h *Handler) handleEvent(ctx context.Context, event bot.Event) error {
	meta := event.Metadata()
	if meta.UserID != "" {
		ctx = context.WithValue(ctx, logger.UserIDKey, meta.UserID)
	}
	log := h.log.WithContext(ctx)
	log.WebhookEvent(string(event.Kind()), meta.WebhookEventID, meta.Redelivery)

	seen, err := h.dedup.Seen(ctx, meta.WebhookEventID)
	if err != nil {
		log.Warn("dedup lookup failed, processing event", "error", err)
	} else if seen {
		log.Info("skipping duplicate webhook event", "event_id", meta.WebhookEventID)
		return nil
	}

	if err := h.dispatcher.Dispatch(ctx, event); err != nil {
		if forgetErr := h.dedup.Forget(ctx, meta.WebhookEventID); forgetErr != nil {
			log.Warn("failed to release webhook event", "error", forgetErr)
		}
		return err
	}
	return nil
}
