package bot

import (
	"context"
	"fmt"

	"cafe_bot_backend/internal/carousel"
	"cafe_bot_backend/internal/restsearch"
	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/config"
	"cafe_bot_backend/platform/logger"
)

// Searcher finds venues around a point.
type Searcher interface {
	Search(ctx context.Context, coords restsearch.Coordinates) ([]restsearch.Venue, error)
}

// Dispatcher routes each event kind to its handler.
type Dispatcher struct {
	searcher           Searcher
	formatter          *carousel.Formatter
	replier            Replier
	replyOnSearchError bool
	log                *logger.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(searcher Searcher, formatter *carousel.Formatter, replier Replier, cfg config.BotConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		searcher:           searcher,
		formatter:          formatter,
		replier:            replier,
		replyOnSearchError: cfg.GetReplyOnSearchError(),
		log:                log,
	}
}

// Dispatch handles one event. A returned error means the event could not be
// answered and the whole webhook call should fail.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	switch e := event.(type) {
	case TextMessage:
		return d.reply(ctx, e.ReplyToken, TextReply{Text: e.Text})
	case LocationMessage:
		return d.handleLocation(ctx, e)
	case Follow:
		return d.reply(ctx, e.ReplyToken, TextReply{Text: WelcomeText})
	case Unfollow:
		d.log.WithContext(ctx).Info("got unfollow event")
		return nil
	default:
		d.log.WithContext(ctx).Debug("ignoring event", "kind", event.Kind())
		return nil
	}
}

func (d *Dispatcher) handleLocation(ctx context.Context, event LocationMessage) error {
	venues, err := d.searcher.Search(ctx, event.Coordinates)
	if err != nil {
		if !d.replyOnSearchError {
			return fmt.Errorf("search cafes: %w", err)
		}
		d.log.WithContext(ctx).Warn("cafe search failed, replying with message", "error", err)
		return d.reply(ctx, event.ReplyToken, TextReply{Text: searchErrorText(err)})
	}

	cards := d.formatter.Format(venues)
	d.log.WithContext(ctx).Debug("built carousel", "columns", len(cards))

	return d.reply(ctx, event.ReplyToken, CarouselReply{
		AltText: CarouselAltText,
		Cards:   cards,
	})
}

func (d *Dispatcher) reply(ctx context.Context, replyToken string, reply Reply) error {
	if err := d.replier.Reply(ctx, replyToken, reply); err != nil {
		d.log.WithContext(ctx).Error("failed to send reply", "error", err)
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// searchErrorText picks the user-facing text for a failed search: the
// message of a typed search error, or the generic failure text for faults.
func searchErrorText(err error) string {
	if e, ok := apperr.As(err); ok && e.Message != "" {
		return e.Message
	}
	return restsearch.DefaultErrorMessage
}
