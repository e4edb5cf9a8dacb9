// Package line adapts the LINE Messaging API to the bot's event and reply
// types. Nothing outside this package imports the LINE SDK.
package line

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cafe_bot_backend/internal/bot"
	"cafe_bot_backend/internal/restsearch"
	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/config"
	"cafe_bot_backend/platform/logger"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// ErrInvalidSignature is returned when X-Line-Signature does not match the
// request body.
var ErrInvalidSignature = apperr.Unauthorized("invalid signature")

// Gateway verifies inbound webhook calls and sends replies.
type Gateway struct {
	client *linebot.Client
	log    *logger.Logger
}

// NewGateway creates a gateway. httpClient carries the outbound proxy; an
// empty LINE API endpoint keeps the SDK default.
func NewGateway(cfg config.LineConfig, httpClient *http.Client, log *logger.Logger) (*Gateway, error) {
	opts := []linebot.ClientOption{linebot.WithHTTPClient(httpClient)}
	if endpoint := cfg.GetLineAPIEndpoint(); endpoint != "" {
		opts = append(opts, linebot.WithEndpointBase(endpoint))
	}

	client, err := linebot.New(cfg.GetLineChannelSecret(), cfg.GetLineChannelAccessToken(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create line client: %w", err)
	}

	return &Gateway{client: client, log: log}, nil
}

// ParseRequest verifies the signature of a webhook call and decodes its events
// in delivery order.
func (g *Gateway) ParseRequest(r *http.Request) ([]bot.Event, error) {
	events, err := g.client.ParseRequest(r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("parse webhook body: %w", err)
	}

	result := make([]bot.Event, 0, len(events))
	for _, event := range events {
		result = append(result, toEvent(event))
	}
	return result, nil
}

// Reply sends one reply message for the given reply token.
func (g *Gateway) Reply(ctx context.Context, replyToken string, reply bot.Reply) error {
	message, err := toMessage(reply)
	if err != nil {
		return err
	}

	if _, err := g.client.ReplyMessage(replyToken, message).WithContext(ctx).Do(); err != nil {
		var apiErr *linebot.APIError
		if errors.As(err, &apiErr) {
			g.log.UpstreamError("line", apiErr.Code, err)
			return apperr.Wrap(apperr.KindUpstream, apiMessage(apiErr), err).WithOp("line.Reply")
		}
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

func toEvent(e *linebot.Event) bot.Event {
	meta := bot.Meta{
		ReplyToken:     e.ReplyToken,
		WebhookEventID: e.WebhookEventID,
		Redelivery:     e.DeliveryContext.IsRedelivery,
	}
	if e.Source != nil {
		meta.UserID = e.Source.UserID
	}

	switch e.Type {
	case linebot.EventTypeMessage:
		switch m := e.Message.(type) {
		case *linebot.TextMessage:
			return bot.TextMessage{Meta: meta, Text: m.Text}
		case *linebot.LocationMessage:
			return bot.LocationMessage{
				Meta:        meta,
				Title:       m.Title,
				Address:     m.Address,
				Coordinates: restsearch.Coordinates{Latitude: m.Latitude, Longitude: m.Longitude},
			}
		}
		return bot.Unsupported{Meta: meta, Type: string(e.Type)}
	case linebot.EventTypeFollow:
		return bot.Follow{Meta: meta}
	case linebot.EventTypeUnfollow:
		return bot.Unfollow{Meta: meta}
	default:
		return bot.Unsupported{Meta: meta, Type: string(e.Type)}
	}
}

func toMessage(reply bot.Reply) (linebot.SendingMessage, error) {
	switch r := reply.(type) {
	case bot.TextReply:
		return linebot.NewTextMessage(r.Text), nil
	case bot.CarouselReply:
		columns := make([]*linebot.CarouselColumn, 0, len(r.Cards))
		for _, card := range r.Cards {
			columns = append(columns, linebot.NewCarouselColumn(
				card.ThumbnailURL,
				card.Title,
				card.Text,
				linebot.NewURIAction(card.ActionLabel, card.ActionURL),
			))
		}
		return linebot.NewTemplateMessage(r.AltText, linebot.NewCarouselTemplate(columns...)), nil
	default:
		return nil, fmt.Errorf("unsupported reply type %T", reply)
	}
}

func apiMessage(err *linebot.APIError) string {
	if err.Response != nil && err.Response.Message != "" {
		return err.Response.Message
	}
	return fmt.Sprintf("line api returned %d", err.Code)
}
