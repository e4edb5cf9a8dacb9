// Package bot decides how the cafe bot answers each inbound chat event.
package bot

import "cafe_bot_backend/internal/restsearch"

// Kind names an event type for logging.
type Kind string

const (
	KindText        Kind = "text"
	KindLocation    Kind = "location"
	KindFollow      Kind = "follow"
	KindUnfollow    Kind = "unfollow"
	KindUnsupported Kind = "unsupported"
)

// Meta is carried by every event. ReplyToken is opaque and single-use.
type Meta struct {
	ReplyToken     string
	WebhookEventID string
	Redelivery     bool
	UserID         string
}

// Event is one inbound platform event. The concrete types below are the
// only implementations.
type Event interface {
	Kind() Kind
	Metadata() Meta
}

// TextMessage is a plain text message sent to the bot.
type TextMessage struct {
	Meta
	Text string
}

// LocationMessage is a shared location.
type LocationMessage struct {
	Meta
	Title       string
	Address     string
	Coordinates restsearch.Coordinates
}

// Follow is sent when a user adds the bot as a friend or unblocks it.
type Follow struct {
	Meta
}

// Unfollow is sent when a user blocks the bot. It carries no reply token.
type Unfollow struct {
	Meta
}

// Unsupported is any event the bot does not act on (stickers, postbacks, ...).
type Unsupported struct {
	Meta
	Type string
}

func (TextMessage) Kind() Kind     { return KindText }
func (LocationMessage) Kind() Kind { return KindLocation }
func (Follow) Kind() Kind          { return KindFollow }
func (Unfollow) Kind() Kind        { return KindUnfollow }
func (Unsupported) Kind() Kind     { return KindUnsupported }

func (m Meta) Metadata() Meta { return m }
