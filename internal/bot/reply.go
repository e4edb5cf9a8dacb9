package bot

import (
	"context"

	"cafe_bot_backend/internal/carousel"
)

const (
	// WelcomeText greets a new follower.
	WelcomeText = "フォローありがとうございます。位置情報を送っていただくことで、お近くの喫茶店をお伝えします\U00100059"
	// CarouselAltText is shown by clients that cannot render templates.
	CarouselAltText = "喫茶店の情報をお伝えしました"
)

// Reply is an outbound message. TextReply and CarouselReply are the only
// implementations.
type Reply interface {
	isReply()
}

// TextReply is a single text message.
type TextReply struct {
	Text string
}

// CarouselReply is a template message with one column per card.
type CarouselReply struct {
	AltText string
	Cards   []carousel.Card
}

func (TextReply) isReply()     {}
func (CarouselReply) isReply() {}

// Replier delivers a reply correlated to an inbound event.
type Replier interface {
	Reply(ctx context.Context, replyToken string, reply Reply) error
}
