// Package carousel turns search results into the bounded cards shown in a
// LINE carousel.
package carousel

import (
	"strings"

	"cafe_bot_backend/internal/restsearch"
)

const (
	// ActionLabel is the tap-action label on every card.
	ActionLabel = "ぐるなびで見る"
	// ThumbnailPath is the fallback image, relative to the bot's base URL.
	ThumbnailPath = "/static/thumbnail_template.jpg"

	// MaxTextLength is the longest card text, in characters, LINE accepts
	// for a carousel column with an image.
	MaxTextLength = 60
	truncateAt    = 56
	ellipsis      = "..."

	openTimeLabel = "営業時間: "
	holidayLabel  = "定休日: "
	walkPrefix    = "徒歩 "
	walkSuffix    = "分"
)

// Card is one carousel column.
type Card struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	Title        string `json:"title"`
	Text         string `json:"text"`
	ActionLabel  string `json:"actionLabel"`
	ActionURL    string `json:"actionUrl"`
}

// Formatter builds cards. It holds only the bot's public base URL.
type Formatter struct {
	fallbackThumbnail string
}

// NewFormatter creates a formatter whose fallback thumbnail lives under
// baseURL.
func NewFormatter(baseURL string) *Formatter {
	return &Formatter{
		fallbackThumbnail: strings.TrimRight(baseURL, "/") + ThumbnailPath,
	}
}

// Format maps each venue to a card, keeping length and order.
func (f *Formatter) Format(venues []restsearch.Venue) []Card {
	cards := make([]Card, 0, len(venues))
	for _, venue := range venues {
		cards = append(cards, f.card(venue))
	}
	return cards
}

func (f *Formatter) card(venue restsearch.Venue) Card {
	thumbnail := venue.ImageURL
	if thumbnail == "" {
		thumbnail = f.fallbackThumbnail
	}

	return Card{
		ThumbnailURL: thumbnail,
		Title:        venue.Name,
		Text:         Truncate(cardText(venue)),
		ActionLabel:  ActionLabel,
		ActionURL:    venue.URL,
	}
}

func cardText(venue restsearch.Venue) string {
	var b strings.Builder
	b.WriteString(openTimeLabel + venue.OpenTime + "\n")
	b.WriteString(holidayLabel + venue.Holiday + "\n")
	b.WriteString(walkPrefix + venue.Walk + walkSuffix + "\n")
	return b.String()
}

// Truncate shortens text longer than MaxTextLength characters to its first
// 56 characters followed by "...". Characters are counted as runes, not bytes.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxTextLength {
		return text
	}
	return string(runes[:truncateAt]) + ellipsis
}
