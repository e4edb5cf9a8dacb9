package nearby

import (
	"context"

	"cafe_bot_backend/internal/carousel"
	"cafe_bot_backend/internal/restsearch"
	"cafe_bot_backend/platform/apperr"
	"cafe_bot_backend/platform/httpkit"
	"cafe_bot_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidQuery = "invalid query"
	errValidation   = "validation error"
)

// Searcher finds venues around a point.
type Searcher interface {
	Search(ctx context.Context, coords restsearch.Coordinates) ([]restsearch.Venue, error)
}

// Query is the location to search around.
type Query struct {
	Latitude  *float64 `form:"lat" validate:"required,latitude"`
	Longitude *float64 `form:"lng" validate:"required,longitude"`
}

// Response lists the cards the bot would send for the location.
type Response struct {
	Cards []carousel.Card `json:"cards"`
}

// Handler serves the nearby preview endpoint.
type Handler struct {
	searcher  Searcher
	formatter *carousel.Formatter
	val       *validator.Validator
}

// NewHandler creates a new nearby handler.
func NewHandler(searcher Searcher, formatter *carousel.Formatter, val *validator.Validator) *Handler {
	return &Handler{searcher: searcher, formatter: formatter, val: val}
}

// HandleNearby returns the carousel cards for the given coordinates.
// GET /api/v1/nearby?lat=..&lng=..
func (h *Handler) HandleNearby(c *gin.Context) {
	var query Query
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(errInvalidQuery).WithDetails(err.Error()))
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.HandleError(c, apperr.Validation(errValidation).WithDetails(err.Error()))
		return
	}

	coords := restsearch.Coordinates{Latitude: *query.Latitude, Longitude: *query.Longitude}
	venues, err := h.searcher.Search(c.Request.Context(), coords)
	if err != nil {
		if _, ok := apperr.As(err); !ok {
			err = apperr.Wrap(apperr.KindUpstream, restsearch.DefaultErrorMessage, err)
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, Response{Cards: h.formatter.Format(venues)})
}
