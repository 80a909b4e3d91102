package handler

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tunepull/api/internal/client"
	"github.com/tunepull/api/internal/model"
	"github.com/tunepull/api/pkg/response"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,20}$`)

// FetchHandler proxies watch-page fetches for the browser-side extractor.
// The browser cannot GET the page itself across origins; the server fetches
// it verbatim and hands the markup back without parsing it.
type FetchHandler struct {
	youtube   client.PageFetcher
	validator *validator.Validate
}

func NewFetchHandler(yt client.PageFetcher, v *validator.Validate) *FetchHandler {
	return &FetchHandler{
		youtube:   yt,
		validator: v,
	}
}

// FetchPage handles POST /api/fetch-youtube
func (h *FetchHandler) FetchPage(c *fiber.Ctx) error {
	var req model.FetchPageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Video ID is required")
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Video ID is required")
	}
	if !videoIDPattern.MatchString(req.VideoID) {
		return response.ValidationError(c, "Invalid video ID")
	}

	html, err := h.youtube.FetchWatchPage(c.Context(), req.VideoID)
	if err != nil {
		return response.BadGateway(c, "Failed to fetch YouTube page")
	}

	return response.OK(c, model.FetchPageResponse{HTML: html})
}
