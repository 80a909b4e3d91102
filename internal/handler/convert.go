package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tunepull/api/internal/model"
	"github.com/tunepull/api/internal/service"
	"github.com/tunepull/api/pkg/response"
)

type ConvertHandler struct {
	service   *service.ConvertService
	validator *validator.Validate
}

func NewConvertHandler(svc *service.ConvertService, v *validator.Validate) *ConvertHandler {
	return &ConvertHandler{
		service:   svc,
		validator: v,
	}
}

// Convert handles POST /api/convert
func (h *ConvertHandler) Convert(c *fiber.Ctx) error {
	var req model.ConvertRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "YouTube URL is required")
	}
	if req.URL == "" {
		return response.ValidationError(c, "YouTube URL is required")
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Invalid YouTube URL")
	}

	result, err := h.service.Convert(c.Context(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedURL) {
			return response.ValidationError(c, "Invalid YouTube URL")
		}
		return response.ServiceError(c, "Failed to process video: "+err.Error())
	}

	return response.OK(c, result)
}

// ConvertFromStream handles POST /api/convert-from-stream
func (h *ConvertHandler) ConvertFromStream(c *fiber.Ctx) error {
	var req model.ConvertFromStreamRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Stream URL, title and video ID are required")
	}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, validationMessage(err))
	}

	result, err := h.service.ConvertFromStream(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, "Failed to convert stream: "+err.Error())
	}

	return response.OK(c, result)
}

// validationMessage collapses validator errors into the single-string error
// contract.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return "Invalid or missing fields: " + strings.Join(fields, ", ")
}
