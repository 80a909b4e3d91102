package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tunepull/api/internal/storage"
	"github.com/tunepull/api/pkg/response"
)

// DownloadHandler serves finished artifacts exactly once: after the transfer
// the file is scheduled for deletion, with a short grace period so the
// response can flush fully before the bytes disappear.
type DownloadHandler struct {
	store *storage.Store
}

func NewDownloadHandler(store *storage.Store) *DownloadHandler {
	return &DownloadHandler{store: store}
}

// Download handles GET /api/download/:filename
func (h *DownloadHandler) Download(c *fiber.Ctx) error {
	filename := c.Params("filename")

	// Resolve rejects anything that is not a bare name inside the output
	// directory, so traversal attempts land here as a plain 404.
	path, err := h.store.Resolve(filename)
	if err != nil {
		return response.NotFound(c, "File not found")
	}

	h.store.ScheduleDelete(path)
	return c.Download(path, filename)
}
