package cases

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/aldoetobex/legal-case-backend/internal/storage"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

// documentsField is the multipart key the web client uses for attachments.
const documentsField = "documents"

// saveDocuments writes every allowed attachment under ownerID. Disallowed
// types are skipped. On any other failure the files already written are
// removed and the error is returned.
func (h *Handler) saveDocuments(c *fiber.Ctx, ownerID string) ([]models.CaseDocument, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// no multipart body means no attachments
		return nil, nil
	}
	files := form.File[documentsField]
	docs := make([]models.CaseDocument, 0, len(files))

	for _, fh := range files {
		if fh.Size <= 0 {
			continue
		}
		doc, err := h.files.Save(ownerID, fh)
		if errors.Is(err, storage.ErrDisallowedType) {
			h.log.Debug().Str("filename", fh.Filename).Msg("attachment skipped: type not allowed")
			continue
		}
		if err != nil {
			h.removeDocuments(docs)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (h *Handler) removeDocuments(docs []models.CaseDocument) {
	for _, d := range docs {
		if err := h.files.Remove(d.Path); err != nil {
			h.log.Warn().Err(err).Str("path", d.Path).Msg("orphaned upload not removed")
		}
	}
}

// Download Document godoc
// @Summary      Download a case document
// @Description  Streams a stored upload. The path must resolve inside the uploads directory.
// @Tags         documents
// @Produce      octet-stream
// @Param        path  query  string  true  "stored document path"
// @Success      200  {file}    binary
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /documents/download [get]
func (h *Handler) Download(c *fiber.Ctx) error {
	p := c.Query("path")
	if p == "" {
		return fiber.NewError(fiber.StatusBadRequest, "No file path provided")
	}

	resolved, err := h.files.Resolve(p)
	switch {
	case errors.Is(err, storage.ErrOutsideRoot):
		h.log.Warn().Str("path", p).Msg("download outside uploads root rejected")
		return fiber.NewError(fiber.StatusForbidden, "Invalid file path")
	case errors.Is(err, storage.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "File not found")
	case err != nil:
		return err
	}
	return c.Download(resolved, filepath.Base(resolved))
}
