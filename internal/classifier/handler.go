package classifier

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Service is anything that can classify a description.
type Service interface {
	Classify(ctx context.Context, description string) string
}

type ProbeRequest struct {
	Description string `json:"description"`
}

type ProbeResponse struct {
	OriginalDescription string `json:"original_description"`
	ClassifiedCategory  string `json:"classified_category"`
}

// Probe godoc
// @Summary      Classify a description (dev only)
// @Description  Runs the category classifier on a description. Mounted only when APP_ENV=dev.
// @Tags         test
// @Accept       json
// @Produce      json
// @Param        payload  body  ProbeRequest  true  "description"
// @Success      200  {object}  ProbeResponse
// @Router       /test/classify [post]
func Probe(svc Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in ProbeRequest
		if err := c.BodyParser(&in); err != nil {
			return fiber.ErrBadRequest
		}
		if strings.TrimSpace(in.Description) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Description is required")
		}
		return c.JSON(ProbeResponse{
			OriginalDescription: in.Description,
			ClassifiedCategory:  svc.Classify(c.UserContext(), in.Description),
		})
	}
}
