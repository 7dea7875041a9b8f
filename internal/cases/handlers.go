package cases

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aldoetobex/legal-case-backend/internal/auth"
	"github.com/aldoetobex/legal-case-backend/internal/policy"
	"github.com/aldoetobex/legal-case-backend/internal/storage"
	"github.com/aldoetobex/legal-case-backend/internal/users"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
	"github.com/aldoetobex/legal-case-backend/pkg/utils"
	"github.com/aldoetobex/legal-case-backend/pkg/validation"
)

// ===== DTOs =====

// ReportRequest is submitted as multipart/form-data together with the documents.
type ReportRequest struct {
	Title               string `json:"title" form:"title" validate:"notblank,max=200"`
	Description         string `json:"description" form:"description" validate:"notblank,max=10000"`
	Category            string `json:"category" form:"category" validate:"max=60"`
	UrgencyLevel        string `json:"urgencyLevel" form:"urgencyLevel" validate:"required,urgency"`
	CommunicationMethod string `json:"communicationMethod" form:"communicationMethod" validate:"notblank,max=60"`
	SpecialRequirements string `json:"specialRequirements" form:"specialRequirements" validate:"max=2000"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

type StatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type Handler struct {
	svc   *Service
	files *storage.Disk
	log   zerolog.Logger
}

func NewHandler(svc *Service, files *storage.Disk, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, files: files, log: log}
}

// httpError maps domain errors to responses; forbidden is the message for policy.ErrForbidden.
func httpError(err error, forbidden string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Case not found")
	case errors.Is(err, users.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	case errors.Is(err, policy.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, forbidden)
	case errors.Is(err, ErrAlreadyAssigned):
		return fiber.NewError(fiber.StatusBadRequest, "Case is already assigned to a lawyer")
	case errors.Is(err, ErrNotAssigned):
		return fiber.NewError(fiber.StatusForbidden, "You are not assigned to this case")
	case errors.Is(err, ErrCaseClosed):
		return fiber.NewError(fiber.StatusConflict, "Case is closed")
	case errors.Is(err, ErrInvalidStatus):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
	case errors.Is(err, ErrEmptyComment):
		return fiber.NewError(fiber.StatusBadRequest, "Comment cannot be empty")
	default:
		return err
	}
}

func (h *Handler) listResponse(c *fiber.Ctx, cs []models.Case, view func(*models.Case, map[uuid.UUID]*models.User) CaseView) error {
	people, err := h.svc.People(c.UserContext(), cs...)
	if err != nil {
		return err
	}
	out := CaseListResponse{Cases: make([]CaseView, 0, len(cs))}
	for i := range cs {
		out.Cases = append(out.Cases, view(&cs[i], people))
	}
	return c.JSON(out)
}

func (h *Handler) caseResponse(c *fiber.Ctx, msg string, cs *models.Case) error {
	people, err := h.svc.People(c.UserContext(), *cs)
	if err != nil {
		return err
	}
	return c.JSON(CaseMessageResponse{
		Message: msg,
		Case:    NewDetailView(auth.MustCaller(c), cs, people),
	})
}

// ===== Client =====

// Report Case godoc
// @Summary      Report a case
// @Description  Client reports a new case with optional attachments (pdf, docx, jpg, jpeg). An empty category is classified automatically.
// @Tags         cases
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        title                formData  string  true   "title"
// @Param        description          formData  string  true   "description"
// @Param        category             formData  string  false  "category; empty to classify"
// @Param        urgencyLevel         formData  string  true   "Low, Medium or High"
// @Param        communicationMethod  formData  string  true   "preferred contact method"
// @Param        specialRequirements  formData  string  false  "special requirements"
// @Param        documents            formData  file    false  "attachments"
// @Success      201  {object}  ReportResponse
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /cases/report [post]
func (h *Handler) Report(c *fiber.Ctx) error {
	var in ReportRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	caller := auth.MustCaller(c)
	docs, err := h.saveDocuments(c, caller.ID.String())
	if err != nil {
		return err
	}

	cs, err := h.svc.Report(c.UserContext(), caller, ReportInput{
		Title:               strings.TrimSpace(in.Title),
		Description:         strings.TrimSpace(in.Description),
		Category:            in.Category,
		UrgencyLevel:        models.Urgency(in.UrgencyLevel),
		CommunicationMethod: strings.TrimSpace(in.CommunicationMethod),
		SpecialRequirements: strings.TrimSpace(in.SpecialRequirements),
	}, docs)
	if err != nil {
		h.removeDocuments(docs)
		return httpError(err, "Access denied")
	}

	return c.Status(fiber.StatusCreated).JSON(ReportResponse{
		Message:      "Case reported successfully",
		CaseID:       cs.ID.String(),
		Category:     cs.Category,
		AIClassified: cs.AIClassified,
		CreatedAt:    utils.ISOTime(cs.CreatedAt),
	})
}

// Client Cases godoc
// @Summary      My cases
// @Description  Cases the client reported, newest first
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  CaseListResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /cases/client/cases [get]
func (h *Handler) ClientCases(c *fiber.Ctx) error {
	cs, err := h.svc.ListForClient(c.UserContext(), auth.MustCaller(c))
	if err != nil {
		return httpError(err, "Unauthorized")
	}
	return h.listResponse(c, cs, NewCaseView)
}

// Get Case godoc
// @Summary      Case detail
// @Description  Owner, assigned lawyer or admin reads a case with documents and comments
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "case id (uuid)"
// @Success      200  {object}  CaseView
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/case/{id} [get]
func (h *Handler) GetCase(c *fiber.Ctx) error {
	id, err := utils.ParamUUID(c, "id", "Invalid case ID")
	if err != nil {
		return err
	}
	caller := auth.MustCaller(c)

	cs, err := h.svc.Get(c.UserContext(), caller, id)
	if err != nil {
		return httpError(err, "Access denied")
	}
	people, err := h.svc.People(c.UserContext(), *cs)
	if err != nil {
		return err
	}
	return c.JSON(NewDetailView(caller, cs, people))
}

// Add Comment godoc
// @Summary      Comment on a case
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string          true  "case id (uuid)"
// @Param        payload  body  CommentRequest  true  "comment"
// @Success      200  {object}  CaseMessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/add-comment/{id} [post]
func (h *Handler) AddComment(c *fiber.Ctx) error {
	id, err := utils.ParamUUID(c, "id", "Invalid case ID")
	if err != nil {
		return err
	}
	var in CommentRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}

	cs, err := h.svc.AddComment(c.UserContext(), auth.MustCaller(c), id, in.Comment)
	if err != nil {
		return httpError(err, "You are not authorized to comment on this case")
	}
	return h.caseResponse(c, "Comment added successfully", cs)
}

// ===== Lawyer =====

// Available Cases godoc
// @Summary      Available cases
// @Description  Unassigned Pending cases, most urgent and newest first
// @Tags         lawyer
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  CaseListResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /lawyer/cases/available-cases [get]
func (h *Handler) AvailableCases(c *fiber.Ctx) error {
	cs, err := h.svc.ListAvailable(c.UserContext(), auth.MustCaller(c))
	if err != nil {
		return httpError(err, "Unauthorized")
	}
	return h.listResponse(c, cs, NewLawyerCaseView)
}

// Assigned Cases godoc
// @Summary      Assigned cases
// @Description  Cases assigned to the calling lawyer, most recently updated first
// @Tags         lawyer
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  CaseListResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /lawyer/cases/assigned-cases [get]
func (h *Handler) AssignedCases(c *fiber.Ctx) error {
	cs, err := h.svc.ListForLawyer(c.UserContext(), auth.MustCaller(c))
	if err != nil {
		return httpError(err, "Unauthorized")
	}
	return h.listResponse(c, cs, NewLawyerCaseView)
}

// Accept Case godoc
// @Summary      Accept a case
// @Description  Assigns a Pending case to the caller. Concurrent accepts: exactly one wins.
// @Tags         lawyer
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "case id (uuid)"
// @Success      200  {object}  CaseMessageResponse
// @Failure      400  {object}  models.ErrorResponse  "already assigned"
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /lawyer/cases/accept-case/{id} [post]
func (h *Handler) AcceptCase(c *fiber.Ctx) error {
	id, err := utils.ParamUUID(c, "id", "Invalid case ID")
	if err != nil {
		return err
	}
	cs, err := h.svc.Accept(c.UserContext(), auth.MustCaller(c), id)
	if err != nil {
		return httpError(err, "Unauthorized")
	}
	return h.caseResponse(c, "Case accepted successfully", cs)
}

// Update Case Status godoc
// @Summary      Update case status
// @Description  Assigned lawyer moves the case to InProgress, OnHold or Closed, with an optional comment
// @Tags         lawyer
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string         true  "case id (uuid)"
// @Param        payload  body  StatusRequest  true  "status and optional comment"
// @Success      200  {object}  CaseMessageResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse  "case closed"
// @Router       /lawyer/cases/update-case-status/{id} [post]
func (h *Handler) UpdateCaseStatus(c *fiber.Ctx) error {
	id, err := utils.ParamUUID(c, "id", "Invalid case ID")
	if err != nil {
		return err
	}
	var in StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if strings.TrimSpace(in.Status) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Status is required")
	}

	cs, err := h.svc.UpdateStatus(c.UserContext(), auth.MustCaller(c), id, models.CaseStatus(strings.TrimSpace(in.Status)), in.Comment)
	if err != nil {
		return httpError(err, "Unauthorized")
	}
	return h.caseResponse(c, "Case status updated successfully", cs)
}
