package cases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

var (
	ErrNotFound        = errors.New("cases: not found")
	ErrAlreadyAssigned = errors.New("cases: already assigned")
	ErrNotAssigned     = errors.New("cases: caller is not the assigned lawyer")
	ErrCaseClosed      = errors.New("cases: case is closed")
	ErrInvalidStatus   = errors.New("cases: invalid status")
	ErrEmptyComment    = errors.New("cases: comment is empty")
)

// AcceptInput carries everything Accept writes in one go.
type AcceptInput struct {
	CaseID     uuid.UUID
	LawyerID   uuid.UUID
	LawyerName string
	At         time.Time
}

// StatusInput carries one status update. Comment is already trimmed; empty means none.
type StatusInput struct {
	CaseID   uuid.UUID
	LawyerID uuid.UUID
	Status   models.CaseStatus
	Comment  string
	At       time.Time
}

// Store persists cases. Accept and UpdateStatus are compare-and-swap writes:
// the precondition is checked by the write itself, never by a prior read.
type Store interface {
	Create(ctx context.Context, c *models.Case) error
	// Get preloads documents and comments, comments in insertion order.
	Get(ctx context.Context, id uuid.UUID) (*models.Case, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Case, error)
	ListAvailable(ctx context.Context) ([]models.Case, error)
	ListByLawyer(ctx context.Context, lawyerID uuid.UUID) ([]models.Case, error)

	Accept(ctx context.Context, in AcceptInput) (*models.Case, error)
	UpdateStatus(ctx context.Context, in StatusInput) (*models.Case, error)
	AddComment(ctx context.Context, caseID uuid.UUID, cm models.CaseComment) (*models.Case, error)
}
