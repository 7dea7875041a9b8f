package cases

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aldoetobex/legal-case-backend/internal/policy"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
	"github.com/aldoetobex/legal-case-backend/pkg/sanitize"
)

// Directory is the part of the credential store the case workflows read.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
	AttachCase(ctx context.Context, userID, caseID uuid.UUID) error
}

// Classifier guesses a category. It never fails; it falls back to a default label.
type Classifier interface {
	Classify(ctx context.Context, text string) string
}

// ReportInput is what a client submits when reporting a case.
type ReportInput struct {
	Title               string
	Description         string
	Category            string
	UrgencyLevel        models.Urgency
	CommunicationMethod string
	SpecialRequirements string
}

// Service runs the case workflows on top of a Store.
type Service struct {
	store      Store
	people     Directory
	classifier Classifier
	log        zerolog.Logger
	now        func() time.Time
}

func NewService(store Store, people Directory, classifier Classifier, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		people:     people,
		classifier: classifier,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Report creates a Pending case owned by the caller. An empty category is
// filled in by the classifier and flagged as AI-classified.
func (s *Service) Report(ctx context.Context, caller policy.Caller, in ReportInput, docs []models.CaseDocument) (*models.Case, error) {
	client, err := s.people.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	category, aiClassified := in.Category, false
	if strings.TrimSpace(category) == "" {
		category, aiClassified = s.classifier.Classify(ctx, in.Description), true
	}

	now := s.now()
	c := &models.Case{
		ID:                  uuid.New(),
		Title:               in.Title,
		Description:         in.Description,
		Category:            category,
		UrgencyLevel:        in.UrgencyLevel,
		CommunicationMethod: in.CommunicationMethod,
		SpecialRequirements: in.SpecialRequirements,
		ClientID:            client.ID,
		ClientName:          client.FullName(),
		Status:              models.StatusPending,
		AIClassified:        aiClassified,
		CreatedAt:           now,
		UpdatedAt:           now,
		Documents:           docs,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	// back-reference only; cases.client_id is the source of truth
	if err := s.people.AttachCase(ctx, client.ID, c.ID); err != nil {
		s.log.Warn().Err(err).Str("case_id", c.ID.String()).Msg("case id not attached to client")
	}

	s.log.Info().
		Str("case_id", c.ID.String()).
		Str("category", category).
		Bool("ai_classified", aiClassified).
		Int("documents", len(docs)).
		Str("summary", sanitize.Summary(sanitize.RedactPII(in.Description), 80)).
		Msg("case reported")
	return c, nil
}

func (s *Service) ListForClient(ctx context.Context, caller policy.Caller) ([]models.Case, error) {
	if !policy.CanListOwnCases(caller) {
		return nil, policy.ErrForbidden
	}
	return s.store.ListByClient(ctx, caller.ID)
}

func (s *Service) ListAvailable(ctx context.Context, caller policy.Caller) ([]models.Case, error) {
	if !policy.CanListAvailable(caller) {
		return nil, policy.ErrForbidden
	}
	return s.store.ListAvailable(ctx)
}

func (s *Service) ListForLawyer(ctx context.Context, caller policy.Caller) ([]models.Case, error) {
	if !caller.Has(models.RoleLawyer) {
		return nil, policy.ErrForbidden
	}
	return s.store.ListByLawyer(ctx, caller.ID)
}

// Get returns ErrNotFound before policy.ErrForbidden: existence is not hidden.
func (s *Service) Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.Case, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadCase(caller, c) {
		return nil, policy.ErrForbidden
	}
	return c, nil
}

// Accept assigns a Pending case to the calling lawyer. When two lawyers race,
// exactly one wins; the other gets ErrAlreadyAssigned.
func (s *Service) Accept(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.Case, error) {
	if !policy.CanAccept(caller) {
		return nil, policy.ErrForbidden
	}
	lawyer, err := s.people.GetByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Accept(ctx, AcceptInput{
		CaseID:     id,
		LawyerID:   lawyer.ID,
		LawyerName: lawyer.FullName(),
		At:         s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("case_id", id.String()).Str("lawyer_id", lawyer.ID.String()).Msg("case accepted")
	return c, nil
}

// UpdateStatus moves an assigned case to InProgress, OnHold or Closed.
// The target is validated before anything is read.
func (s *Service) UpdateStatus(ctx context.Context, caller policy.Caller, id uuid.UUID, status models.CaseStatus, comment string) (*models.Case, error) {
	if !IsUpdateTarget(status) {
		return nil, ErrInvalidStatus
	}
	if !caller.Has(models.RoleLawyer) {
		return nil, ErrNotAssigned
	}

	c, err := s.store.UpdateStatus(ctx, StatusInput{
		CaseID:   id,
		LawyerID: caller.ID,
		Status:   status,
		Comment:  strings.TrimSpace(comment),
		At:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("case_id", id.String()).Str("status", string(status)).Msg("case status updated")
	return c, nil
}

// AddComment appends a trimmed comment as the role that authorized it.
// Ownership and assignment never revert, so the check cannot go stale before the write.
func (s *Service) AddComment(ctx context.Context, caller policy.Caller, id uuid.UUID, text string) (*models.Case, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	role, ok := policy.CommentRole(caller, c)
	if !ok {
		return nil, policy.ErrForbidden
	}

	return s.store.AddComment(ctx, id, models.CaseComment{
		UserID:    caller.ID,
		UserType:  role,
		Text:      text,
		Timestamp: s.now(),
	})
}

// People batch-loads every client and assigned lawyer referenced by cs.
func (s *Service) People(ctx context.Context, cs ...models.Case) (map[uuid.UUID]*models.User, error) {
	ids := make([]uuid.UUID, 0, 2*len(cs))
	for i := range cs {
		ids = append(ids, cs[i].ClientID)
		if cs[i].AssignedLawyerID != nil {
			ids = append(ids, *cs[i].AssignedLawyerID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*models.User{}, nil
	}
	return s.people.GetMany(ctx, ids)
}
