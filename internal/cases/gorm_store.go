package cases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

// urgencyRank mirrors models.Urgency.Rank for ORDER BY.
const urgencyRank = `CASE urgency_level WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 1 ELSE 0 END`

// GormStore is the Postgres Store.
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ Store = (*GormStore)(nil)

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Documents", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") })
}

// Create inserts the case and its documents in one transaction.
func (s *GormStore) Create(ctx context.Context, c *models.Case) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	var c models.Case
	if err := withChildren(s.db.WithContext(ctx)).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) list(ctx context.Context, order string, where string, args ...any) ([]models.Case, error) {
	out := make([]models.Case, 0)
	err := withChildren(s.db.WithContext(ctx)).
		Where(where, args...).
		Order(order).
		Find(&out).Error
	return out, err
}

func (s *GormStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Case, error) {
	return s.list(ctx, "created_at DESC", "client_id = ?", clientID)
}

// ListAvailable is the lawyers' queue: most urgent first, newest first within a level.
func (s *GormStore) ListAvailable(ctx context.Context) ([]models.Case, error) {
	return s.list(ctx, urgencyRank+" DESC, created_at DESC",
		"status = ? AND assigned_lawyer_id IS NULL", models.StatusPending)
}

func (s *GormStore) ListByLawyer(ctx context.Context, lawyerID uuid.UUID) ([]models.Case, error) {
	return s.list(ctx, "updated_at DESC", "assigned_lawyer_id = ?", lawyerID)
}

// Accept assigns the case only if it is still Pending and unassigned at write time.
// The acceptance comment commits with the assignment or not at all.
func (s *GormStore) Accept(ctx context.Context, in AcceptInput) (*models.Case, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Case{}).
			Where("id = ? AND assigned_lawyer_id IS NULL AND status = ?", in.CaseID, models.StatusPending).
			Updates(map[string]any{
				"assigned_lawyer_id": in.LawyerID,
				"status":             models.StatusAssigned,
				"assigned_at":        in.At,
				"updated_at":         in.At,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if _, err := lockedSnapshot(tx, in.CaseID); err != nil {
				return err
			}
			return ErrAlreadyAssigned
		}

		return tx.Create(&models.CaseComment{
			CaseID:    in.CaseID,
			UserID:    in.LawyerID,
			UserType:  models.RoleLawyer,
			Text:      "Case accepted by " + in.LawyerName,
			Timestamp: in.At,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, in.CaseID)
}

// UpdateStatus applies the change only while the caller is assigned and the
// case is not Closed. The optional comment commits with it.
func (s *GormStore) UpdateStatus(ctx context.Context, in StatusInput) (*models.Case, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Case{}).
			Where("id = ? AND assigned_lawyer_id = ? AND status IN ?", in.CaseID, in.LawyerID, updatableFrom).
			Updates(map[string]any{
				"status":     in.Status,
				"updated_at": in.At,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			cur, err := lockedSnapshot(tx, in.CaseID)
			if err != nil {
				return err
			}
			if !cur.IsAssignedTo(in.LawyerID) {
				return ErrNotAssigned
			}
			if IsTerminal(cur.Status) {
				return ErrCaseClosed
			}
			return ErrInvalidStatus
		}

		if in.Comment == "" {
			return nil
		}
		return tx.Create(&models.CaseComment{
			CaseID:    in.CaseID,
			UserID:    in.LawyerID,
			UserType:  models.RoleLawyer,
			Text:      in.Comment,
			Timestamp: in.At,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, in.CaseID)
}

// AddComment bumps updated_at and appends the comment in one transaction.
func (s *GormStore) AddComment(ctx context.Context, caseID uuid.UUID, cm models.CaseComment) (*models.Case, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Case{}).Where("id = ?", caseID).Update("updated_at", cm.Timestamp)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		cm.CaseID = caseID
		return tx.Create(&cm).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, caseID)
}

// lockedSnapshot re-reads a case after a conditional write missed, to tell
// the caller why. FOR SHARE keeps it stable until the transaction ends.
func lockedSnapshot(tx *gorm.DB, id uuid.UUID) (*models.Case, error) {
	var cur models.Case
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Select("id", "status", "assigned_lawyer_id").
		First(&cur, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cur, nil
}
