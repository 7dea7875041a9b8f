package users

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

// MemoryRepository is an in-memory Repository. Handy for tests and local runs
// without a database.
type MemoryRepository struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.User
	email map[string]uuid.UUID
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[uuid.UUID]*models.User{}, email: map[string]uuid.UUID{}}
}

func (m *MemoryRepository) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return ErrDuplicateEmail
	}
	m.byID[u.ID] = clone(u)
	m.email[u.Email] = u.ID
	return nil
}

func (m *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.email[email]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(m.byID[id]), nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (m *MemoryRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, *clone(u))
		}
	}
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "experience":
			u.Experience = v.(string)
		case "bar_number":
			u.BarNumber = v.(string)
		case "specializations":
			u.Specializations = v.(pq.StringArray)
		}
	}
	return nil
}

func (m *MemoryRepository) AppendCase(_ context.Context, userID, caseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.CaseIDs = append(u.CaseIDs, caseID.String())
	return nil
}


func clone(u *models.User) *models.User {
	cp := *u
	cp.Roles = append(pq.StringArray(nil), u.Roles...)
	cp.Specializations = append(pq.StringArray(nil), u.Specializations...)
	cp.CaseIDs = append(pq.StringArray(nil), u.CaseIDs...)
	return &cp
}
