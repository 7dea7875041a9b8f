package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

var (
	ErrDuplicateEmail     = errors.New("users: email already registered")
	ErrInvalidCredentials = errors.New("users: invalid email or password")
	ErrNotFound           = errors.New("users: not found")
)

// SignupInput is the data needed to open an account.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	UserType  models.Role
	BarNumber string
}

// ProfileInput holds the editable profile fields. Nil means unchanged.
type ProfileInput struct {
	FirstName       *string
	LastName        *string
	Bio             *string
	Experience      *string
	BarNumber       *string
	Specializations []string
}

// Accounts is the credential store: hashing, lookup and profile edits.
type Accounts struct {
	repo Repository
	cost int

	// compared against when the email is unknown so both failure paths cost one bcrypt run
	dummyHash []byte
}

func NewAccounts(repo Repository, cost int) *Accounts {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &Accounts{repo: repo, cost: cost, dummyHash: dummy}
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount registers a user with a single initial role.
func (a *Accounts) CreateAccount(ctx context.Context, in SignupInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)

	if _, err := a.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:              uuid.New(),
		Email:           email,
		PasswordHash:    string(hash),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		UserType:        in.UserType,
		Roles:           pq.StringArray{string(in.UserType)},
		Specializations: pq.StringArray{},
		CaseIDs:         pq.StringArray{},
	}
	if in.UserType == models.RoleLawyer {
		u.BarNumber = strings.TrimSpace(in.BarNumber)
	}

	// unique index catches a concurrent signup that slipped past the lookup
	if err := a.repo.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyCredentials never says which half was wrong.
func (a *Accounts) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	u, err := a.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (a *Accounts) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return a.repo.FindByID(ctx, id)
}

// GetMany batch-loads users keyed by id. Missing ids are simply absent.
func (a *Accounts) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	uniq := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	list, err := a.repo.FindByIDs(ctx, uniq)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.User, len(list))
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

// UpdateProfile applies the non-nil fields. Lawyer-only fields are ignored for other users.
func (a *Accounts) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileInput) (*models.User, error) {
	u, err := a.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if u.HasRole(models.RoleLawyer) {
		if in.Bio != nil {
			fields["bio"] = strings.TrimSpace(*in.Bio)
		}
		if in.Experience != nil {
			fields["experience"] = strings.TrimSpace(*in.Experience)
		}
		if in.BarNumber != nil {
			fields["bar_number"] = strings.TrimSpace(*in.BarNumber)
		}
		if in.Specializations != nil {
			specs := make(pq.StringArray, 0, len(in.Specializations))
			for _, s := range in.Specializations {
				if s = strings.TrimSpace(s); s != "" {
					specs = append(specs, s)
				}
			}
			fields["specializations"] = emptyArray(specs)
		}
	}
	if len(fields) == 0 {
		return u, nil
	}

	if err := a.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return a.repo.FindByID(ctx, id)
}

// AttachCase records the denormalized back-reference from user to case.
func (a *Accounts) AttachCase(ctx context.Context, userID, caseID uuid.UUID) error {
	return a.repo.AppendCase(ctx, userID, caseID)
}
