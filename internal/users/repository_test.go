package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legal-case-backend/internal/testutil"
)

func uniqueEmail() string { return uuid.NewString()[:8] + "@example.com" }

func TestGormRepository_Integration(t *testing.T) {
	db := testutil.OpenPostgres(t)
	acc := NewAccounts(NewGormRepository(db), bcrypt.MinCost)
	ctx := context.Background()

	in := signup(uniqueEmail())
	in.UserType = "lawyer"
	u, err := acc.CreateAccount(ctx, in)
	require.NoError(t, err)

	t.Run("unique index rejects duplicates", func(t *testing.T) {
		dup := *u
		dup.ID = uuid.New()
		err := NewGormRepository(db).Insert(ctx, &dup)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("login round trip", func(t *testing.T) {
		got, err := acc.VerifyCredentials(ctx, in.Email, in.Password)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.True(t, got.HasRole("lawyer"))
	})

	t.Run("profile update and case back-reference", func(t *testing.T) {
		bio := "Tenancy disputes"
		got, err := acc.UpdateProfile(ctx, u.ID, ProfileInput{Bio: &bio, Specializations: []string{"property"}})
		require.NoError(t, err)
		assert.Equal(t, "Tenancy disputes", got.Bio)
		assert.Equal(t, []string{"property"}, []string(got.Specializations))

		caseID := uuid.New()
		require.NoError(t, acc.AttachCase(ctx, u.ID, caseID))
		reloaded, err := acc.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Contains(t, []string(reloaded.CaseIDs), caseID.String())
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := acc.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, acc.AttachCase(ctx, uuid.New(), uuid.New()), ErrNotFound)
	})
}
