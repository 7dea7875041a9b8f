package cases

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aldoetobex/legal-case-backend/internal/policy"
	"github.com/aldoetobex/legal-case-backend/internal/users"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

/* ============================================================================
   In-memory Store: every write checks its precondition under the lock,
   the same compare-and-swap contract GormStore gets from a conditional UPDATE.
   ============================================================================ */

type memStore struct {
	mu     sync.Mutex
	cases  map[uuid.UUID]*models.Case
	nextID uint64
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{cases: map[uuid.UUID]*models.Case{}} }

func copyCase(c *models.Case) *models.Case {
	cp := *c
	cp.Documents = append([]models.CaseDocument(nil), c.Documents...)
	cp.Comments = append([]models.CaseComment(nil), c.Comments...)
	if c.AssignedLawyerID != nil {
		id := *c.AssignedLawyerID
		cp.AssignedLawyerID = &id
	}
	return &cp
}

func (m *memStore) appendComment(c *models.Case, cm models.CaseComment) {
	m.nextID++
	cm.ID = m.nextID
	cm.CaseID = c.ID
	c.Comments = append(c.Comments, cm)
}

func (m *memStore) Create(_ context.Context, c *models.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range c.Documents {
		m.nextID++
		c.Documents[i].ID = m.nextID
		c.Documents[i].CaseID = c.ID
	}
	m.cases[c.ID] = copyCase(c)
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCase(c), nil
}

func (m *memStore) filter(keep func(*models.Case) bool, less func(a, b *models.Case) bool) []models.Case {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Case, 0)
	for _, c := range m.cases {
		if keep(c) {
			out = append(out, *copyCase(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func (m *memStore) ListByClient(_ context.Context, clientID uuid.UUID) ([]models.Case, error) {
	return m.filter(
		func(c *models.Case) bool { return c.ClientID == clientID },
		func(a, b *models.Case) bool { return a.CreatedAt.After(b.CreatedAt) },
	), nil
}

func (m *memStore) ListAvailable(_ context.Context) ([]models.Case, error) {
	return m.filter(
		func(c *models.Case) bool { return c.Status == models.StatusPending && c.AssignedLawyerID == nil },
		func(a, b *models.Case) bool {
			if a.UrgencyLevel.Rank() != b.UrgencyLevel.Rank() {
				return a.UrgencyLevel.Rank() > b.UrgencyLevel.Rank()
			}
			return a.CreatedAt.After(b.CreatedAt)
		},
	), nil
}

func (m *memStore) ListByLawyer(_ context.Context, lawyerID uuid.UUID) ([]models.Case, error) {
	return m.filter(
		func(c *models.Case) bool { return c.IsAssignedTo(lawyerID) },
		func(a, b *models.Case) bool { return a.UpdatedAt.After(b.UpdatedAt) },
	), nil
}

func (m *memStore) Accept(_ context.Context, in AcceptInput) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[in.CaseID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.AssignedLawyerID != nil || c.Status != models.StatusPending {
		return nil, ErrAlreadyAssigned
	}
	lawyer := in.LawyerID
	at := in.At
	c.AssignedLawyerID = &lawyer
	c.Status = models.StatusAssigned
	c.AssignedAt = &at
	c.UpdatedAt = at
	m.appendComment(c, models.CaseComment{UserID: lawyer, UserType: models.RoleLawyer, Text: "Case accepted by " + in.LawyerName, Timestamp: at})
	return copyCase(c), nil
}

func (m *memStore) UpdateStatus(_ context.Context, in StatusInput) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[in.CaseID]
	if !ok {
		return nil, ErrNotFound
	}
	if !c.IsAssignedTo(in.LawyerID) {
		return nil, ErrNotAssigned
	}
	if IsTerminal(c.Status) {
		return nil, ErrCaseClosed
	}
	if !CanTransition(c.Status, in.Status) {
		return nil, ErrInvalidStatus
	}
	c.Status = in.Status
	c.UpdatedAt = in.At
	if in.Comment != "" {
		m.appendComment(c, models.CaseComment{UserID: in.LawyerID, UserType: models.RoleLawyer, Text: in.Comment, Timestamp: in.At})
	}
	return copyCase(c), nil
}

func (m *memStore) AddComment(_ context.Context, caseID uuid.UUID, cm models.CaseComment) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	c.UpdatedAt = cm.Timestamp
	m.appendComment(c, cm)
	return copyCase(c), nil
}

/* ============================================================================
   Classifier, clock, people
   ============================================================================ */

type fakeClassifier struct {
	mu    sync.Mutex
	label string
	calls int
}

func (f *fakeClassifier) Classify(context.Context, string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.label
}

// tickingClock advances one second per call so orderings are deterministic.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc        *Service
	store      *memStore
	accounts   *users.Accounts
	classifier *fakeClassifier
}

func newFixture() fixture {
	store := newMemStore()
	accounts := users.NewAccounts(users.NewMemoryRepository(), bcrypt.MinCost)
	cl := &fakeClassifier{label: "family"}
	svc := NewService(store, accounts, cl, zerolog.Nop())
	clock := &tickingClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = clock.Now
	return fixture{svc: svc, store: store, accounts: accounts, classifier: cl}
}

// newUser signs up an account and returns it with its policy caller.
func (f fixture) newUser(email string, role models.Role) (*models.User, policy.Caller) {
	in := users.SignupInput{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  string(role),
		UserType:  role,
	}
	if role == models.RoleLawyer {
		in.BarNumber = "NY-12345"
	}
	u, err := f.accounts.CreateAccount(context.Background(), in)
	if err != nil {
		panic(err)
	}
	return u, policy.CallerOf(u)
}

func (f fixture) report(caller policy.Caller, title string, urgency models.Urgency) *models.Case {
	c, err := f.svc.Report(context.Background(), caller, ReportInput{
		Title:               title,
		Description:         "My landlord kept the deposit. Call me at +1 555 123 4567.",
		Category:            "property",
		UrgencyLevel:        urgency,
		CommunicationMethod: "email",
	}, nil)
	if err != nil {
		panic(err)
	}
	return c
}
