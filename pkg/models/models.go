package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

/* =============================== Enums ================================== */

// Role defines the type of user in the system. A user may hold several.
type Role string

const (
	RoleClient Role = "client"
	RoleLawyer Role = "lawyer"
	RoleAdmin  Role = "admin"
)

// CaseStatus defines lifecycle states for a case.
type CaseStatus string

const (
	StatusPending    CaseStatus = "Pending"
	StatusAssigned   CaseStatus = "Assigned"
	StatusInProgress CaseStatus = "InProgress"
	StatusOnHold     CaseStatus = "OnHold"
	StatusClosed     CaseStatus = "Closed"
)

// Urgency is how soon the client needs a lawyer.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Rank orders urgencies for the available-cases queue (higher first).
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	default:
		return 0
	}
}

/* =============================== Entities =============================== */

// User is a client, lawyer or admin account.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"uniqueIndex;not null"`
	PasswordHash string         `gorm:"not null"`
	FirstName    string         `gorm:"not null"`
	LastName     string         `gorm:"not null"`
	UserType     Role           `gorm:"type:varchar(20);not null"`
	Roles        pq.StringArray `gorm:"type:text[];not null"`

	// Lawyer-only profile
	BarNumber       string
	Specializations pq.StringArray `gorm:"type:text[]"`
	Bio             string
	Experience      string
	Rating          float64

	// Denormalized back-reference to owned cases; cases.client_id is authoritative.
	CaseIDs pq.StringArray `gorm:"column:case_ids;type:text[]"`

	CreatedAt time.Time
}

// HasRole reports whether the user holds r.
func (u *User) HasRole(r Role) bool {
	return slices.Contains(u.Roles, string(r))
}

// RoleList returns the roles as typed values, preserving order.
func (u *User) RoleList() []Role {
	out := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, Role(r))
	}
	return out
}

// FullName is the display name used on cases and comments.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Case represents a legal case reported by a client.
type Case struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title               string     `gorm:"not null"`
	Description         string     `gorm:"not null"`
	Category            string     `gorm:"not null"`
	UrgencyLevel        Urgency    `gorm:"type:varchar(10);not null"`
	CommunicationMethod string     `gorm:"not null"`
	SpecialRequirements string
	ClientID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientName          string
	AssignedLawyerID    *uuid.UUID `gorm:"type:uuid;index"`
	Status              CaseStatus `gorm:"type:varchar(20);not null;default:'Pending'"`
	AIClassified        bool       `gorm:"column:ai_classified;not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	AssignedAt          *time.Time

	// Relations
	Documents []CaseDocument
	Comments  []CaseComment
}

// IsAssignedTo reports whether lawyerID is the case's assigned lawyer.
func (c *Case) IsAssignedTo(lawyerID uuid.UUID) bool {
	return c.AssignedLawyerID != nil && *c.AssignedLawyerID == lawyerID
}

// CaseDocument is a file attached to a case at report time.
type CaseDocument struct {
	ID         uint64    `gorm:"primaryKey"`
	CaseID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename   string    `gorm:"not null"`
	Path       string    `gorm:"not null"`
	UploadedAt time.Time `gorm:"not null"`
}

// CaseComment is an append-only progress note. ID doubles as insertion order.
type CaseComment struct {
	ID        uint64    `gorm:"primaryKey"`
	CaseID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	UserType  Role      `gorm:"type:varchar(20);not null"`
	Text      string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null"`
}

// RevokedToken records an explicitly invalidated token id.
type RevokedToken struct {
	JTI       string    `gorm:"column:jti;primaryKey"`
	RevokedAt time.Time `gorm:"not null"`
}
