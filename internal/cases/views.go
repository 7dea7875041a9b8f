package cases

import (
	"github.com/google/uuid"

	"github.com/aldoetobex/legal-case-backend/internal/policy"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
	"github.com/aldoetobex/legal-case-backend/pkg/sanitize"
	"github.com/aldoetobex/legal-case-backend/pkg/utils"
)

const previewLen = 160

// ===== Views =====
// Keys follow the web client: _id, camelCase fields, snake_case created/updated.

type PersonRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ClientRef struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
}

type DocumentView struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	UploadedAt string `json:"uploadedAt"`
}

type CommentView struct {
	UserID    string      `json:"userId"`
	UserType  models.Role `json:"userType"`
	Text      string      `json:"text"`
	Timestamp string      `json:"timestamp"`
}

// Actions tells the web client which buttons to show.
type Actions struct {
	CanComment      bool `json:"canComment"`
	CanAccept       bool `json:"canAccept"`
	CanUpdateStatus bool `json:"canUpdateStatus"`
}

type CaseView struct {
	ID                  string            `json:"_id"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	Category            string            `json:"category"`
	UrgencyLevel        models.Urgency    `json:"urgencyLevel"`
	CommunicationMethod string            `json:"communicationMethod"`
	SpecialRequirements string            `json:"specialRequirements"`
	ClientID            string            `json:"clientId"`
	ClientName          string            `json:"clientName"`
	AssignedLawyer      *PersonRef        `json:"assignedLawyer"`
	Status              models.CaseStatus `json:"status"`
	AIClassified        bool              `json:"aiClassified"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
	AssignedAt          *string           `json:"assignedAt"`
	Documents           []DocumentView    `json:"documents"`
	Comments            []CommentView     `json:"comments"`

	// lawyer listings only
	Client  *ClientRef `json:"client,omitempty"`
	Preview string     `json:"preview,omitempty"`

	// detail only
	Actions *Actions `json:"actions,omitempty"`
}

type CaseListResponse struct {
	Cases []CaseView `json:"cases"`
}

type CaseMessageResponse struct {
	Message string   `json:"message"`
	Case    CaseView `json:"case"`
}

type ReportResponse struct {
	Message      string `json:"message" example:"Case reported successfully"`
	CaseID       string `json:"caseId"`
	Category     string `json:"category"`
	AIClassified bool   `json:"aiClassified"`
	CreatedAt    string `json:"created_at"`
}

func NewCaseView(c *models.Case, people map[uuid.UUID]*models.User) CaseView {
	v := CaseView{
		ID:                  c.ID.String(),
		Title:               c.Title,
		Description:         c.Description,
		Category:            c.Category,
		UrgencyLevel:        c.UrgencyLevel,
		CommunicationMethod: c.CommunicationMethod,
		SpecialRequirements: c.SpecialRequirements,
		ClientID:            c.ClientID.String(),
		ClientName:          c.ClientName,
		Status:              c.Status,
		AIClassified:        c.AIClassified,
		CreatedAt:           utils.ISOTime(c.CreatedAt),
		UpdatedAt:           utils.ISOTime(c.UpdatedAt),
		AssignedAt:          utils.ISOTimePtr(c.AssignedAt),
		Documents:           make([]DocumentView, 0, len(c.Documents)),
		Comments:            make([]CommentView, 0, len(c.Comments)),
	}
	if c.AssignedLawyerID != nil {
		ref := PersonRef{ID: c.AssignedLawyerID.String()}
		if l, ok := people[*c.AssignedLawyerID]; ok {
			ref.Name = l.FullName()
		}
		v.AssignedLawyer = &ref
	}
	for _, d := range c.Documents {
		v.Documents = append(v.Documents, DocumentView{
			Filename:   d.Filename,
			Path:       d.Path,
			UploadedAt: utils.ISOTime(d.UploadedAt),
		})
	}
	for _, cm := range c.Comments {
		v.Comments = append(v.Comments, CommentView{
			UserID:    cm.UserID.String(),
			UserType:  cm.UserType,
			Text:      cm.Text,
			Timestamp: utils.ISOTime(cm.Timestamp),
		})
	}
	return v
}

// NewLawyerCaseView adds the client card and a PII-redacted preview.
func NewLawyerCaseView(c *models.Case, people map[uuid.UUID]*models.User) CaseView {
	v := NewCaseView(c, people)
	if cl, ok := people[c.ClientID]; ok {
		v.Client = &ClientRef{Name: cl.FullName(), ContactPerson: cl.Email}
	}
	v.Preview = sanitize.Summary(sanitize.RedactPII(c.Description), previewLen)
	return v
}

// NewDetailView is NewCaseView plus the caller's allowed actions.
func NewDetailView(caller policy.Caller, c *models.Case, people map[uuid.UUID]*models.User) CaseView {
	v := NewCaseView(c, people)
	_, canComment := policy.CommentRole(caller, c)
	v.Actions = &Actions{
		CanComment:      canComment,
		CanAccept:       policy.CanAccept(caller) && c.Status == models.StatusPending && c.AssignedLawyerID == nil,
		CanUpdateStatus: policy.CanUpdateStatus(caller, c) && !IsTerminal(c.Status),
	}
	return v
}
