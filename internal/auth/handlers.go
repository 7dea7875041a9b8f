package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aldoetobex/legal-case-backend/internal/users"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
	"github.com/aldoetobex/legal-case-backend/pkg/utils"
	"github.com/aldoetobex/legal-case-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

// Request body for /signup
type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=120"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"notblank,max=80"`
	LastName  string `json:"lastName" validate:"notblank,max=80"`
	UserType  string `json:"userType" validate:"required,oneof=client lawyer"`
	// Optional for lawyers
	BarNumber string `json:"barNumber" validate:"omitempty,barnum"`
}

type SignupResponse struct {
	Message string `json:"message" example:"Account created successfully. Please log in."`
	UserID  string `json:"userId"`
}

// Request body for /login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         ProfileResponse `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Request body for PUT /me. Omitted fields stay unchanged.
type ProfileRequest struct {
	FirstName       *string  `json:"firstName" validate:"omitempty,notblank,max=80"`
	LastName        *string  `json:"lastName" validate:"omitempty,notblank,max=80"`
	Bio             *string  `json:"bio" validate:"omitempty,max=2000"`
	Experience      *string  `json:"experience" validate:"omitempty,max=200"`
	BarNumber       *string  `json:"barNumber" validate:"omitempty,barnum"`
	Specializations []string `json:"specializations" validate:"omitempty,max=20,dive,max=60"`
}

// ProfileResponse is the user record without the password hash.
type ProfileResponse struct {
	ID              string        `json:"_id"`
	Email           string        `json:"email"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	UserType        models.Role   `json:"userType"`
	Roles           []models.Role `json:"roles"`
	BarNumber       string        `json:"barNumber,omitempty"`
	Specializations []string      `json:"specializations"`
	Bio             string        `json:"bio,omitempty"`
	Experience      string        `json:"experience,omitempty"`
	Rating          float64       `json:"rating,omitempty"`
	CaseIDs         []string      `json:"caseIds"`
	CreatedAt       string        `json:"created_at"`
}

// LawyerProfileResponse is the public lawyer card.
type LawyerProfileResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	BarNumber       string   `json:"barNumber"`
	Specializations []string `json:"specializations"`
	Bio             string   `json:"bio"`
	Experience      string   `json:"experience"`
	Rating          float64  `json:"rating"`
}

func NewProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:              u.ID.String(),
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		UserType:        u.UserType,
		Roles:           u.RoleList(),
		BarNumber:       u.BarNumber,
		Specializations: nonNil(u.Specializations),
		Bio:             u.Bio,
		Experience:      u.Experience,
		Rating:          u.Rating,
		CaseIDs:         nonNil(u.CaseIDs),
		CreatedAt:       utils.ISOTime(u.CreatedAt),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

/* ============================== Handler ================================= */

type Handler struct {
	accounts *users.Accounts
	tokens   *Authority
	log      zerolog.Logger
}

func NewHandler(accounts *users.Accounts, tokens *Authority, log zerolog.Logger) *Handler {
	return &Handler{accounts: accounts, tokens: tokens, log: log}
}

/* =============================== Signup ================================= */

// @Summary      Sign up
// @Description  Register a new user (client or lawyer)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  SignupRequest  true  "Signup payload"
// @Success      201      {object}  SignupResponse
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      409      {object}  models.ErrorResponse  "email already registered"
// @Router       /auth/signup [post]
func (h *Handler) Signup(c *fiber.Ctx) error {
	var in SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}

	// Normalize email
	in.Email = users.NormalizeEmail(in.Email)

	// Validate request (Laravel-like error shape)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	u, err := h.accounts.CreateAccount(c.UserContext(), users.SignupInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		UserType:  models.Role(in.UserType),
		BarNumber: in.BarNumber,
	})
	if errors.Is(err, users.ErrDuplicateEmail) {
		return fiber.NewError(fiber.StatusConflict, "Email already registered")
	}
	if err != nil {
		return err
	}

	h.log.Info().Str("user_id", u.ID.String()).Str("user_type", string(u.UserType)).Msg("account created")
	return c.Status(fiber.StatusCreated).JSON(SignupResponse{
		Message: "Account created successfully. Please log in.",
		UserID:  u.ID.String(),
	})
}

/* ================================ Login ================================= */

// @Summary      Login
// @Description  Authenticate and receive an access and a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  LoginRequest  true  "Login payload"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.Email = users.NormalizeEmail(in.Email)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	u, err := h.accounts.VerifyCredentials(c.UserContext(), in.Email, in.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return err
	}

	access, err := h.tokens.IssueAccessToken(u.ID)
	if err != nil {
		return err
	}
	refresh, err := h.tokens.IssueRefreshToken(u.ID)
	if err != nil {
		return err
	}
	return c.JSON(LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         NewProfileResponse(u),
	})
}

/* =============================== Refresh ================================ */

// @Summary      Refresh access token
// @Description  Exchange a refresh token (sent as Bearer) for a new access token
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  RefreshResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *fiber.Ctx) error {
	raw, ok := BearerToken(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	access, err := h.tokens.RefreshAccess(c.UserContext(), raw)
	if errors.Is(err, ErrInvalidToken) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}
	if err != nil {
		return err
	}
	return c.JSON(RefreshResponse{AccessToken: access})
}

/* ================================= Me =================================== */

// @Summary      Get current user profile
// @Description  Return full profile of the authenticated user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  ProfileResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /auth/me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	// RequireAuth already loaded the record
	return c.JSON(NewProfileResponse(MustUser(c)))
}

// @Summary      Update current user profile
// @Description  Lawyer-only fields are ignored for other users
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  ProfileRequest  true  "Profile fields"
// @Success      200  {object}  ProfileResponse
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/me [put]
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	var in ProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	u, err := h.accounts.UpdateProfile(c.UserContext(), MustUserID(c), users.ProfileInput{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Bio:             in.Bio,
		Experience:      in.Experience,
		BarNumber:       in.BarNumber,
		Specializations: in.Specializations,
	})
	if errors.Is(err, users.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(NewProfileResponse(u))
}

/* =============================== Logout ================================= */

// @Summary      Logout
// @Description  Best-effort revoke of the presented token. Always succeeds.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  models.MessageResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *fiber.Ctx) error {
	if raw, ok := BearerToken(c); ok {
		if err := h.tokens.Revoke(c.UserContext(), raw); err != nil {
			// the client already dropped its copy; nothing to report
			h.log.Debug().Err(err).Msg("logout: token not revoked")
		}
	}
	return c.JSON(models.MessageResponse{Message: "Successfully logged out"})
}

/* ============================ Lawyer profile ============================ */

// @Summary      Lawyer profile
// @Description  Profile card of the authenticated lawyer
// @Tags         lawyer
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  LawyerProfileResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /lawyer/profile [get]
func (h *Handler) LawyerProfile(c *fiber.Ctx) error {
	u := MustUser(c)
	return c.JSON(LawyerProfileResponse{
		ID:              u.ID.String(),
		Name:            u.FullName(),
		Email:           u.Email,
		BarNumber:       u.BarNumber,
		Specializations: nonNil(u.Specializations),
		Bio:             u.Bio,
		Experience:      u.Experience,
		Rating:          u.Rating,
	})
}

// compile-time check that the middleware accepts the concrete types
var (
	_ TokenValidator = (*Authority)(nil)
	_ UserLoader     = (*users.Accounts)(nil)
)
