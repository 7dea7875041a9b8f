// pkg/models/api.go
package models

// Laravel-style validation error response
type ValidationErrorResponse struct {
	Message string              `json:"message" example:"Validation failed"`
	Errors  map[string][]string `json:"errors"`
}

// Generic error response (401/403/404/409/500)
type ErrorResponse struct {
	Error   bool   `json:"error" example:"true"`
	Message string `json:"message" example:"Access denied"`
	Code    string `json:"code,omitempty" example:"FORBIDDEN"`
}

// MessageResponse is the plain acknowledgement shape (logout, etc.).
type MessageResponse struct {
	Message string `json:"message" example:"Successfully logged out"`
}
