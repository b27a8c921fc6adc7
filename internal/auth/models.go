// Package auth provides authentication services for VoltRoute.
package auth

import "time"

// User represents an authenticated user in the system.
type User struct {
	ID        string    `json:"userId"`
	DeviceID  string    `json:"-"` // Device installation identifier (never exposed in API)
	Email     string    `json:"email,omitempty"`
	Locale    string    `json:"locale"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeviceSignInRequest represents the request body for device-based sign-in.
// A device presents its stable installation identifier and receives API
// tokens; the account is created on first sign-in.
type DeviceSignInRequest struct {
	// DeviceID is the stable installation identifier generated on the device.
	DeviceID string `json:"deviceId"`

	// Email is an optional contact address for the account.
	Email string `json:"email,omitempty"`

	// Locale is an optional BCP 47 locale tag.
	Locale string `json:"locale,omitempty"`
}

// Validate validates the device sign-in request.
func (r *DeviceSignInRequest) Validate() []FieldError {
	var errors []FieldError

	if r.DeviceID == "" {
		errors = append(errors, FieldError{
			Field:   "deviceId",
			Message: "device id is required",
			Code:    "REQUIRED",
		})
	} else if len(r.DeviceID) < 16 {
		errors = append(errors, FieldError{
			Field:   "deviceId",
			Message: "device id must be at least 16 characters",
			Code:    "TOO_SHORT",
		})
	}

	return errors
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// TokenResponse represents the response after successful authentication.
type TokenResponse struct {
	// AccessToken is the JWT access token for API authentication.
	AccessToken string `json:"accessToken"`

	// TokenType is always "Bearer".
	TokenType string `json:"tokenType"`

	// ExpiresIn is the number of seconds until the access token expires.
	ExpiresIn int64 `json:"expiresIn"`

	// RefreshToken is the opaque token used to obtain new access tokens.
	RefreshToken string `json:"refreshToken,omitempty"`

	// User contains the authenticated user's information.
	User *User `json:"user"`
}

// RefreshTokenRequest represents the request to refresh an access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate validates the refresh token request.
func (r *RefreshTokenRequest) Validate() []FieldError {
	var errors []FieldError

	if r.RefreshToken == "" {
		errors = append(errors, FieldError{
			Field:   "refreshToken",
			Message: "refresh token is required",
			Code:    "REQUIRED",
		})
	}

	return errors
}
