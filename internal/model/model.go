// Package model defines shared types for the gateway.
package model

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrorEnvelope is the uniform JSON shape returned on any failure.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// UpstreamResponse is the buffered result of one EmailMCP call.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Success reports whether the upstream answered with a 2xx status.
func (r *UpstreamResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fixed validation messages, one per validated route. The full required
// list is reported regardless of which field is missing.
const (
	AuthorizeFieldsRequired = "user_id and redirect_uri are required"
	CallbackFieldsRequired  = "code and state are required"
	MessageFieldsRequired   = "to, subject, and body are required"
)

// AuthorizeRequest is the inbound body for POST /api/oauth/authorize.
type AuthorizeRequest struct {
	UserID      string `json:"user_id"`
	RedirectURI string `json:"redirect_uri"`
}

// Validate checks the required fields.
func (r AuthorizeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.RedirectURI, validation.Required),
	)
}

// CallbackParams are the query parameters for POST /api/oauth/callback.
type CallbackParams struct {
	Code  string
	State string
}

// Validate checks the required parameters.
func (p CallbackParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Code, validation.Required),
		validation.Field(&p.State, validation.Required),
	)
}

// MessagePayload is the inbound body for POST /api/users/:userId/messages.
// It is kept as a raw map so fields beyond the required three pass through
// to the upstream unmodified.
type MessagePayload map[string]any

// Validate checks the required keys; extra keys are allowed.
func (m MessagePayload) Validate() error {
	return validation.Validate(map[string]any(m),
		validation.Map(
			validation.Key("to", validation.Required),
			validation.Key("subject", validation.Required),
			validation.Key("body", validation.Required),
		).AllowExtraKeys(),
	)
}
