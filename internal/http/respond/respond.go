// Package respond writes the API's JSON envelope and translates failures at
// the boundary. Every body carries a status discriminator: "success", "fail"
// for 4xx, "error" for 5xx.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alvinobieroh/devlinks-api/internal/apperror"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
	// Detail carries the raw failure in development mode only.
	Detail string `json:"error,omitempty"`
}

const maskedMessage = "Something went very wrong. Or check your internet connection and try again"

// Responder holds the logger and presentation mode for boundary translation.
type Responder struct {
	log     zerolog.Logger
	verbose bool
}

// New builds a responder. verbose exposes raw failure detail and is meant for
// non-production contexts only.
func New(log zerolog.Logger, verbose bool) *Responder {
	return &Responder{log: log, verbose: verbose}
}

// JSON writes an arbitrary envelope.
func (r *Responder) JSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.log.Error().Err(err).Msg("respond: encode payload failed")
	}
}

// Success writes a success envelope with an optional message and data.
func (r *Responder) Success(w http.ResponseWriter, status int, message string, data any) {
	r.JSON(w, status, Envelope{Status: "success", Message: message, Data: data})
}

// Session writes a success envelope carrying a session token and user payload.
func (r *Responder) Session(w http.ResponseWriter, status int, token string, data any) {
	r.JSON(w, status, Envelope{Status: "success", Token: token, Data: data})
}

// Error translates a failure into the stable external form. Operational
// errors pass through with their status and safe message; anything else is
// logged in full and masked as a generic 500 unless verbose mode is on.
func (r *Responder) Error(w http.ResponseWriter, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		env := Envelope{Status: statusWord(ae.Status), Message: ae.Message}
		if r.verbose && ae.Err != nil {
			env.Detail = ae.Err.Error()
		}
		r.JSON(w, ae.Status, env)
		return
	}

	r.log.Error().Err(err).Msg("unclassified failure")
	env := Envelope{Status: "error", Message: maskedMessage}
	if r.verbose {
		env.Detail = err.Error()
	}
	r.JSON(w, http.StatusInternalServerError, env)
}

func statusWord(status int) string {
	if status >= http.StatusInternalServerError {
		return "error"
	}
	return "fail"
}
