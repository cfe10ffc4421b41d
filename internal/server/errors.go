// Package server provides the browser form and the HTTP API for report generation.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/company-brief/internal/pipeline"
)

// ErrValidation indicates a malformed request, before the pipeline runs.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var ve *ErrValidation
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}

	switch pipeline.KindOf(err) {
	case pipeline.KindMissingInput:
		return http.StatusBadRequest
	case pipeline.KindNoQualifyingSources:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// errorBody maps err to its JSON payload. Internal failures get a generic message.
func errorBody(err error) ErrorBody {
	var ve *ErrValidation
	if errors.As(err, &ve) {
		return ErrorBody{Error: "invalid_request", Message: ve.Error()}
	}

	var pe *pipeline.Error
	if errors.As(err, &pe) {
		return ErrorBody{Error: string(pe.Kind), Message: pe.UserMessage()}
	}
	return ErrorBody{Error: string(pipeline.KindInternal), Message: "Report generation failed. Please try again."}
}
