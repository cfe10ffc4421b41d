package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure for the presentation layer.
type Kind string

const (
	// KindMissingInput means a required request field was blank; nothing ran.
	KindMissingInput Kind = "missing_input"
	// KindNoQualifyingSources means collection produced nothing to summarize.
	KindNoQualifyingSources Kind = "no_qualifying_sources"
	// KindExportFailure means the PDF could not be rendered; the text report stands.
	KindExportFailure Kind = "export_failure"
	// KindInternal covers cancellation and unexpected failures.
	KindInternal Kind = "internal"
)

// Sentinels for errors.Is checks against a Kind.
var (
	ErrMissingInput        = &Error{Kind: KindMissingInput}
	ErrNoQualifyingSources = &Error{Kind: KindNoQualifyingSources}
	ErrExportFailure       = &Error{Kind: KindExportFailure}
)

// Error is a pipeline failure.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("pipeline %s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("pipeline %s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// UserMessage returns the text shown to the end user.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindMissingInput:
		if e.Message != "" {
			return e.Message
		}
		return "Please enter both company name and industry."
	case KindNoQualifyingSources:
		return "Insufficient quality data found. Try broadening your search."
	case KindExportFailure:
		return "The report was generated but the PDF could not be created."
	default:
		return "Report generation failed. Please try again."
	}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}
