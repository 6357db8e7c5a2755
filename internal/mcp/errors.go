package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/ttsprep/internal/domain/activity"
	"github.com/ganot/ttsprep/internal/domain/chapter"
	"github.com/ganot/ttsprep/internal/domain/label"
	"github.com/ganot/ttsprep/internal/domain/project"
)

// Error codes returned to clients.
const (
	CodeChapterNotFound   = "CHAPTER_NOT_FOUND"
	CodeProjectNotFound   = "PROJECT_NOT_FOUND"
	CodeProjectExists     = "PROJECT_EXISTS"
	CodeInvalidTarget     = "INVALID_TARGET"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeConflict          = "CONFLICT"
	CodeInconsistentOrder = "INCONSISTENT_ORDER"
	CodeMethodNotFound    = "METHOD_NOT_FOUND"
	CodeInvalidParams     = "INVALID_PARAMS"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes. It returns nil for errors
// that have no client-facing meaning.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, chapter.ErrChapterNotFound), errors.Is(err, label.ErrChapterNotFound):
		return &APIError{Code: CodeChapterNotFound, Message: "No matching Id", RecoveryHint: "List the project's chapters to find valid IDs"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: CodeProjectNotFound, Message: "No matching Id", RecoveryHint: "Call list_projects"}
	case errors.Is(err, project.ErrProjectExists):
		return &APIError{Code: CodeProjectExists, Message: "project already exists", RecoveryHint: "Pick another ID or omit it"}
	case errors.Is(err, chapter.ErrInvalidTarget):
		return &APIError{Code: CodeInvalidTarget, Message: err.Error(), RecoveryHint: "Order numbers run from 1 to the chapter count"}
	case errors.Is(err, chapter.ErrConflict):
		return &APIError{Code: CodeConflict, Message: "chapters modified concurrently", RecoveryHint: "Reload the chapter list and retry"}
	case errors.Is(err, chapter.ErrInconsistentOrder):
		return &APIError{Code: CodeInconsistentOrder, Message: err.Error(), RecoveryHint: "Call normalize_chapters"}
	case errors.Is(err, chapter.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, label.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: CodeInvalidInput, Message: err.Error(), RecoveryHint: "Check required fields"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
