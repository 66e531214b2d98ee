// Package errors provides structured error types for fira.
package errors

import (
	"encoding/json"
	"fmt"
)

// Code represents a unique error code.
type Code string

// Error codes for fira.
const (
	// Project errors
	CodeProjectNotFound Code = "PROJECT_NOT_FOUND"
	CodeProjectExists   Code = "PROJECT_EXISTS"

	// Task errors
	CodeTaskNotFound Code = "TASK_NOT_FOUND"
	CodeTaskExists   Code = "TASK_EXISTS"
	CodeTaskConflict Code = "TASK_CONFLICT"

	// Input errors
	CodeMissingID      Code = "MISSING_ID"
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// Storage errors
	CodeParseFailure Code = "PARSE_FAILURE"
	CodeIOFailure    Code = "IO_FAILURE"
)

// Category groups error codes for HTTP status mapping.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryBadRequest
	CategoryConflict
	CategoryInternal
)

// codeCategories maps error codes to their categories.
var codeCategories = map[Code]Category{
	CodeProjectNotFound: CategoryNotFound,
	CodeProjectExists:   CategoryConflict,
	CodeTaskNotFound:    CategoryNotFound,
	CodeTaskExists:      CategoryConflict,
	CodeTaskConflict:    CategoryConflict,
	CodeMissingID:       CategoryBadRequest,
	CodeInvalidRequest:  CategoryBadRequest,
	CodeParseFailure:    CategoryInternal,
	CodeIOFailure:       CategoryInternal,
}

// HTTPStatus returns the HTTP status code for a category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNotFound:
		return 404
	case CategoryBadRequest:
		return 400
	case CategoryConflict:
		return 409
	default:
		return 500
	}
}

// FiraError is the structured error type for fira.
type FiraError struct {
	Code  Code   `json:"code"`
	What  string `json:"what"`
	Cause error  `json:"-"`
}

// Error implements the error interface.
func (e *FiraError) Error() string {
	if e.Cause != nil {
		return e.What + ": " + e.Cause.Error()
	}
	return e.What
}

// Unwrap returns the underlying cause.
func (e *FiraError) Unwrap() error {
	return e.Cause
}

// Category returns the error category for HTTP status mapping.
func (e *FiraError) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e *FiraError) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// Is reports whether target is a FiraError with the same code.
func (e *FiraError) Is(target error) bool {
	t, ok := target.(*FiraError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the error with the given cause attached.
func (e *FiraError) WithCause(err error) *FiraError {
	return &FiraError{Code: e.Code, What: e.What, Cause: err}
}

// MarshalJSON implements json.Marshaler.
func (e *FiraError) MarshalJSON() ([]byte, error) {
	type alias FiraError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{alias: (*alias)(e)}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// --- Error constructors ---

// ErrProjectNotFound returns an error for a missing project directory.
func ErrProjectNotFound(id string) *FiraError {
	return &FiraError{
		Code: CodeProjectNotFound,
		What: fmt.Sprintf("project %s not found", id),
	}
}

// ErrProjectExists returns an error for a create on an existing project ID.
func ErrProjectExists(id string) *FiraError {
	return &FiraError{
		Code: CodeProjectExists,
		What: fmt.Sprintf("project %s already exists", id),
	}
}

// ErrTaskNotFound returns an error when no task file matches the ID.
func ErrTaskNotFound(projectID, taskID string) *FiraError {
	return &FiraError{
		Code: CodeTaskNotFound,
		What: fmt.Sprintf("task %s not found in project %s", taskID, projectID),
	}
}

// ErrTaskExists returns an error for a create on an existing task file.
func ErrTaskExists(taskID string) *FiraError {
	return &FiraError{
		Code: CodeTaskExists,
		What: fmt.Sprintf("task %s already exists", taskID),
	}
}

// ErrTaskConflict returns an error when a move would land on a file that
// belongs to a different task.
func ErrTaskConflict(taskID, path string) *FiraError {
	return &FiraError{
		Code: CodeTaskConflict,
		What: fmt.Sprintf("destination %s is occupied by a different task than %s", path, taskID),
	}
}

// ErrMissingID returns an error for a payload without a task ID.
func ErrMissingID() *FiraError {
	return &FiraError{
		Code: CodeMissingID,
		What: "task id is required",
	}
}

// ErrInvalidRequest returns an error for a malformed request payload.
func ErrInvalidRequest(why string) *FiraError {
	return &FiraError{
		Code: CodeInvalidRequest,
		What: "invalid request: " + why,
	}
}

// ErrIO wraps a filesystem failure.
func ErrIO(what string, cause error) *FiraError {
	return &FiraError{
		Code:  CodeIOFailure,
		What:  what,
		Cause: cause,
	}
}

// AsFiraError attempts to convert an error to a FiraError.
// Returns nil if the error is not a FiraError.
func AsFiraError(err error) *FiraError {
	var fe *FiraError
	if As(err, &fe) {
		return fe
	}
	return nil
}

// As is a convenience wrapper for errors.As.
func As(err error, target any) bool {
	return asError(err, target)
}

// asError implements errors.As behavior.
func asError(err error, target any) bool {
	if err == nil {
		return false
	}
	if fe, ok := err.(*FiraError); ok {
		if t, ok := target.(**FiraError); ok {
			*t = fe
			return true
		}
	}
	// Check unwrapped error
	if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
		return asError(unwrapper.Unwrap(), target)
	}
	return false
}

// HasCode reports whether err is a FiraError carrying the given code.
func HasCode(err error, code Code) bool {
	fe := AsFiraError(err)
	return fe != nil && fe.Code == code
}

// Wrap wraps a generic error into a FiraError with unknown code.
func Wrap(err error, what string) *FiraError {
	return &FiraError{
		Code:  Code("UNKNOWN"),
		What:  what,
		Cause: err,
	}
}
