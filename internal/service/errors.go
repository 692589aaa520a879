package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

type Resource string

const (
	ResourceTask  Resource = "Task"
	ResourceUser  Resource = "User"
	ResourceTasks Resource = "tasks"
	ResourceUsers Resource = "users"
)

// NewNotFound reports a single missing entity.
func NewNotFound(resource Resource, id int64) *BusinessError {
	return NewBusinessError(CodeNotFound, fmt.Sprintf("%s not found", resource),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

// NewNoneFound reports that none of the referenced ids resolved.
func NewNoneFound(resource Resource, ids []int64) *BusinessError {
	return NewBusinessError(CodeNotFound, fmt.Sprintf("No %s found", resource),
		ToDetail("resource", resource),
		ToDetail("ids", ids),
	)
}

func NewValidationError(field, reason string) *BusinessError {
	return NewValidationErrors(map[string]string{field: reason})
}

// NewValidationErrors builds one error out of field -> reason pairs.
func NewValidationErrors(fields map[string]string) *BusinessError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, fields[name]))
	}
	return &BusinessError{
		Code:    CodeValidationError,
		Message: "Invalid value: " + strings.Join(parts, "; "),
		Details: map[string]any{
			"errors": fields,
		},
	}
}

func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

func IsValidation(err error) bool {
	return hasCode(err, CodeValidationError)
}

func hasCode(err error, code string) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == code
}
