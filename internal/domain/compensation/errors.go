package compensation

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("compensation template not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrForbidden        = errors.New("insufficient permissions for compensation")
	ErrTransientStorage = errors.New("compensation storage unavailable")
	// ErrCorruptRecord marks a stored row that cannot be decoded, e.g. an
	// encrypted wage without the matching key. Retrying does not help.
	ErrCorruptRecord = errors.New("stored compensation template is unreadable")
)

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every field that failed validation, not just the first.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "invalid compensation template"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+" "+issue.Reason)
	}
	return "invalid compensation template: " + strings.Join(parts, "; ")
}

// Fields returns the offending field names in sorted order.
func (e *ValidationError) Fields() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		out = append(out, issue.Field)
	}
	return out
}

func (e *ValidationError) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, issue := range e.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

func newValidationError(issues []FieldIssue) error {
	if len(issues) == 0 {
		return nil
	}
	out := make([]FieldIssue, len(issues))
	copy(out, issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return &ValidationError{Issues: out}
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
