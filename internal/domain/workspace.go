package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkspaceStatus is the lifecycle state of a client workspace.
type WorkspaceStatus string

const (
	WorkspaceActive   WorkspaceStatus = "active"
	WorkspaceInactive WorkspaceStatus = "inactive"
)

func (s WorkspaceStatus) String() string { return string(s) }

func (s WorkspaceStatus) IsValid() bool {
	switch s {
	case WorkspaceActive, WorkspaceInactive:
		return true
	}
	return false
}

// ContactInfo is the primary contact for a client workspace.
type ContactInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// WorkspaceFilter narrows workspace listings.
type WorkspaceFilter struct {
	Status *WorkspaceStatus
	Tag    *string
	Limit  int
	Offset int
}

// ClientWorkspace is one tax client's case file. Workspaces are never
// hard-deleted; archiving sets Status to inactive, and any new intake
// activity flips it back to active.
type ClientWorkspace struct {
	ID             uuid.UUID
	DisplayName    string
	Status         WorkspaceStatus
	Contact        ContactInfo
	Tags           []string
	TaxYears       []int
	Checklist      TaxReturnChecklist
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastActivityAt *time.Time
}

// CoerceTaxYears converts submitted tax-year values into a sorted, deduplicated
// list of years. Accepts a single value or a slice; each element may be a
// string or a number. Values that do not parse are dropped; if nothing parses,
// the result falls back to the current calendar year.
func CoerceTaxYears(v any, now time.Time) []int {
	var candidates []any
	switch t := v.(type) {
	case nil:
		// fall through to the current-year fallback
	case []any:
		candidates = t
	case []string:
		for _, s := range t {
			candidates = append(candidates, s)
		}
	case []int:
		for _, n := range t {
			candidates = append(candidates, n)
		}
	default:
		candidates = []any{v}
	}

	var years []int
	for _, c := range candidates {
		if y, ok := coerceYear(c); ok && !slices.Contains(years, y) {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return []int{now.Year()}
	}
	slices.Sort(years)
	return years
}

func coerceYear(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		// JSON numbers decode as float64; reject non-integral values.
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
