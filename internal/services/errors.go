package services

import (
	"fmt"
	"strings"

	"example.com/roletrack/internal/models"
)

// InvalidStatusTransitionError reports a status-changing event that is
// not admissible from the role's current status. It carries enough
// structure for callers to build their own messages without string
// parsing.
type InvalidStatusTransitionError struct {
	Current   models.Status
	Attempted models.Status
	Valid     []models.Status
}

// AlreadyInStatus reports whether the failure is the self-transition
// case rather than a wrong source status.
func (e *InvalidStatusTransitionError) AlreadyInStatus() bool {
	return e.Current == e.Attempted
}

func (e *InvalidStatusTransitionError) Error() string {
	if e.AlreadyInStatus() {
		return fmt.Sprintf("role is already %s", e.Current)
	}
	return fmt.Sprintf(
		"role must be %s to become %s, but is %s",
		oxfordOr(e.Valid), e.Attempted, e.Current,
	)
}

// oxfordOr joins the lifecycle-ordered status list with commas and a
// final "or".
func oxfordOr(statuses []models.Status) string {
	sorted := models.SortStatuses(append([]models.Status(nil), statuses...))
	names := make([]string, len(sorted))
	for i, s := range sorted {
		names[i] = s.String()
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}
