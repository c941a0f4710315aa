package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/roletrack/internal/models"
)

func TestApplyEventStatusChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	eventDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	role := &models.Role{Status: models.StatusNew}
	event := &models.RoleEvent{EventDate: eventDate}

	applyEvent(role, event, models.VariantFor("applied"), now)

	require.Equal(t, models.StatusApplied, role.Status)
	require.NotNil(t, role.AppliedAt)
	require.Equal(t, now, *role.AppliedAt)
	require.Equal(t, eventDate, role.LastEventAt)
	require.Equal(t, now, role.UpdatedAt)
}

func TestApplyEventPlainVariantKeepsStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	eventDate := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	stamped := now.Add(-time.Hour)
	role := &models.Role{Status: models.StatusApplied, AppliedAt: &stamped}
	event := &models.RoleEvent{EventDate: eventDate}

	applyEvent(role, event, models.VariantFor("contacted"), now)

	require.Equal(t, models.StatusApplied, role.Status)
	require.Equal(t, stamped, *role.AppliedAt)
	require.Equal(t, eventDate, role.LastEventAt)
}

func TestApplyEventRestampsOnReentry(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)
	eventDate := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)

	role := &models.Role{Status: models.StatusInterviewing, InterviewingAt: &first}
	event := &models.RoleEvent{EventDate: eventDate}

	applyEvent(role, event, models.VariantFor("interview"), second)

	require.Equal(t, models.StatusInterviewing, role.Status)
	require.Equal(t, second, *role.InterviewingAt)
}

func TestApplyEventConditionalVariant(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)
	eventDate := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	referred := models.VariantFor("referred")

	fresh := &models.Role{Status: models.StatusNew}
	applyEvent(fresh, &models.RoleEvent{EventDate: eventDate}, referred, now)
	require.Equal(t, models.StatusApplied, fresh.Status)

	inFlight := &models.Role{Status: models.StatusInterviewing}
	applyEvent(inFlight, &models.RoleEvent{EventDate: eventDate}, referred, now)
	require.Equal(t, models.StatusInterviewing, inFlight.Status)
	require.Equal(t, eventDate, inFlight.LastEventAt)
}

func TestReopenedStatus(t *testing.T) {
	history := func(types ...string) []*models.RoleEvent {
		// Newest first, matching the slug-descending read.
		events := make([]*models.RoleEvent, len(types))
		for i, typ := range types {
			events[len(types)-1-i] = &models.RoleEvent{Type: typ}
		}
		return events
	}

	require.Equal(t, models.StatusOffered,
		reopenedStatus(history("applied", "interview", "offered", "accepted")))

	require.Equal(t, models.StatusInterviewing,
		reopenedStatus(history("applied", "interview", "withdrawn")))

	// Closed straight from new reverts to new.
	require.Equal(t, models.StatusNew,
		reopenedStatus(history("expired")))

	// Plain notes and earlier reopens are ignored by the scan.
	require.Equal(t, models.StatusApplied,
		reopenedStatus(history("applied", "contacted", "rejected", "reopened", "closed")))

	require.Equal(t, models.StatusNew, reopenedStatus(nil))
}
