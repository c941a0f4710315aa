package services

import (
	"time"

	"example.com/roletrack/internal/models"
)

// applyEvent updates the role's denormalized fields for one applied
// event. The caller has already established that any status change is
// admissible; this function only computes the new projection.
//
// Status-changing variants assign the result status and stamp the
// per-status timestamp with now on every entry, including re-entries.
// Every event, plain or not, refreshes the role's last-activity
// timestamp from the event's calendar date.
func applyEvent(role *models.Role, event *models.RoleEvent, variant *models.EventVariant, now time.Time) {
	if changesStatus(role.Status, variant) {
		role.Status = variant.ResultStatus
		if ts := role.StatusTimestamp(variant.ResultStatus); ts != nil {
			stamp := now
			*ts = &stamp
		}
	}

	role.LastEventAt = models.StartOfDay(event.EventDate)
	role.UpdatedAt = now
}

// changesStatus reports whether the variant assigns a status to a role
// currently in the given status. Conditional variants consult their
// predicate; plain variants and the reopen variant never assign one
// here (reopen has its own projection).
func changesStatus(current models.Status, variant *models.EventVariant) bool {
	if variant.Reopen || !variant.StatusChanging() {
		return false
	}
	if variant.Conditional() {
		return variant.AppliesFrom(current)
	}
	return true
}

// reopenedStatus reconstructs the status a closed role should revert
// to by scanning its history newest-first: the first status-changing
// event whose result was not closed wins; a role closed straight from
// its first lifecycle event reverts to new.
func reopenedStatus(events []*models.RoleEvent) models.Status {
	for _, event := range events {
		variant := models.VariantFor(event.Type)
		if variant.Reopen || !variant.StatusChanging() {
			continue
		}
		if variant.ResultStatus != models.StatusClosed {
			return variant.ResultStatus
		}
	}
	return models.StatusNew
}
