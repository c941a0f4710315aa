package services

import (
	"example.com/roletrack/internal/models"
)

// validateTransition checks a status-changing variant against the
// role's current status. Plain variants and conditional variants
// (referred, reopened) never reach it; their admissibility is decided
// by the variant itself. A variant listing its own result status among
// its sources passes, keeping idempotent closes legal.
func validateTransition(current models.Status, variant *models.EventVariant) *InvalidStatusTransitionError {
	for _, s := range variant.ValidSources {
		if s == current {
			return nil
		}
	}

	return &InvalidStatusTransitionError{
		Current:   current,
		Attempted: variant.ResultStatus,
		Valid:     variant.ValidSources,
	}
}
