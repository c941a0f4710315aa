package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ImportEventMessage is the structured payload the import subsystem
// posts after parsing human-written shorthand. The free-text parsing
// itself happens upstream; by the time a message reaches this queue it
// is an ordinary event-creation request addressed to a role.
type ImportEventMessage struct {
	RoleSlug  string `json:"role_slug"`
	Type      string `json:"type"`
	EventDate string `json:"event_date"`
	Notes     string `json:"notes"`
	Summary   string `json:"summary"`
}

// ProcessImportMessage handles one import-queue message by appending
// the requested event through the same creation path as the API.
func (s *RoleService) ProcessImportMessage(ctx context.Context, message *azservicebus.ReceivedMessage, txn *newrelic.Transaction) error {
	var msg ImportEventMessage
	if err := json.Unmarshal(message.Body, &msg); err != nil {
		return errors.Wrap(err, "failed to unmarshal import message")
	}

	if msg.RoleSlug == "" {
		return errors.New("import message has no role slug")
	}

	eventDate, err := time.Parse("2006-01-02", msg.EventDate)
	if err != nil {
		return errors.Wrap(err, "failed to parse import event date")
	}

	role, err := s.GetRoleBySlug(ctx, msg.RoleSlug)
	if err != nil {
		return errors.Wrap(err, "failed to load role for import")
	}

	_, event, err := s.CreateEvent(ctx, role, EventAttributes{
		Type:      msg.Type,
		EventDate: eventDate,
		Notes:     msg.Notes,
		Summary:   msg.Summary,
	})
	if err != nil {
		s.tracer.RecordError(txn, err)
		return errors.Wrap(err, "failed to create imported event")
	}

	log.Info().
		Str("role_slug", msg.RoleSlug).
		Str("event_slug", event.Slug).
		Msg("Imported event processed")

	return nil
}

// ReindexRoles pushes every role touched since the given time into the
// search index. The worker runs it periodically as a fallback for
// indexing skipped or failed during request handling.
func (s *RoleService) ReindexRoles(ctx context.Context, since time.Time) error {
	if s.search == nil {
		return nil
	}

	roles, err := s.store.Roles().FindUpdatedSince(ctx, since)
	if err != nil {
		return errors.Wrap(err, "failed to find roles to reindex")
	}

	for _, role := range roles {
		if err := s.search.IndexRole(ctx, role); err != nil {
			log.Error().Err(err).Str("slug", role.Slug).Msg("Failed to reindex role")
		}
	}

	if len(roles) > 0 {
		log.Info().Int("count", len(roles)).Msg("Reindexed roles")
	}
	return nil
}

// SweepStaleRoles logs open roles with no activity since the cutoff so
// they show up in the worker's output and metrics.
func (s *RoleService) SweepStaleRoles(ctx context.Context, olderThan time.Duration) error {
	cutoff := s.nowFn().Add(-olderThan)

	roles, err := s.store.Roles().FindInactiveSince(ctx, cutoff)
	if err != nil {
		return errors.Wrap(err, "failed to find stale roles")
	}

	for _, role := range roles {
		log.Warn().
			Str("slug", role.Slug).
			Str("status", role.Status.String()).
			Time("last_event_at", role.LastEventAt).
			Msg("Role has gone stale")
	}

	if s.metrics != nil {
		s.metrics.SetGauge("roles.stale", int64(len(roles)))
	}
	return nil
}
