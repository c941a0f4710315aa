package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/roletrack/internal/cache"
	"example.com/roletrack/internal/metrics"
	"example.com/roletrack/internal/models"
	"example.com/roletrack/internal/repositories"
	"example.com/roletrack/internal/search"
	"example.com/roletrack/internal/tracing"
	"example.com/roletrack/internal/validation"
)

// EventAttributes carries the caller-supplied fields for a new role
// event, decoded from form or JSON input.
type EventAttributes struct {
	Type      string    `json:"type"`
	EventDate time.Time `json:"event_date"`
	Slug      string    `json:"slug"`
	Notes     string    `json:"notes"`
	Summary   string    `json:"summary"`
}

// UpdateEventAttributes carries a partial update for an existing event.
// Static fields are present so attempts to change them can be rejected
// explicitly instead of silently ignored.
type UpdateEventAttributes struct {
	Type       *string    `json:"type"`
	EventDate  *time.Time `json:"event_date"`
	EventIndex *int       `json:"event_index"`
	Notes      *string    `json:"notes"`
	Summary    *string    `json:"summary"`
}

// CreateRoleRequest carries the fields for a new tracked role.
type CreateRoleRequest struct {
	CycleID uuid.UUID `json:"cycle_id"`
	Slug    string    `json:"slug"`
	Company string    `json:"company"`
	Title   string    `json:"title"`
	Notes   string    `json:"notes"`
}

// RoleService owns the role lifecycle: the event log is appended to
// only through CreateEvent, and the role's denormalized projection is
// updated in the same transaction as every append.
type RoleService struct {
	store   repositories.Store
	cache   *cache.RedisCache
	search  *search.ElasticClient
	metrics *metrics.Metrics
	tracer  tracing.Tracer
	nowFn   func() time.Time
}

// NewRoleService creates a new role service
func NewRoleService(
	store repositories.Store,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *RoleService {
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &RoleService{
		store:   store,
		cache:   redisCache,
		search:  elasticClient,
		metrics: metricsCollector,
		tracer:  tracer,
		nowFn:   time.Now,
	}
}

// CreateRole creates a role in the initial status with an empty event
// log. The last-activity timestamp defaults to the creation time.
func (s *RoleService) CreateRole(ctx context.Context, req CreateRoleRequest) (*models.Role, error) {
	verrs := validation.Errors{}
	if req.Company == "" {
		verrs.Add("company", "can't be blank")
	}
	if req.Slug == "" {
		req.Slug = models.Kebab(req.Company)
	}
	if !models.ValidSlug(req.Slug) {
		verrs.Add("slug", "must be kebab-case")
	}
	if verrs.Any() {
		return nil, verrs
	}

	now := s.nowFn()
	role := &models.Role{
		ID:          uuid.New(),
		CycleID:     req.CycleID,
		Slug:        req.Slug,
		Company:     req.Company,
		Title:       req.Title,
		Notes:       req.Notes,
		Status:      models.StatusNew,
		LastEventAt: now,
	}

	if err := s.store.Roles().Create(ctx, role); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			verrs.Add("slug", "has already been taken")
			return nil, verrs
		}
		return nil, errors.Wrap(err, "failed to create role")
	}

	log.Info().
		Str("role_id", role.ID.String()).
		Str("slug", role.Slug).
		Msg("Role created")

	s.indexRole(ctx, role)
	return role, nil
}

// CreateCycle starts a new search cycle.
func (s *RoleService) CreateCycle(ctx context.Context, name string) (*models.SearchCycle, error) {
	if name == "" {
		verrs := validation.Errors{}
		verrs.Add("name", "can't be blank")
		return nil, verrs
	}

	cycle := &models.SearchCycle{
		ID:        uuid.New(),
		Name:      name,
		StartedAt: s.nowFn(),
	}
	if err := s.store.Cycles().Create(ctx, cycle); err != nil {
		return nil, errors.Wrap(err, "failed to create search cycle")
	}
	return cycle, nil
}

// GetCycle loads a search cycle, consulting the cache first.
func (s *RoleService) GetCycle(ctx context.Context, id uuid.UUID) (*models.SearchCycle, error) {
	if s.cache != nil {
		var cached models.SearchCycle
		if err := s.cache.Get(ctx, cache.CycleCacheKey(id.String()), &cached); err == nil {
			return &cached, nil
		}
	}

	cycle, err := s.store.Cycles().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.CycleCacheKey(id.String()), cycle, 10*time.Minute); err != nil {
			log.Warn().Err(err).Str("cycle_id", id.String()).Msg("Failed to cache search cycle")
		}
	}
	return cycle, nil
}

// GetRoleBySlug loads a role, consulting the cache first.
func (s *RoleService) GetRoleBySlug(ctx context.Context, slug string) (*models.Role, error) {
	if s.cache != nil {
		var cached models.Role
		if err := s.cache.Get(ctx, cache.RoleCacheKey(slug), &cached); err == nil {
			return &cached, nil
		}
	}

	role, err := s.store.Roles().GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.RoleCacheKey(slug), role, 10*time.Minute); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Failed to cache role")
		}
	}
	return role, nil
}

// GetEventBySlug loads one event from the role's history.
func (s *RoleService) GetEventBySlug(ctx context.Context, role *models.Role, slug string) (*models.RoleEvent, error) {
	return s.store.RoleEvents().GetBySlug(ctx, role.ID, slug)
}

// ListEvents returns the role's history in creation order.
func (s *RoleService) ListEvents(ctx context.Context, role *models.Role) ([]*models.RoleEvent, error) {
	return s.store.RoleEvents().ListForRole(ctx, role.ID)
}

// ListApplicableVariants returns the event choices legal for the
// role's current status, for form-rendering callers.
func (s *RoleService) ListApplicableVariants(role *models.Role) []models.VariantChoice {
	return models.ApplicableVariants(role.Status)
}

// CreateEvent appends one event to the role's history and updates the
// role's projection, atomically. It is the only append path. On any
// validation or persistence failure the transaction rolls back and
// neither the event nor the role change is visible.
func (s *RoleService) CreateEvent(ctx context.Context, role *models.Role, attrs EventAttributes) (*models.Role, *models.RoleEvent, error) {
	txn := s.tracer.StartTransaction("create-role-event")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "role_slug", role.Slug)
	s.tracer.AddAttribute(txn, "event_type", attrs.Type)
	start := s.nowFn()

	variant := models.VariantFor(attrs.Type)
	if variant.Abstract {
		verrs := validation.Errors{}
		verrs.Add("type", "is abstract and cannot be created")
		return nil, nil, verrs
	}

	summary := attrs.Summary
	if summary == "" {
		summary = variant.Summary
	}

	var created *models.RoleEvent
	updated := *role

	err := s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		count, err := tx.RoleEvents().CountForRole(ctx, role.ID)
		if err != nil {
			return err
		}
		index := int(count)

		slug := attrs.Slug
		if slug == "" {
			slug = models.EventSlug(attrs.EventDate, index, variant.Label)
		}

		event := &models.RoleEvent{
			ID:         uuid.New(),
			RoleID:     role.ID,
			Slug:       slug,
			Type:       variant.Key,
			EventDate:  models.StartOfDay(attrs.EventDate),
			EventIndex: index,
			Notes:      attrs.Notes,
			Summary:    summary,
		}

		if verrs := s.validateNewEvent(ctx, tx, event); verrs.Any() {
			return verrs
		}

		if variant.StatusChanging() && !variant.Conditional() {
			if terr := validateTransition(updated.Status, variant); terr != nil {
				return terr
			}
		}

		if err := tx.RoleEvents().Create(ctx, event); err != nil {
			// Unique indexes on (role_id, slug) and (role_id,
			// event_index) are the backstop for concurrent appends.
			if errors.Is(err, repositories.ErrDuplicateKey) {
				verrs := validation.Errors{}
				verrs.Add("slug", "has already been taken")
				return verrs
			}
			return err
		}

		now := s.nowFn()
		if variant.Reopen {
			history, err := tx.RoleEvents().ListForRoleBySlugDesc(ctx, role.ID)
			if err != nil {
				return err
			}
			updated.Status = reopenedStatus(history)
		}
		applyEvent(&updated, event, variant, now)

		if err := tx.Roles().Update(ctx, &updated); err != nil {
			return err
		}

		created = event
		return nil
	})

	if err != nil {
		s.tracer.RecordError(txn, err)
		if s.metrics != nil {
			s.metrics.IncrCounter("role_events.rejected")
		}
		return nil, nil, err
	}

	*role = updated

	log.Info().
		Str("role_id", role.ID.String()).
		Str("event_slug", created.Slug).
		Str("event_type", created.Type).
		Str("status", role.Status.String()).
		Msg("Role event created")

	if s.metrics != nil {
		s.metrics.IncrCounter("role_events.created")
		s.metrics.RecordTimer("role_events.create", s.nowFn().Sub(start))
	}

	s.invalidateRole(ctx, role.Slug)
	s.indexRole(ctx, role)
	return role, created, nil
}

// UpdateEvent changes an existing event's mutable fields. Attempts to
// change the static fields (type, event_date, event_index) fail
// validation without touching the record.
func (s *RoleService) UpdateEvent(ctx context.Context, role *models.Role, event *models.RoleEvent, attrs UpdateEventAttributes) (*models.RoleEvent, error) {
	verrs := validation.Errors{}
	if attrs.Type != nil && *attrs.Type != event.Type {
		verrs.Static("type")
	}
	if attrs.EventDate != nil && !models.StartOfDay(*attrs.EventDate).Equal(event.EventDate) {
		verrs.Static("event_date")
	}
	if attrs.EventIndex != nil && *attrs.EventIndex != event.EventIndex {
		verrs.Static("event_index")
	}
	if verrs.Any() {
		return nil, verrs
	}

	if attrs.Notes != nil {
		event.Notes = *attrs.Notes
	}
	if attrs.Summary != nil {
		event.Summary = *attrs.Summary
	}

	if err := s.store.RoleEvents().Update(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateRole(ctx, role.Slug)
	return event, nil
}

// Reopen reverts a closed role to the status it held before closing,
// reconstructed from its event history. No event is created and no
// transition validation applies; reverting to the historically correct
// status is legal by construction.
func (s *RoleService) Reopen(ctx context.Context, role *models.Role) (*models.Role, error) {
	txn := s.tracer.StartTransaction("reopen-role")
	defer s.tracer.EndTransaction(txn)
	s.tracer.AddAttribute(txn, "role_slug", role.Slug)

	updated := *role

	err := s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		history, err := tx.RoleEvents().ListForRoleBySlugDesc(ctx, role.ID)
		if err != nil {
			return err
		}

		updated.Status = reopenedStatus(history)
		updated.UpdatedAt = s.nowFn()
		return tx.Roles().Update(ctx, &updated)
	})

	if err != nil {
		s.tracer.RecordError(txn, err)
		return nil, err
	}

	*role = updated

	log.Info().
		Str("role_id", role.ID.String()).
		Str("status", role.Status.String()).
		Msg("Role reopened")

	if s.metrics != nil {
		s.metrics.IncrCounter("roles.reopened")
	}

	s.invalidateRole(ctx, role.Slug)
	s.indexRole(ctx, role)
	return role, nil
}

// validateNewEvent runs the record-level checks for a not-yet-persisted
// event: date presence, index shape, slug format and per-role
// uniqueness, and the append-only date ordering rule.
func (s *RoleService) validateNewEvent(ctx context.Context, tx repositories.Store, event *models.RoleEvent) validation.Errors {
	verrs := validation.Errors{}

	if event.EventDate.IsZero() {
		verrs.Add("event_date", "can't be blank")
	}
	if event.EventIndex < 0 {
		verrs.Add("event_index", "must be a non-negative integer")
	}
	if !models.ValidSlug(event.Slug) {
		verrs.Add("slug", "must be kebab-case")
	} else {
		taken, err := tx.RoleEvents().SlugTaken(ctx, event.RoleID, event.Slug)
		if err != nil {
			verrs.Add("slug", "could not be verified")
		} else if taken {
			verrs.Add("slug", "has already been taken")
		}
	}

	if !event.EventDate.IsZero() {
		latest, err := tx.RoleEvents().LatestForRole(ctx, event.RoleID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			// First event for the role, nothing to order against.
		case err != nil:
			verrs.Add("event_date", "could not be verified")
		case event.EventDate.Before(models.StartOfDay(latest.EventDate)):
			verrs.Addf("event_date", "must be on or after %s", latest.EventDate.Format("2006-01-02"))
		}
	}

	return verrs
}

func (s *RoleService) invalidateRole(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.RoleCacheKey(slug)); err != nil {
		log.Warn().Err(err).Str("slug", slug).Msg("Failed to invalidate cached role")
	}
}

func (s *RoleService) indexRole(ctx context.Context, role *models.Role) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexRole(ctx, role); err != nil {
		// The worker's periodic reindex sweep catches anything missed
		// here.
		log.Warn().Err(err).Str("slug", role.Slug).Msg("Failed to index role")
	}
}
