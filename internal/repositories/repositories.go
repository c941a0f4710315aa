package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/roletrack/internal/models"
)

// CycleRepository provides access to search cycles
type CycleRepository interface {
	Create(ctx context.Context, cycle *models.SearchCycle) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SearchCycle, error)
}

// RoleRepository provides access to role data
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetBySlug(ctx context.Context, slug string) (*models.Role, error)
	FindInactiveSince(ctx context.Context, before time.Time) ([]*models.Role, error)
	FindUpdatedSince(ctx context.Context, since time.Time) ([]*models.Role, error)
}

// RoleEventRepository provides access to a role's event log
type RoleEventRepository interface {
	Create(ctx context.Context, event *models.RoleEvent) error
	Update(ctx context.Context, event *models.RoleEvent) error
	GetBySlug(ctx context.Context, roleID uuid.UUID, slug string) (*models.RoleEvent, error)
	CountForRole(ctx context.Context, roleID uuid.UUID) (int64, error)
	LatestForRole(ctx context.Context, roleID uuid.UUID) (*models.RoleEvent, error)
	ListForRole(ctx context.Context, roleID uuid.UUID) ([]*models.RoleEvent, error)
	ListForRoleBySlugDesc(ctx context.Context, roleID uuid.UUID) ([]*models.RoleEvent, error)
	SlugTaken(ctx context.Context, roleID uuid.UUID, slug string) (bool, error)
}

// Store bundles the repositories behind one transactional boundary.
// WithTransaction runs fn against a store whose repositories share a
// single transaction; nested calls compose into the outer transaction.
type Store interface {
	Cycles() CycleRepository
	Roles() RoleRepository
	RoleEvents() RoleEventRepository
	WithTransaction(ctx context.Context, fn func(Store) error) error
}

// gormStore implements Store on a write and a read-only connection.
// Inside a transaction both point at the transaction handle.
type gormStore struct {
	db         *gorm.DB
	readOnlyDB *gorm.DB
}

// NewStore creates a store over the write and read-only databases.
func NewStore(db, readOnlyDB *gorm.DB) Store {
	if readOnlyDB == nil {
		readOnlyDB = db
	}
	return &gormStore{db: db, readOnlyDB: readOnlyDB}
}

func (s *gormStore) Cycles() CycleRepository         { return &cycleRepository{s} }
func (s *gormStore) Roles() RoleRepository           { return &roleRepository{s} }
func (s *gormStore) RoleEvents() RoleEventRepository { return &roleEventRepository{s} }

func (s *gormStore) WithTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, readOnlyDB: tx})
	})
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error, wrap string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return errors.Wrap(err, wrap)
}

type cycleRepository struct {
	store *gormStore
}

func (r *cycleRepository) Create(ctx context.Context, cycle *models.SearchCycle) error {
	return translate(r.store.db.WithContext(ctx).Create(cycle).Error, "failed to create search cycle")
}

func (r *cycleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SearchCycle, error) {
	var cycle models.SearchCycle
	err := r.store.readOnlyDB.WithContext(ctx).First(&cycle, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "failed to get search cycle")
	}
	return &cycle, nil
}

type roleRepository struct {
	store *gormStore
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	return translate(r.store.db.WithContext(ctx).Create(role).Error, "failed to create role")
}

func (r *roleRepository) Update(ctx context.Context, role *models.Role) error {
	return translate(r.store.db.WithContext(ctx).Save(role).Error, "failed to update role")
}

func (r *roleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := r.store.readOnlyDB.WithContext(ctx).First(&role, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "failed to get role by ID")
	}
	return &role, nil
}

func (r *roleRepository) GetBySlug(ctx context.Context, slug string) (*models.Role, error) {
	var role models.Role
	err := r.store.readOnlyDB.WithContext(ctx).Where("slug = ?", slug).First(&role).Error
	if err != nil {
		return nil, translate(err, "failed to get role by slug")
	}
	return &role, nil
}

func (r *roleRepository) FindInactiveSince(ctx context.Context, before time.Time) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.store.readOnlyDB.WithContext(ctx).
		Where("status NOT IN (?)", []models.Status{models.StatusClosed}).
		Where("last_event_at < ?", before).
		Order("last_event_at").
		Find(&roles).Error
	if err != nil {
		return nil, translate(err, "failed to find inactive roles")
	}
	return roles, nil
}

func (r *roleRepository) FindUpdatedSince(ctx context.Context, since time.Time) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.store.readOnlyDB.WithContext(ctx).
		Where("updated_at >= ?", since).
		Order("updated_at").
		Find(&roles).Error
	if err != nil {
		return nil, translate(err, "failed to find updated roles")
	}
	return roles, nil
}

type roleEventRepository struct {
	store *gormStore
}

func (r *roleEventRepository) Create(ctx context.Context, event *models.RoleEvent) error {
	return translate(r.store.db.WithContext(ctx).Create(event).Error, "failed to create role event")
}

func (r *roleEventRepository) Update(ctx context.Context, event *models.RoleEvent) error {
	return translate(r.store.db.WithContext(ctx).Save(event).Error, "failed to update role event")
}

func (r *roleEventRepository) GetBySlug(ctx context.Context, roleID uuid.UUID, slug string) (*models.RoleEvent, error) {
	var event models.RoleEvent
	err := r.store.readOnlyDB.WithContext(ctx).
		Where("role_id = ? AND slug = ?", roleID, slug).
		First(&event).Error
	if err != nil {
		return nil, translate(err, "failed to get role event by slug")
	}
	return &event, nil
}

func (r *roleEventRepository) CountForRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.store.db.WithContext(ctx).
		Model(&models.RoleEvent{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	if err != nil {
		return 0, translate(err, "failed to count role events")
	}
	return count, nil
}

// LatestForRole returns the role's most recent event by index, or
// ErrNotFound when the role has no events.
func (r *roleEventRepository) LatestForRole(ctx context.Context, roleID uuid.UUID) (*models.RoleEvent, error) {
	var event models.RoleEvent
	err := r.store.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Order("event_index DESC").
		First(&event).Error
	if err != nil {
		return nil, translate(err, "failed to get latest role event")
	}
	return &event, nil
}

func (r *roleEventRepository) ListForRole(ctx context.Context, roleID uuid.UUID) ([]*models.RoleEvent, error) {
	var events []*models.RoleEvent
	err := r.store.readOnlyDB.WithContext(ctx).
		Where("role_id = ?", roleID).
		Order("event_index").
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "failed to list role events")
	}
	return events, nil
}

// ListForRoleBySlugDesc lists events in reverse slug order. Slugs embed
// the event date and index, so this approximates reverse-chronological
// order and is what the reopen scan walks.
func (r *roleEventRepository) ListForRoleBySlugDesc(ctx context.Context, roleID uuid.UUID) ([]*models.RoleEvent, error) {
	var events []*models.RoleEvent
	err := r.store.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Order("slug DESC").
		Find(&events).Error
	if err != nil {
		return nil, translate(err, "failed to list role events by slug")
	}
	return events, nil
}

func (r *roleEventRepository) SlugTaken(ctx context.Context, roleID uuid.UUID, slug string) (bool, error) {
	var count int64
	err := r.store.db.WithContext(ctx).
		Model(&models.RoleEvent{}).
		Where("role_id = ? AND slug = ?", roleID, slug).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "failed to check role event slug")
	}
	return count > 0, nil
}
