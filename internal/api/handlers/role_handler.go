package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/roletrack/internal/models"
	"example.com/roletrack/internal/repositories"
	"example.com/roletrack/internal/services"
	"example.com/roletrack/internal/tracing"
	"example.com/roletrack/internal/validation"
)

// RoleHandler handles role and role-event HTTP requests
type RoleHandler struct {
	roleService *services.RoleService
	tracer      tracing.Tracer
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *services.RoleService, tracer tracing.Tracer) *RoleHandler {
	return &RoleHandler{
		roleService: roleService,
		tracer:      tracer,
	}
}

// CreateEventRequest is the JSON body for appending a role event
type CreateEventRequest struct {
	Type      string `json:"type"`
	EventDate string `json:"event_date" binding:"required"`
	Slug      string `json:"slug"`
	Notes     string `json:"notes"`
	Summary   string `json:"summary"`
}

// UpdateEventRequest is the JSON body for editing a role event
type UpdateEventRequest struct {
	Type       *string `json:"type"`
	EventDate  *string `json:"event_date"`
	EventIndex *int    `json:"event_index"`
	Notes      *string `json:"notes"`
	Summary    *string `json:"summary"`
}

// CreateCycleRequest is the JSON body for starting a search cycle
type CreateCycleRequest struct {
	Name string `json:"name" binding:"required"`
}

// HandleCreateCycle starts a new search cycle
func (h *RoleHandler) HandleCreateCycle(c *gin.Context) {
	var req CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cycle, err := h.roleService.CreateCycle(c.Request.Context(), req.Name)
	if err != nil {
		h.renderError(c, nil, err)
		return
	}
	c.JSON(http.StatusCreated, cycle)
}

// HandleGetCycle returns a search cycle
func (h *RoleHandler) HandleGetCycle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}

	cycle, err := h.roleService.GetCycle(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, cycle)
}

// HandleCreateRole creates a new tracked role
func (h *RoleHandler) HandleCreateRole(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-role")
	defer h.tracer.EndTransaction(txn)

	var req services.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, txn, err)
		return
	}

	c.JSON(http.StatusCreated, role)
}

// HandleGetRole returns a role's projection
func (h *RoleHandler) HandleGetRole(c *gin.Context) {
	role, err := h.roleService.GetRoleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// HandleListEvents returns a role's history in creation order
func (h *RoleHandler) HandleListEvents(c *gin.Context) {
	role, err := h.roleService.GetRoleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, nil, err)
		return
	}

	events, err := h.roleService.ListEvents(c.Request.Context(), role)
	if err != nil {
		h.renderError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// HandleListVariants returns the event choices legal for the role
func (h *RoleHandler) HandleListVariants(c *gin.Context) {
	role, err := h.roleService.GetRoleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, h.roleService.ListApplicableVariants(role))
}

// HandleCreateEvent appends one event to a role's history
func (h *RoleHandler) HandleCreateEvent(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-create-role-event")
	defer h.tracer.EndTransaction(txn)

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event_date must be formatted YYYY-MM-DD"})
		return
	}

	role, err := h.roleService.GetRoleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, txn, err)
		return
	}

	h.tracer.AddAttribute(txn, "role_slug", role.Slug)
	h.tracer.AddAttribute(txn, "event_type", req.Type)

	role, event, err := h.roleService.CreateEvent(c.Request.Context(), role, services.EventAttributes{
		Type:      req.Type,
		EventDate: eventDate,
		Slug:      req.Slug,
		Notes:     req.Notes,
		Summary:   req.Summary,
	})
	if err != nil {
		h.renderError(c, txn, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"role": role, "event": event})
}

// HandleUpdateEvent edits an event's mutable fields
func (h *RoleHandler) HandleUpdateEvent(c *gin.Context) {
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attrs := services.UpdateEventAttributes{
		Type:       req.Type,
		EventIndex: req.EventIndex,
		Notes:      req.Notes,
		Summary:    req.Summary,
	}
	if req.EventDate != nil {
		eventDate, err := time.Parse("2006-01-02", *req.EventDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_date must be formatted YYYY-MM-DD"})
			return
		}
		attrs.EventDate = &eventDate
	}

	role, err := h.roleService.GetRoleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, nil, err)
		return
	}

	event, err := h.roleService.GetEventBySlug(c.Request.Context(), role, c.Param("eventSlug"))
	if err != nil {
		h.renderError(c, nil, err)
		return
	}

	event, err = h.roleService.UpdateEvent(c.Request.Context(), role, event, attrs)
	if err != nil {
		h.renderError(c, nil, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// HandleReopen reverts a closed role to its pre-closing status
func (h *RoleHandler) HandleReopen(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-reopen-role")
	defer h.tracer.EndTransaction(txn)

	role, err := h.roleService.GetRoleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, txn, err)
		return
	}

	role, err = h.roleService.Reopen(c.Request.Context(), role)
	if err != nil {
		h.renderError(c, txn, err)
		return
	}

	c.JSON(http.StatusOK, role)
}

// renderError translates domain errors into HTTP responses: field
// validation to 422, inadmissible transitions to 409, missing records
// to 404, everything else to 500.
func (h *RoleHandler) renderError(c *gin.Context, txn *newrelic.Transaction, err error) {
	h.tracer.RecordError(txn, err)

	var verrs validation.Errors
	var transitionErr *services.InvalidStatusTransitionError

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":            transitionErr.Error(),
			"current_status":   transitionErr.Current,
			"attempted_status": transitionErr.Attempted,
			"valid_statuses":   models.SortStatuses(transitionErr.Valid),
		})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// RegisterRoutes registers the handler's routes
func (h *RoleHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")

	cycles := api.Group("/cycles")
	cycles.POST("", h.HandleCreateCycle)
	cycles.GET("/:id", h.HandleGetCycle)

	roles := api.Group("/roles")
	roles.POST("", h.HandleCreateRole)
	roles.GET("/:slug", h.HandleGetRole)
	roles.GET("/:slug/events", h.HandleListEvents)
	roles.GET("/:slug/variants", h.HandleListVariants)
	roles.POST("/:slug/events", h.HandleCreateEvent)
	roles.PATCH("/:slug/events/:eventSlug", h.HandleUpdateEvent)
	roles.POST("/:slug/reopen", h.HandleReopen)
}
