package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civix/backend/internal/classify"
	"github.com/civix/backend/internal/db"
	"github.com/civix/backend/internal/engine"
	"github.com/civix/backend/internal/models"
	"github.com/civix/backend/internal/notify"
	"github.com/civix/backend/internal/utils"
)

type Handler struct {
	Store     *db.Store
	Engine    *engine.Engine
	Inbox     *notify.Inbox
	Emitter   *notify.Emitter
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ReportIssueRequest struct {
	Title       string  `json:"title" validate:"required,min=3"`
	Description string  `json:"description" validate:"required,min=10"`
	Category    string  `json:"category"`
	Urgency     string  `json:"urgency" validate:"required,oneof=critical high moderate low"`
	Lat         float64 `json:"lat" validate:"latitude"`
	Lon         float64 `json:"lon" validate:"longitude"`
	Address     string  `json:"address"`
}

// @Summary Report a civic issue
// @Description Creates the issue and runs the classification and assignment engine. Always succeeds for valid input regardless of assignment outcome.
// @Tags issues
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/issues [post]
func (h *Handler) ReportIssue(c *gin.Context) {
	var req ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	now := time.Now().UTC()
	issue := models.Issue{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Category:    classify.Normalize(req.Category),
		Urgency:     req.Urgency,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Address:     req.Address,
		Status:      models.IssueOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Store.InsertIssue(c.Request.Context(), issue); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create issue", err.Error())
		return
	}

	result := h.Engine.Dispatch(c.Request.Context(), issue)

	// Keyword and direct classifications are locally verifiable, so the
	// category sticks even when assignment waits for approval.
	// External-model categories are not persisted until an admin approves.
	if result.Classification.Method != models.MethodExternal &&
		classify.IsConcrete(result.Classification.Category) &&
		result.Outcome.Kind != engine.OutcomeAssigned {
		if err := h.Store.UpdateIssueCategory(c.Request.Context(), issue.ID, result.Classification.Category); err != nil {
			h.Logger.Error().Err(err).Str("issue_id", issue.ID).Msg("failed to persist category")
		}
	}

	stored, err := h.Store.GetIssue(c.Request.Context(), issue.ID)
	if err != nil {
		stored = issue
	}

	c.JSON(http.StatusCreated, gin.H{
		"issue":         stored,
		"category":      result.Classification.Category,
		"confidence":    result.Classification.Confidence,
		"method":        result.Classification.Method,
		"outcome":       result.Outcome,
		"notifications": result.Notifications,
	})
}

func (h *Handler) IssuesList(c *gin.Context) {
	status := c.Query("status")
	category := c.Query("category")
	urgency := c.Query("urgency")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListIssues(c.Request.Context(), status, category, urgency, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list issues", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) IssueDetails(c *gin.Context) {
	issue, err := h.Store.GetIssue(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get issue", err.Error())
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *Handler) TechniciansList(c *gin.Context) {
	items, err := h.Store.ListTechnicians(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list technicians", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// TechniciansNearby lists active technicians ordered by haversine
// distance from the given point.
func (h *Handler) TechniciansNearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and lon are required", nil)
		return
	}

	technicians, err := h.Store.ListTechnicians(c.Request.Context(), models.TechnicianActive)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list technicians", err.Error())
		return
	}

	type nearby struct {
		models.Technician
		DistanceKm float64 `json:"distance_km"`
	}
	items := make([]nearby, 0, len(technicians))
	for _, t := range technicians {
		items = append(items, nearby{
			Technician: t,
			DistanceKm: utils.HaversineKm(lat, lon, t.Lat, t.Lon),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].DistanceKm == items[j].DistanceKm {
			return items[i].ID < items[j].ID
		}
		return items[i].DistanceKm < items[j].DistanceKm
	})
	if len(items) > 10 {
		items = items[:10]
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateTechnicianRequest struct {
	Name           string  `json:"name" validate:"required"`
	Specialization string  `json:"specialization" validate:"required"`
	Status         string  `json:"status" validate:"omitempty,oneof=active on-site on-leave inactive"`
	Rating         float64 `json:"rating" validate:"gte=0,lte=5"`
	Lat            float64 `json:"lat" validate:"latitude"`
	Lon            float64 `json:"lon" validate:"longitude"`
}

func (h *Handler) TechnicianCreate(c *gin.Context) {
	var req CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = models.TechnicianActive
	}
	t := models.Technician{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Specialization: req.Specialization,
		Status:         status,
		Rating:         req.Rating,
		Lat:            req.Lat,
		Lon:            req.Lon,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := h.Store.InsertTechnician(c.Request.Context(), t); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create technician", err.Error())
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) ResolveIssue(c *gin.Context) {
	id := c.Param("id")
	if err := h.Store.ResolveIssue(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to resolve issue", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ReassignRequest struct {
	TechnicianID string `json:"technician_id" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
}

// Reassign lets an admin move an issue to any technician. Targets
// outside the matching specialization are allowed but recorded as an
// override notification.
func (h *Handler) Reassign(c *gin.Context) {
	id := c.Param("id")
	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	issue, err := h.Store.GetIssue(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Issue not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get issue", err.Error())
		return
	}
	technician, err := h.Store.GetTechnician(c.Request.Context(), req.TechnicianID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Technician not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get technician", err.Error())
		return
	}

	override := classify.IsConcrete(issue.Category) &&
		!classify.MatchesSpecialization(technician.Specialization, issue.Category)

	if err := h.Store.Reassign(c.Request.Context(), id, req.TechnicianID); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reassign", err.Error())
		return
	}
	if override {
		h.Emitter.ManualOverride(issue, technician, req.Reason)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "override": override})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
