package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	h "munhuwese/internal/delivery/http/helpers"
	"munhuwese/internal/delivery/http/middleware"
	"munhuwese/internal/domain"
)

// maxMultipartMemory caps the in-memory portion of a multipart form parse.
const maxMultipartMemory = 8 << 20

// parseID reads the named path parameter as a positive int64. On failure it
// writes a 400 response and returns false.
func parseID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// CreateEventRequest is the request body for POST /events (JSON variant).
// Multipart form submissions use the same field names plus an optional
// "image" file.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if len(strings.TrimSpace(c.Title)) < 3 {
		errs = append(errs, "title must be at least 3 characters")
	}
	if len(strings.TrimSpace(c.Description)) < 10 {
		errs = append(errs, "description must be at least 10 characters")
	}
	if strings.TrimSpace(c.Location) == "" {
		errs = append(errs, "location is required")
	}
	if c.StartAt.IsZero() {
		errs = append(errs, "startAt is required")
	}
	if c.EndAt.IsZero() {
		errs = append(errs, "endAt is required")
	} else if !c.StartAt.IsZero() && c.EndAt.Before(c.StartAt) {
		errs = append(errs, "endAt must be after startAt")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}.
// All fields are optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
	ImageURL    *string    `json:"imageUrl"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && len(strings.TrimSpace(*u.Title)) < 3 {
		errs = append(errs, "title must be at least 3 characters")
	}
	if u.Description != nil && len(strings.TrimSpace(*u.Description)) < 10 {
		errs = append(errs, "description must be at least 10 characters")
	}
	if u.Location != nil && strings.TrimSpace(*u.Location) == "" {
		errs = append(errs, "location cannot be empty")
	}
	if u.StartAt != nil && u.EndAt != nil && u.EndAt.Before(*u.StartAt) {
		errs = append(errs, "endAt must be after startAt")
	}
	return errs
}

type EventController struct {
	Logger     *slog.Logger
	Service    domain.EventService
	UploadsDir string
}

func NewEventController(logger *slog.Logger, svc domain.EventService, uploadsDir string) *EventController {
	return &EventController{
		Logger:     logger,
		Service:    svc,
		UploadsDir: uploadsDir,
	}
}

// List godoc
// @Summary List events
// @Description Returns events that have not been expired yet (ended events stay listed for the retention window). When called with a Bearer token, each event carries a registered flag for the caller.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of events with creator, attendeeCount, and registered"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	var callerID int64
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		callerID = claims.UserID
	}
	events, err := c.Service.List(r.Context(), callerID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if events == nil {
		events = []*domain.EventWithMeta{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// Create godoc
// @Summary Create an event
// @Description Create a community event. Admin only. Accepts JSON or multipart/form-data; the multipart form may carry an optional "image" file which is stored and served under /uploads.
// @Tags events
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req CreateEventRequest
	var imageURL *string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, url, ok := c.decodeMultipartEvent(w, r)
		if !ok {
			return
		}
		req = parsed
		imageURL = url
	} else if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	event := domain.NewEvent(req.Title, req.Description, req.Location, req.StartAt, req.EndAt, claims.UserID, time.Now())
	event.ImageURL = imageURL

	created, err := c.Service.Create(r.Context(), event)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, created)
}

// decodeMultipartEvent parses the multipart form variant of event creation,
// saving the optional image. On failure a 400 has already been written.
func (c *EventController) decodeMultipartEvent(w http.ResponseWriter, r *http.Request) (CreateEventRequest, *string, bool) {
	var req CreateEventRequest
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
		return req, nil, false
	}
	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Location = r.FormValue("location")
	for _, f := range []struct {
		name string
		dst  *time.Time
	}{
		{"startAt", &req.StartAt},
		{"endAt", &req.EndAt},
	} {
		if v := r.FormValue(f.name); v != "" {
			parsed, err := time.Parse(time.RFC3339, v)
			if err != nil {
				h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, f.name+" must be RFC 3339")
				return req, nil, false
			}
			*f.dst = parsed
		}
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, strings.Join(errs, "; "))
		return req, nil, false
	}

	url, saved, err := h.SaveUploadedImage(r, "image", c.UploadsDir)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		return req, nil, false
	}
	if !saved {
		return req, nil, true
	}
	return req, &url, true
}

// Update godoc
// @Summary Update an event
// @Description Updates event fields. Admin only. Optional fields omitted from the body are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), eventID, domain.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Deletes the event and all its registrations. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated user for the event and sends a confirmation email (best-effort).
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (already registered)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/register [post]
func (c *EventController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reg, err := c.Service.Register(r.Context(), eventID, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrDuplicateRegistration) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "already registered for this event")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// ListRegistrations godoc
// @Summary List event registrations
// @Description Returns the attendees registered for the event. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse "data is an array of registrations with user summaries"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *EventController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}
	items, err := c.Service.ListRegistrations(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.RegistrationWithUser{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}
