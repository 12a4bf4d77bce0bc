package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "munhuwese/internal/delivery/http/helpers"
	"munhuwese/internal/delivery/http/middleware"
	"munhuwese/internal/domain"
)

// UpdateProfileRequest is the request body for PUT /users/profile (JSON variant).
// Multipart form submissions use the same field names plus an optional
// "profileImage" file. All fields optional; omitted fields are unchanged.
type UpdateProfileRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Bio           *string `json:"bio"`
	RemoveProfile bool    `json:"removeProfile"`
}

// Validate implements Validator.
func (u UpdateProfileRequest) Validate() []string {
	var errs []string
	if u.Name != nil && len(strings.TrimSpace(*u.Name)) < 2 {
		errs = append(errs, "name must be at least 2 characters")
	}
	if u.Email != nil && !emailRegexp.MatchString(strings.TrimSpace(strings.ToLower(*u.Email))) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// DeleteAccountRequest is the request body for DELETE /users/me.
type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// Validate implements Validator.
func (d DeleteAccountRequest) Validate() []string {
	if d.Password == "" {
		return []string{"password is required"}
	}
	return nil
}

type UserController struct {
	Logger           *slog.Logger
	Service          domain.UserService
	DashboardService domain.DashboardService
	UploadsDir       string
}

func NewUserController(logger *slog.Logger, svc domain.UserService, dashboard domain.DashboardService, uploadsDir string) *UserController {
	return &UserController{
		Logger:           logger,
		Service:          svc,
		DashboardService: dashboard,
		UploadsDir:       uploadsDir,
	}
}

// GetMe godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Description Updates name, email, and bio. Accepts JSON or multipart/form-data; the multipart form may carry an optional "profileImage" file, and removeProfile=true clears the stored image.
// @Tags users
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (including duplicate email)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/profile [put]
func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	update := domain.ProfileUpdate{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if !c.decodeMultipartProfile(w, r, &update) {
			return
		}
	} else {
		var req UpdateProfileRequest
		if !h.DecodeAndValidate(w, r, &req) {
			return
		}
		update.Name = req.Name
		update.Email = req.Email
		update.Bio = req.Bio
		update.RemoveProfileImage = req.RemoveProfile
	}

	user, err := c.Service.UpdateProfile(r.Context(), claims.UserID, update)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "email already in use")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// decodeMultipartProfile parses the multipart form variant of the profile
// update, saving the optional profile image. On failure a 400 has already
// been written.
func (c *UserController) decodeMultipartProfile(w http.ResponseWriter, r *http.Request, update *domain.ProfileUpdate) bool {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
		return false
	}
	form := r.MultipartForm.Value
	if v, ok := form["name"]; ok && len(v) > 0 {
		update.Name = &v[0]
	}
	if v, ok := form["email"]; ok && len(v) > 0 {
		update.Email = &v[0]
	}
	if v, ok := form["bio"]; ok && len(v) > 0 {
		update.Bio = &v[0]
	}
	update.RemoveProfileImage = r.FormValue("removeProfile") == "true"

	req := UpdateProfileRequest{Name: update.Name, Email: update.Email}
	if errs := req.Validate(); len(errs) > 0 {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, strings.Join(errs, "; "))
		return false
	}

	url, saved, err := h.SaveUploadedImage(r, "profileImage", c.UploadsDir)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
		return false
	}
	if saved {
		update.ProfileImage = &url
	}
	return true
}

// Dashboard godoc
// @Summary Get the current user's dashboard feed
// @Description Merges the caller's own posts with all upcoming events, newest first.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of feed items with type post or event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /dashboard [get]
func (c *UserController) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.DashboardService.Feed(r.Context(), claims.UserID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.DashboardItem{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}

// MyRegistrations godoc
// @Summary List the current user's event registrations
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of registrations with their events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/registrations [get]
func (c *UserController) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Service.ListMyRegistrations(r.Context(), claims.UserID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.RegistrationWithEvent{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, items)
}

// DeleteMe godoc
// @Summary Delete the current user's account
// @Description Verifies the password, then deletes the account together with its posts, likes, comments, and event registrations.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DeleteAccountRequest true "Current password"
// @Success 204 "no content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (wrong password)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [delete]
func (c *UserController) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req DeleteAccountRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.DeleteAccount(r.Context(), claims.UserID, req.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid credentials")
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
