package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "munhuwese/internal/delivery/http/helpers"
	"munhuwese/internal/delivery/http/middleware"
	"munhuwese/internal/domain"
)

// CreatePostRequest is the request body for POST /posts (JSON variant).
// Multipart form submissions use the same field names plus an optional
// "image" file.
type CreatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate implements Validator.
func (c CreatePostRequest) Validate() []string {
	var errs []string
	if len(strings.TrimSpace(c.Title)) < 3 {
		errs = append(errs, "title must be at least 3 characters")
	}
	if len(strings.TrimSpace(c.Description)) < 10 {
		errs = append(errs, "description must be at least 10 characters")
	}
	return errs
}

// UpdatePostRequest is the request body for PUT /posts/{postID}.
// All fields optional; omitted fields are unchanged.
type UpdatePostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (u UpdatePostRequest) Validate() []string {
	var errs []string
	if u.Title != nil && len(strings.TrimSpace(*u.Title)) < 3 {
		errs = append(errs, "title must be at least 3 characters")
	}
	if u.Description != nil && len(strings.TrimSpace(*u.Description)) < 10 {
		errs = append(errs, "description must be at least 10 characters")
	}
	return errs
}

// CommentRequest is the request body for creating and updating comments.
type CommentRequest struct {
	Content string `json:"content"`
}

// Validate implements Validator.
func (c CommentRequest) Validate() []string {
	if strings.TrimSpace(c.Content) == "" {
		return []string{"content is required"}
	}
	return nil
}

// ListPostsResponse is the data payload for GET /posts.
type ListPostsResponse struct {
	Items      []*domain.PostWithMeta `json:"items"`
	Pagination h.PaginationMeta       `json:"pagination"`
}

// LikeResponse is the data payload for the like toggle and like count
// endpoints.
type LikeResponse struct {
	Count int `json:"count"`
}

type PostController struct {
	Logger     *slog.Logger
	Service    domain.PostService
	UploadsDir string
}

func NewPostController(logger *slog.Logger, svc domain.PostService, uploadsDir string) *PostController {
	return &PostController{
		Logger:     logger,
		Service:    svc,
		UploadsDir: uploadsDir,
	}
}

// List godoc
// @Summary List posts
// @Description Returns posts newest first with author and like count. Paginated with page and page_size query params.
// @Tags posts
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts [get]
func (c *PostController) List(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	posts, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if posts == nil {
		posts = []*domain.PostWithMeta{}
	}
	meta := h.NewPaginationMeta(params.Page, params.PageSize, total)
	h.WriteJSONSuccess(w, http.StatusOK, ListPostsResponse{Items: posts, Pagination: meta})
}

// Get godoc
// @Summary Get a post by ID
// @Tags posts
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} helpers.APIResponse "data contains the post with like count"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID} [get]
func (c *PostController) Get(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	post, err := c.Service.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "post not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, post)
}

// Create godoc
// @Summary Create a post
// @Description Create a community post. Accepts JSON or multipart/form-data; the multipart form may carry an optional "image" file which is stored and served under /uploads.
// @Tags posts
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param body body CreatePostRequest true "Post data"
// @Success 201 {object} helpers.APIResponse "data contains the created post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts [post]
func (c *PostController) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req CreatePostRequest
	var imageURL *string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")
		if errs := req.Validate(); len(errs) > 0 {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, strings.Join(errs, "; "))
			return
		}
		url, saved, err := h.SaveUploadedImage(r, "image", c.UploadsDir)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		if saved {
			imageURL = &url
		}
	} else if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	post := domain.NewPost(req.Title, req.Description, claims.UserID, time.Now())
	post.ImageURL = imageURL

	created, err := c.Service.Create(r.Context(), post)
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

// Update godoc
// @Summary Update a post
// @Description Updates post title and/or description. Only the author or an admin can update.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param body body UpdatePostRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated post"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not author)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID} [put]
func (c *PostController) Update(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	post, err := c.Service.Update(r.Context(), postID, claims, req.Title, req.Description)
	if err != nil {
		c.writePostError(w, r, err, "post not found")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post
// @Description Deletes the post with its likes and comments. Only the author or an admin can delete.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not author)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID} [delete]
func (c *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Delete(r.Context(), postID, claims); err != nil {
		c.writePostError(w, r, err, "post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Description Adds the caller's like if absent, removes it if present. Returns the resulting like count.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Success 200 {object} helpers.APIResponse "data contains count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID}/like [post]
func (c *PostController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	count, err := c.Service.ToggleLike(r.Context(), postID, claims.UserID)
	if err != nil {
		c.writePostError(w, r, err, "post not found")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, LikeResponse{Count: count})
}

// Likes godoc
// @Summary Get a post's like count
// @Tags posts
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} helpers.APIResponse "data contains count"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID}/likes [get]
func (c *PostController) Likes(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	count, err := c.Service.CountLikes(r.Context(), postID)
	if err != nil {
		c.writePostError(w, r, err, "post not found")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, LikeResponse{Count: count})
}

// ListComments godoc
// @Summary List comments on a post
// @Description Returns the post's comments oldest first, each with its author summary.
// @Tags posts
// @Produce json
// @Param postID path int true "Post ID"
// @Success 200 {object} helpers.APIResponse "data is an array of comments"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID}/comments [get]
func (c *PostController) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	comments, err := c.Service.ListComments(r.Context(), postID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if comments == nil {
		comments = []*domain.CommentWithAuthor{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, comments)
}

// AddComment godoc
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Param body body CommentRequest true "Comment content"
// @Success 201 {object} helpers.APIResponse "data contains the created comment with author"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID}/comments [post]
func (c *PostController) AddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	var req CommentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	comment, err := c.Service.AddComment(r.Context(), postID, claims.UserID, req.Content)
	if err != nil {
		c.writePostError(w, r, err, "post not found")
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// UpdateComment godoc
// @Summary Update a comment
// @Description Updates the comment content. Only the author or an admin can update.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param commentID path int true "Comment ID"
// @Param body body CommentRequest true "New content"
// @Success 200 {object} helpers.APIResponse "data contains the updated comment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not author)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/comments/{commentID} [put]
func (c *PostController) UpdateComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(w, r, "commentID")
	if !ok {
		return
	}
	var req CommentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	comment, err := c.Service.UpdateComment(r.Context(), commentID, claims, req.Content)
	if err != nil {
		c.writePostError(w, r, err, "comment not found")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Deletes the comment. Only the author or an admin can delete.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param commentID path int true "Comment ID"
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not author)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/comments/{commentID} [delete]
func (c *PostController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseID(w, r, "commentID")
	if !ok {
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteComment(r.Context(), commentID, claims); err != nil {
		c.writePostError(w, r, err, "comment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writePostError maps the common service error cases for posts and comments.
func (c *PostController) writePostError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}
