package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/models"
	"github.com/techpostia/techpost/internal/services"
)

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, ownerID, postID string) (*models.Post, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Post, error)
	UpdateContent(ctx context.Context, ownerID, postID, title, text string) (*models.Post, error)
	UpdateStatus(ctx context.Context, ownerID, postID string, status models.PostStatus) (*models.Post, error)
}

type PostsHandler struct {
	posts PostStore
}

func NewPostsHandler(posts PostStore) *PostsHandler {
	return &PostsHandler{posts: posts}
}

func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUserFromRequest(r)

	posts, err := h.posts.ListByOwner(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err, "list_posts", "Failed to load posts")
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUserFromRequest(r)

	var req models.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, r, &services.ValidationError{Err: err}, "create_post", "")
		return
	}

	p := &models.Post{
		UserID:        user.ID,
		Title:         req.Title,
		GeneratedText: req.GeneratedText,
		ContextPrompt: req.ContextPrompt,
		Audience:      req.Audience,
		Tone:          req.Tone,
		Objective:     req.Objective,
		Platform:      req.Platform,
		Status:        req.Status,
	}
	if p.Status == "" {
		p.Status = models.PostStatusIdea
	}
	if err := h.posts.Create(r.Context(), p); err != nil {
		writeServiceError(w, r, err, "create_post", "Failed to save post")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PostsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUserFromRequest(r)

	p, err := h.posts.GetByID(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err, "get_post", "Failed to load post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PostsHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUserFromRequest(r)

	var req models.UpdatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, r, &services.ValidationError{Err: err}, "update_post", "")
		return
	}

	p, err := h.posts.UpdateContent(r.Context(), user.ID, mux.Vars(r)["id"], req.Title, req.GeneratedText)
	if err != nil {
		writeServiceError(w, r, err, "update_post", "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PostsHandler) UpdatePostStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.GetUserFromRequest(r)

	var req models.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, r, &services.ValidationError{Err: err}, "update_post_status", "")
		return
	}

	p, err := h.posts.UpdateStatus(r.Context(), user.ID, mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeServiceError(w, r, err, "update_post_status", "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
