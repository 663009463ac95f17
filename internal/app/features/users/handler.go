package users

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/instafram/internal/app/store/users"
	"github.com/dalemusser/instafram/internal/app/system/faults"
	"github.com/dalemusser/instafram/internal/app/system/paging"
	"github.com/dalemusser/instafram/internal/app/system/projection"
	"github.com/dalemusser/instafram/internal/app/system/timeouts"
)

// Handler is the thin JSON transport over the users service. Request
// validation and authentication are resolved by callers upstream; this
// layer only parses parameters, invokes operations, and maps faults.
type Handler struct {
	Svc *Service
	Log *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

// ServeGetUser handles GET /{idOrAlias}.
func (h *Handler) ServeGetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pub, err := h.Svc.GetUser(ctx, chi.URLParam(r, "idOrAlias"))
	if err != nil {
		h.writeFault(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pub)
}

// ServeTopCreators handles GET /top?page=N.
func (h *Handler) ServeTopCreators(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Svc.GetTopCreators(ctx, paging.ParsePage(r))
	if err != nil {
		h.writeFault(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// ServeSearch handles GET /search?q=...&page=N.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Svc.SearchUsers(ctx, r.URL.Query().Get("q"), paging.ParsePage(r))
	if err != nil {
		h.writeFault(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// createRequest is the JSON body of POST /.
type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Alias    string `json:"alias"`
	Bio      string `json:"bio,omitempty"`
}

// ServeCreate handles POST /.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pub, err := h.Svc.CreateUser(ctx, userstore.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Alias:    req.Alias,
		Bio:      req.Bio,
	})
	if err != nil {
		h.writeFault(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, pub)
}

// updateRequest is the JSON body of PATCH /{id}. Absent fields are left
// unchanged; image data travels base64-encoded per encoding/json.
type updateRequest struct {
	Name   *string           `json:"name,omitempty"`
	Alias  *string           `json:"alias,omitempty"`
	Bio    *string           `json:"bio,omitempty"`
	Social map[string]string `json:"social,omitempty"`
	Image  *struct {
		Data     []byte `json:"data"`
		Filename string `json:"filename"`
	} `json:"image,omitempty"`
}

// ServeUpdate handles PATCH /{id}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := UpdateInput{
		Name:   req.Name,
		Alias:  req.Alias,
		Bio:    req.Bio,
		Social: req.Social,
	}
	if req.Image != nil {
		in.Image = &ImageUpload{Data: req.Image.Data, Filename: req.Image.Filename}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	pub, err := h.Svc.UpdateUser(ctx, id, in)
	if err != nil {
		h.writeFault(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pub)
}

// ServeToggleFollow handles POST /{id}/follow/{targetID}.
func (h *Handler) ServeToggleFollow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	target, ok := h.pathID(w, r, "targetID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	pub, err := h.Svc.ToggleFollow(ctx, id, target)
	if err != nil {
		h.writeFault(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pub)
}

// ServeFollowers handles GET /{id}/followers.
func (h *Handler) ServeFollowers(w http.ResponseWriter, r *http.Request) {
	h.serveEdgeList(w, r, h.Svc.GetFollowers)
}

// ServeFollowing handles GET /{id}/following.
func (h *Handler) ServeFollowing(w http.ResponseWriter, r *http.Request) {
	h.serveEdgeList(w, r, h.Svc.GetFollowing)
}

// ServeDelete handles DELETE /{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		h.writeFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveEdgeList(w http.ResponseWriter, r *http.Request,
	op func(context.Context, primitive.ObjectID) ([]projection.PublicUser, error)) {

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := op(ctx, id)
	if err != nil {
		h.writeFault(w, r, err)
		return
	}
	if rows == nil {
		rows = []projection.PublicUser{}
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// pathID parses an ObjectID path parameter. A malformed ID can never
// name a user, so it maps to the same not-found surface.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "user does not exist")
		return primitive.NilObjectID, false
	}
	return id, true
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("response encode failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorBody{Status: status, Message: msg})
}

// writeFault maps the fault taxonomy onto status codes. NotFound and
// Conflict carry their reason; everything else surfaces generically
// with the detail kept in the log.
func (h *Handler) writeFault(w http.ResponseWriter, r *http.Request, err error) {
	switch faults.KindOf(err) {
	case faults.KindNotFound:
		h.writeError(w, http.StatusNotFound, faults.PublicReason(err))
	case faults.KindConflict:
		h.writeError(w, http.StatusConflict, faults.PublicReason(err))
	default:
		h.Log.Error("operation failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
