package api

import (
	"database/sql"
	"net/http"

	"github.com/google/uuid"

	"github.com/mhodnik/toolbin/internal/imaging"
	"github.com/mhodnik/toolbin/internal/model"
	"github.com/mhodnik/toolbin/internal/store"
)

// ToolsHandler handles tool CRUD and search endpoints. Every operation is
// scoped to the authenticated user.
type ToolsHandler struct {
	DB *sql.DB
}

type quantityRequest struct {
	Action string `json:"action"`
}

// Quantity actions.
const (
	ActionIncrement = "increment"
	ActionDecrement = "decrement"
)

// Create handles POST /api/tool.
func (h *ToolsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var draft model.ToolDraft
	if err := decodeJSON(r, &draft); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tool, err := store.CreateTool(r.Context(), h.DB, claims.UserID, draft)
	if err != nil {
		storeError(w, err, "failed to create tool")
		return
	}

	jsonResponse(w, http.StatusCreated, tool)
}

// List handles GET /api/tool. An optional name query parameter restricts the
// result to exact name matches.
func (h *ToolsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	tools, err := store.ListTools(r.Context(), h.DB, claims.UserID, r.URL.Query().Get("name"))
	if err != nil {
		storeError(w, err, "failed to list tools")
		return
	}
	if tools == nil {
		tools = []model.Tool{}
	}
	jsonResponse(w, http.StatusOK, tools)
}

// Search handles GET /api/tool/search.
func (h *ToolsHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	tools, err := store.SearchTools(r.Context(), h.DB, claims.UserID, r.URL.Query().Get("query"))
	if err != nil {
		storeError(w, err, "failed to search tools")
		return
	}
	if tools == nil {
		tools = []model.Tool{}
	}
	jsonResponse(w, http.StatusOK, tools)
}

// Get handles GET /api/tool/{id}.
func (h *ToolsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	tool, err := store.GetToolByID(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		storeError(w, err, "failed to get tool")
		return
	}
	jsonResponse(w, http.StatusOK, tool)
}

// Patch handles PATCH /api/tool/{id}. Only the supplied fields change.
func (h *ToolsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	var patch model.ToolPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tool, err := store.GetToolByID(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		storeError(w, err, "failed to get tool")
		return
	}

	patch.Apply(tool)

	updated, err := store.UpdateTool(r.Context(), h.DB, claims.UserID, tool)
	if err != nil {
		storeError(w, err, "failed to update tool")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/tool/{id}.
func (h *ToolsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	if err := store.DeleteTool(r.Context(), h.DB, claims.UserID, id); err != nil {
		storeError(w, err, "failed to delete tool")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "tool deleted"})
}

// AdjustQuantity handles POST /api/tool/{id}/quantity. Increment adds one;
// decrement subtracts one but never below zero.
func (h *ToolsHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action != ActionIncrement && req.Action != ActionDecrement {
		jsonError(w, http.StatusBadRequest, "action must be increment or decrement")
		return
	}

	tool, err := store.GetToolByID(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		storeError(w, err, "failed to get tool")
		return
	}

	quantity := tool.Quantity + 1
	if req.Action == ActionDecrement {
		quantity = max(0, tool.Quantity-1)
	}

	patch := model.ToolPatch{Quantity: &quantity}
	patch.Apply(tool)

	updated, err := store.UpdateTool(r.Context(), h.DB, claims.UserID, tool)
	if err != nil {
		storeError(w, err, "failed to update tool")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// UploadImage handles PUT /api/tool/{id}/image.
func (h *ToolsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, mime, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	imagePath := "/api/tool/" + id.String() + "/image"
	if err := store.SetToolPhoto(r.Context(), h.DB, claims.UserID, id, data, mime, imagePath); err != nil {
		storeError(w, err, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded", "image": imagePath})
}

// GetImage handles GET /api/tool/{id}/image.
func (h *ToolsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	data, mime, err := store.GetToolPhoto(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
