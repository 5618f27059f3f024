package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mhodnik/toolbin/internal/imaging"
	"github.com/mhodnik/toolbin/internal/model"
	"github.com/mhodnik/toolbin/internal/store"
)

// toolsPageData backs the index page, for both plain listing and search
// results.
type toolsPageData struct {
	PageData
	Tools []model.Tool
	Query string
}

// Index handles GET /.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	tools, err := store.ListTools(r.Context(), s.DB, claims.UserID, "")
	if err != nil {
		slog.Error("failed to list tools", "error", err)
	}

	s.Templates.Render(w, "index.html", &toolsPageData{
		PageData: PageData{Title: "Tools", User: claims},
		Tools:    tools,
	})
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	query := r.URL.Query().Get("query")

	tools, err := store.SearchTools(r.Context(), s.DB, claims.UserID, query)
	if err != nil {
		slog.Error("failed to search tools", "error", err)
	}

	s.Templates.Render(w, "index.html", &toolsPageData{
		PageData: PageData{Title: "Search", User: claims},
		Tools:    tools,
		Query:    query,
	})
}

// CreatePage handles GET /create.
func (s *Server) CreatePage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "tool_form.html", &PageData{Title: "New tool", User: claims})
}

// CreateSubmit handles POST /create.
func (s *Server) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		s.Templates.Render(w, "tool_form.html", &PageData{
			Title: "New tool",
			User:  claims,
			Error: "Quantity must be a whole number.",
		})
		return
	}

	draft := model.ToolDraft{
		Name:        r.FormValue("name"),
		Quantity:    quantity,
		Description: r.FormValue("description"),
		Image:       r.FormValue("image"),
	}

	if _, err := store.CreateTool(r.Context(), s.DB, claims.UserID, draft); err != nil {
		if !store.IsInvalid(err) {
			slog.Error("failed to create tool", "error", err)
		}
		s.Templates.Render(w, "tool_form.html", &PageData{
			Title: "New tool",
			User:  claims,
			Error: formError(err),
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// toolPageData backs the edit and delete pages.
type toolPageData struct {
	PageData
	Tool *model.Tool
}

// EditPage handles GET /edit/{id}.
func (s *Server) EditPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	tool, ok := s.lookupTool(w, r)
	if !ok {
		return
	}

	s.Templates.Render(w, "tool_edit.html", &toolPageData{
		PageData: PageData{Title: "Edit tool", User: claims},
		Tool:     tool,
	})
}

// EditSubmit handles POST /edit/{id}. The form submits every field, so all
// of them are treated as supplied.
func (s *Server) EditSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	tool, ok := s.lookupTool(w, r)
	if !ok {
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		s.Templates.Render(w, "tool_edit.html", &toolPageData{
			PageData: PageData{Title: "Edit tool", User: claims, Error: "Quantity must be a whole number."},
			Tool:     tool,
		})
		return
	}

	name := r.FormValue("name")
	description := r.FormValue("description")
	image := r.FormValue("image")
	patch := model.ToolPatch{
		Name:        &name,
		Quantity:    &quantity,
		Description: &description,
		Image:       &image,
	}
	patch.Apply(tool)

	if _, err := store.UpdateTool(r.Context(), s.DB, claims.UserID, tool); err != nil {
		if !store.IsInvalid(err) {
			slog.Error("failed to update tool", "error", err)
		}
		s.Templates.Render(w, "tool_edit.html", &toolPageData{
			PageData: PageData{Title: "Edit tool", User: claims, Error: formError(err)},
			Tool:     tool,
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeletePage handles GET /delete/{id}, a confirmation page.
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	tool, ok := s.lookupTool(w, r)
	if !ok {
		return
	}

	s.Templates.Render(w, "tool_delete.html", &toolPageData{
		PageData: PageData{Title: "Delete tool", User: claims},
		Tool:     tool,
	})
}

// DeleteSubmit handles POST /delete/{id}.
func (s *Server) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteTool(r.Context(), s.DB, claims.UserID, id); err != nil {
		if store.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to delete tool", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UpdateQuantity handles POST /update_quantity/{id}. Increment adds one,
// decrement subtracts one clamped at zero.
func (s *Server) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	tool, ok := s.lookupTool(w, r)
	if !ok {
		return
	}

	quantity := tool.Quantity + 1
	if r.FormValue("action") == "decrement" {
		quantity = max(0, tool.Quantity-1)
	}

	patch := model.ToolPatch{Quantity: &quantity}
	patch.Apply(tool)

	if _, err := store.UpdateTool(r.Context(), s.DB, claims.UserID, tool); err != nil {
		slog.Error("failed to update tool quantity", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ImageSubmit handles POST /tools/{id}/image.
func (s *Server) ImageSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		http.Error(w, "file too large or invalid form", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, mime, err := imaging.Process(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	imagePath := "/tools/" + id.String() + "/image"
	if err := store.SetToolPhoto(r.Context(), s.DB, claims.UserID, id, data, mime, imagePath); err != nil {
		if store.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to save tool photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/edit/"+id.String(), http.StatusSeeOther)
}

// ImageGet handles GET /tools/{id}/image.
func (s *Server) ImageGet(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetToolPhoto(r.Context(), s.DB, claims.UserID, id)
	if err != nil || data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write image response", "error", err)
	}
}

// lookupTool parses the id path value and fetches the caller's tool, writing
// the error response itself when either step fails.
func (s *Server) lookupTool(w http.ResponseWriter, r *http.Request) (*model.Tool, bool) {
	claims := GetWebClaims(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	tool, err := store.GetToolByID(r.Context(), s.DB, claims.UserID, id)
	if err != nil {
		if store.IsNotFound(err) {
			http.NotFound(w, r)
			return nil, false
		}
		slog.Error("failed to get tool", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	return tool, true
}

// formError turns a store failure into a form-friendly message.
func formError(err error) string {
	if store.IsInvalid(err) {
		return err.Error()
	}
	return "Something went wrong, try again."
}
