package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	toolsHandler := &ToolsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: registration and login.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated account routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Tools, all owner-scoped.
	mux.Handle("POST /api/tool", authMW(http.HandlerFunc(toolsHandler.Create)))
	mux.Handle("GET /api/tool", authMW(http.HandlerFunc(toolsHandler.List)))
	mux.Handle("GET /api/tool/search", authMW(http.HandlerFunc(toolsHandler.Search)))
	mux.Handle("GET /api/tool/{id}", authMW(http.HandlerFunc(toolsHandler.Get)))
	mux.Handle("PATCH /api/tool/{id}", authMW(http.HandlerFunc(toolsHandler.Patch)))
	mux.Handle("DELETE /api/tool/{id}", authMW(http.HandlerFunc(toolsHandler.Delete)))
	mux.Handle("POST /api/tool/{id}/quantity", authMW(http.HandlerFunc(toolsHandler.AdjustQuantity)))
	mux.Handle("PUT /api/tool/{id}/image", authMW(http.HandlerFunc(toolsHandler.UploadImage)))
	mux.Handle("GET /api/tool/{id}/image", authMW(http.HandlerFunc(toolsHandler.GetImage)))

	return mux
}
