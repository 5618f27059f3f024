package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/mhodnik/toolbin/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.Index)))
	mux.Handle("GET /search", cookieAuth(http.HandlerFunc(s.Search)))

	mux.Handle("GET /create", cookieAuth(http.HandlerFunc(s.CreatePage)))
	mux.Handle("POST /create", cookieAuth(http.HandlerFunc(s.CreateSubmit)))
	mux.Handle("GET /edit/{id}", cookieAuth(http.HandlerFunc(s.EditPage)))
	mux.Handle("POST /edit/{id}", cookieAuth(http.HandlerFunc(s.EditSubmit)))
	mux.Handle("GET /delete/{id}", cookieAuth(http.HandlerFunc(s.DeletePage)))
	mux.Handle("POST /delete/{id}", cookieAuth(http.HandlerFunc(s.DeleteSubmit)))
	mux.Handle("POST /update_quantity/{id}", cookieAuth(http.HandlerFunc(s.UpdateQuantity)))

	mux.Handle("POST /tools/{id}/image", cookieAuth(http.HandlerFunc(s.ImageSubmit)))
	mux.Handle("GET /tools/{id}/image", cookieAuth(http.HandlerFunc(s.ImageGet)))

	return mux, nil
}
