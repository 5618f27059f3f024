package web

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mhodnik/toolbin/internal/auth"
	"github.com/mhodnik/toolbin/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Log in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Log in",
			Error: "Enter your email and password.",
		})
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil || !user.Active {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Log in",
			Error: "Invalid email or password.",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Log in",
			Error: "Invalid email or password.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Email)
	if err != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Log in",
			Error: "Login failed, try again.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &PageData{Title: "Register"})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")

	if email == "" || !strings.Contains(email, "@") {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Register",
			Error: "Enter a valid email address.",
		})
		return
	}
	if len(password) < 8 {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Register",
			Error: "Password must be at least 8 characters.",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Register",
			Error: "Registration failed, try again.",
		})
		return
	}

	_, err = store.CreateUser(r.Context(), s.DB, email, string(hash))
	if store.IsExists(err) {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Register",
			Error: "That email is already registered.",
		})
		return
	}
	if err != nil {
		s.Templates.Render(w, "register.html", &PageData{
			Title: "Register",
			Error: "Registration failed, try again.",
		})
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if claims.ID != "" && claims.ExpiresAt != nil {
				_ = store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time)
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
