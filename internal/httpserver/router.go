package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"quickchat/internal/assets"
	"quickchat/internal/config"
	"quickchat/internal/domain"
	"quickchat/internal/security"
	"quickchat/internal/service"
	"quickchat/internal/store/sqlite"
	"quickchat/internal/ws"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewRouter constructs the main HTTP router and wires routes, services, and
// middleware.
func NewRouter(
	cfg *config.Config,
	db *sql.DB,
	registry *ws.Registry,
	relay *ws.Relay,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	encryptor *security.Encryptor,
	uploader assets.Uploader,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	userRepo := sqlite.NewUserRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)

	// Services
	authSvc := service.NewAuthService(userRepo, tokenSvc, passwordHasher, uploader)
	msgSvc := service.NewMessageService(userRepo, msgRepo, uploader, relay, encryptor)

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is Live"))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", handleSignup(authSvc))
			r.Post("/login", handleLogin(authSvc))

			// Authenticated auth endpoints
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(tokenSvc, authSvc))
				r.Get("/check", handleCheck())
				r.Put("/update-profile", handleUpdateProfile(authSvc))
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, authSvc))
			r.Get("/users", handleListChatUsers(msgSvc))
			r.Get("/{id}", handleGetMessages(msgSvc))
			r.Post("/send/{id}", handleSendMessage(msgSvc))
			r.Put("/mark/{id}", handleMarkSeen(msgSvc))
		})

		// Locally stored assets (development deployments without an asset host).
		r.Get("/uploads/{filename}", serveUpload(cfg.UploadDir))
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(registry, log, cfg.CORSOrigins))

	return r
}

// serveUpload serves a stored asset by filename, adapted from the previous
// upload routes. Path traversal is rejected.
func serveUpload(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filename == "" || filepath.Base(filename) != filename {
			writeJSON(w, http.StatusBadRequest, failure("invalid filename"))
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, filename))
	}
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// failure is the uniform error body: {"success":false,"message":...}.
func failure(msg string) map[string]any {
	return map[string]any{
		"success": false,
		"message": msg,
	}
}

// writeError maps domain sentinels onto status codes while keeping the
// uniform failure body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, failure(err.Error()))
}

// validateBody runs struct-tag validation and formats the first violation.
func validateBody(s any) (string, bool) {
	err := validate.Struct(s)
	if err == nil {
		return "", true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Field(), false
	}
	return "invalid request", false
}
