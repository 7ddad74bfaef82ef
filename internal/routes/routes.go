package routes

import (
	"net/http"

	"blogapi/internal/handlers"
	"blogapi/internal/metrics"
	"blogapi/internal/middleware"
	"blogapi/internal/utils/helpers"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Articles *handlers.ArticleHandler
	Comments *handlers.CommentHandler
	Users    *handlers.UserHandler
	Tags     *handlers.TagHandler
	Health   *handlers.HealthHandler
}

type Options struct {
	Auth           middleware.Authenticator
	RateLimiter    *middleware.RateLimiter // nil — без ограничения
	MetricsEnabled bool
}

func InitRoutes(router *mux.Router, h Handlers, opts Options) {
	router.Use(middleware.RequestID, middleware.Logging, metrics.Instrument, middleware.Recoverer)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		helpers.Error(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		helpers.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if opts.MetricsEnabled {
		router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := router.PathPrefix("/api").Subrouter()
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Handler)
	}

	// Один подроутер на все маршруты, чтобы mux отдавал 405 при неверном методе.
	required := wrap(middleware.RequireAuth(opts.Auth))
	optional := wrap(middleware.OptionalAuth(opts.Auth))

	api.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)

	// --- Аутентификация ---
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.Handle("/auth/me", required(h.Auth.Me)).Methods(http.MethodGet)

	// --- Статьи ---
	api.Handle("/articles", optional(h.Articles.List)).Methods(http.MethodGet)
	api.Handle("/articles", required(h.Articles.Create)).Methods(http.MethodPost)
	api.Handle("/articles/{slug}", optional(h.Articles.Get)).Methods(http.MethodGet)
	api.Handle("/articles/{slug}", required(h.Articles.Update)).Methods(http.MethodPut)
	api.Handle("/articles/{slug}", required(h.Articles.Delete)).Methods(http.MethodDelete)
	api.Handle("/articles/{slug}/like", required(h.Articles.ToggleLike)).Methods(http.MethodPost)

	// --- Комментарии: GET/POST по слагу статьи, PUT/DELETE по id комментария ---
	api.Handle("/comments/{slug}", optional(h.Comments.List)).Methods(http.MethodGet)
	api.Handle("/comments/{slug}", required(h.Comments.Create)).Methods(http.MethodPost)
	api.Handle("/comments/{id}", required(h.Comments.Update)).Methods(http.MethodPut)
	api.Handle("/comments/{id}", required(h.Comments.Delete)).Methods(http.MethodDelete)

	// --- Пользователи: /users/profile раньше /users/{username} ---
	api.Handle("/users/profile", required(h.Users.UpdateProfile)).Methods(http.MethodPut)
	api.Handle("/users/{username}", optional(h.Users.Profile)).Methods(http.MethodGet)
	api.Handle("/users/{username}/follow", required(h.Users.ToggleFollow)).Methods(http.MethodPost)

	api.HandleFunc("/tags", h.Tags.List).Methods(http.MethodGet)
}

func wrap(mw func(http.Handler) http.Handler) func(http.HandlerFunc) http.Handler {
	return func(f http.HandlerFunc) http.Handler { return mw(f) }
}
