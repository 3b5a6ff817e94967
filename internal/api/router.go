package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pawelm/fiszki-api/internal/api/middleware"
)

// Handlers bundles the handlers the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Generation *GenerationHandler
	Review     *ReviewHandler
	Flashcard  *FlashcardHandler
}

// NewRouter assembles the full route tree. The auth endpoints are
// public; everything else requires a valid access token.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)

			r.Route("/generations", func(r chi.Router) {
				r.Post("/", h.Generation.Generate)
				r.Get("/", h.Generation.List)
				r.Get("/{generationID}", h.Generation.Get)

				r.Route("/{generationID}/review", func(r chi.Router) {
					r.Get("/", h.Review.GetSession)
					r.Delete("/", h.Review.Abandon)
					r.Post("/save-accepted", h.Review.SaveAccepted)
					r.Post("/save-all", h.Review.SaveAll)

					r.Route("/proposals/{index}", func(r chi.Router) {
						r.Put("/status", h.Review.SetStatus)
						r.Post("/edit", h.Review.BeginEdit)
						r.Delete("/edit", h.Review.CancelEdit)
						r.Post("/edit/submit", h.Review.SubmitEdit)
						r.Patch("/draft", h.Review.UpdateDraft)
					})
				})
			})

			r.Route("/flashcards", func(r chi.Router) {
				r.Get("/", h.Flashcard.List)
				r.Post("/", h.Flashcard.Create)
				r.Get("/{flashcardID}", h.Flashcard.Get)
				r.Put("/{flashcardID}", h.Flashcard.Update)
				r.Delete("/{flashcardID}", h.Flashcard.Delete)
			})
		})
	})

	return r
}
