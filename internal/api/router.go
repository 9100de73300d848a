package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/devsoland/socialsync/internal/contactservice"
	"github.com/devsoland/socialsync/internal/source"
	"github.com/devsoland/socialsync/internal/sse"
	"github.com/devsoland/socialsync/internal/syncer"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// src may be nil when no contact source is configured; broker may be nil
// when SSE is disabled.
func NewRouter(svc *contactservice.Service, engine *syncer.Engine, src source.Provider, broker *sse.Broker, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc, engine, src, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Contacts CRUD.
	r.Get("/contacts", h.ListContacts)
	r.Post("/contacts", h.CreateContact)
	r.Get("/contacts/{id}", h.GetContact)
	r.Put("/contacts/{id}", h.UpdateContact)
	r.Delete("/contacts/{id}", h.DeleteContact)

	// Events CRUD.
	r.Get("/events", h.ListEvents)
	r.Post("/events", h.CreateEvent)
	r.Get("/events/{id}", h.GetEvent)
	r.Put("/events/{id}", h.UpdateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)

	// Greetings.
	r.Put("/events/{id}/greetings", h.SaveGreetings)
	r.Get("/events/{id}/greeting-prompt", h.GreetingPrompt)

	// Upcoming view and manual sync.
	r.Get("/upcoming", h.Upcoming)
	r.Post("/sync", h.RunSync)

	// Calendar export.
	r.Get("/calendar.ics", h.Calendar)

	// SSE change stream (protected by same auth middleware).
	if broker != nil {
		r.Get("/stream", broker.ServeHTTP)
	}

	return r
}
