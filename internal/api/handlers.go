package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devsoland/socialsync/internal/apperr"
	"github.com/devsoland/socialsync/internal/contactservice"
	"github.com/devsoland/socialsync/internal/models"
	"github.com/devsoland/socialsync/internal/source"
	"github.com/devsoland/socialsync/internal/sse"
	"github.com/devsoland/socialsync/internal/syncer"
)

const dateLayout = "2006-01-02"

// Handler holds API route handlers.
type Handler struct {
	svc    *contactservice.Service
	engine *syncer.Engine
	src    source.Provider
	broker *sse.Broker
}

// NewHandler creates a new Handler. src and broker may be nil when contact
// import or SSE is not configured.
func NewHandler(svc *contactservice.Service, engine *syncer.Engine, src source.Provider, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, engine: engine, src: src, broker: broker}
}

// pathID extracts the numeric {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListContacts handles GET /api/contacts.
//
//	@Summary		List all contacts
//	@Tags			contacts
//	@Produce		json
//	@Success		200	{object}	ContactListResponse
//	@Security		BearerAuth
//	@Router			/contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.ListContacts(r.Context())
	if err != nil {
		slog.Error("list contacts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ContactListResponse{Contacts: contacts, Total: len(contacts)})
}

// GetContact handles GET /api/contacts/{id}.
//
//	@Summary		Get a single contact
//	@Tags			contacts
//	@Produce		json
//	@Param			id	path		int	true	"Contact id"
//	@Success		200	{object}	models.Contact
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [get]
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	contact, err := h.svc.GetContact(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get contact failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, contact)
}

// CreateContact handles POST /api/contacts.
//
//	@Summary		Create a contact and derive its birthday event
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContactRequest	true	"Contact to create"
//	@Success		201		{object}	models.Contact
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts [post]
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	created, err := h.svc.CreateContact(r.Context(), contactFromRequest(req))
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("contact already exists"))
		} else {
			slog.Error("create contact failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateContact handles PUT /api/contacts/{id}.
//
//	@Summary		Update a contact, re-deriving its birthday event
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Contact id"
//	@Param			body	body		ContactRequest	true	"Updated contact"
//	@Success		200		{object}	models.Contact
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [put]
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	contact := contactFromRequest(req)
	contact.ID = id
	updated, err := h.svc.UpdateContact(r.Context(), contact)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("contact already exists"))
		default:
			slog.Error("update contact failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteContact handles DELETE /api/contacts/{id}.
//
//	@Summary		Delete a contact and its events
//	@Tags			contacts
//	@Param			id	path	int	true	"Contact id"
//	@Success		204	"Contact deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [delete]
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.svc.DeleteContact(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete contact failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /api/events.
//
//	@Summary		List events, optionally filtered by contact
//	@Tags			events
//	@Produce		json
//	@Param			contact_id	query		int	false	"Filter by contact"
//	@Success		200			{object}	EventListResponse
//	@Security		BearerAuth
//	@Router			/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	contactID, _ := strconv.ParseInt(r.URL.Query().Get("contact_id"), 10, 64)
	events, err := h.svc.ListEvents(r.Context(), contactID)
	if err != nil {
		slog.Error("list events failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, EventListResponse{Events: events, Total: len(events)})
}

// GetEvent handles GET /api/events/{id}.
//
//	@Summary		Get a single event
//	@Tags			events
//	@Produce		json
//	@Param			id	path		int	true	"Event id"
//	@Success		200	{object}	models.Event
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	event, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get event failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// CreateEvent handles POST /api/events.
//
//	@Summary		Create a user event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EventRequest	true	"Event to create"
//	@Success		201		{object}	models.Event
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	event, errMsg := eventFromRequest(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody(errMsg))
		return
	}
	created, err := h.svc.CreateEvent(r.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("contact already has a birthday event"))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusBadRequest, errorBody("contact not found"))
		default:
			slog.Error("create event failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateEvent handles PUT /api/events/{id}.
//
//	@Summary		Update an event
//	@Tags			events
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Event id"
//	@Param			body	body		EventRequest	true	"Updated event"
//	@Success		200		{object}	models.Event
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	event, errMsg := eventFromRequest(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody(errMsg))
		return
	}
	event.ID = id
	updated, err := h.svc.UpdateEvent(r.Context(), event)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update event failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteEvent handles DELETE /api/events/{id}.
//
//	@Summary		Delete an event
//	@Tags			events
//	@Param			id	path	int	true	"Event id"
//	@Success		204	"Event deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("delete event failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveGreetings handles PUT /api/events/{id}/greetings.
//
//	@Summary		Replace the saved greeting drafts of an event
//	@Tags			greetings
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Event id"
//	@Param			body	body		GreetingsRequest	true	"Greetings to keep"
//	@Success		200		{object}	models.Event
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id}/greetings [put]
func (h *Handler) SaveGreetings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	var req GreetingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	updated, err := h.svc.SaveGreetings(r.Context(), id, req.Greetings)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("save greetings failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// GreetingPrompt handles GET /api/events/{id}/greeting-prompt.
//
//	@Summary		Build the AI greeting prompt for an event
//	@Tags			greetings
//	@Produce		json
//	@Param			id		path		int		true	"Event id"
//	@Param			style	query		string	false	"Greeting style"	Enums(informal, formal, humorous, heartfelt, short, strict)
//	@Success		200		{object}	PromptResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/events/{id}/greeting-prompt [get]
func (h *Handler) GreetingPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return
	}
	style := r.URL.Query().Get("style")
	prompt, err := h.svc.GreetingPrompt(r.Context(), id, style)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("greeting prompt failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, PromptResponse{EventID: id, Style: style, Prompt: prompt})
}

// Upcoming handles GET /api/upcoming.
//
//	@Summary		List events due within a window, soonest first
//	@Tags			events
//	@Produce		json
//	@Param			days	query		int	false	"Window in days (default 30)"
//	@Success		200		{object}	UpcomingResponse
//	@Security		BearerAuth
//	@Router			/upcoming [get]
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	items, err := h.svc.Upcoming(r.Context(), days)
	if err != nil {
		slog.Error("upcoming failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, UpcomingResponse{Items: items})
}

// RunSync handles POST /api/sync.
//
//	@Summary		Import contacts from the configured source now
//	@Tags			sync
//	@Produce		json
//	@Success		200	{object}	SyncResponse
//	@Failure		503	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sync [post]
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	if h.src == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("no contact source configured"))
		return
	}
	report, err := h.engine.ImportFrom(r.Context(), h.src)
	if err != nil {
		slog.Error("sync failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if h.broker != nil {
		h.broker.Publish(sse.Event{Type: "sync.completed", Data: report})
	}
	writeJSON(w, http.StatusOK, report)
}

func contactFromRequest(req ContactRequest) models.Contact {
	return models.Contact{
		ExternalID:   req.ExternalID,
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		MiddleName:   req.MiddleName,
		PhoneNumber:  req.PhoneNumber,
		PhotoRef:     req.PhotoRef,
		BirthDateRaw: req.BirthDate,
		Tags:         req.Tags,
		Notes:        req.Notes,
	}
}

func eventFromRequest(req EventRequest) (models.Event, string) {
	if err := req.Validate(); err != nil {
		return models.Event{}, err.Error()
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return models.Event{}, "date must be formatted as YYYY-MM-DD"
	}
	eventType := models.EventType(req.EventType)
	if eventType == "" {
		eventType = models.EventType("custom")
	}
	return models.Event{
		ContactID:          req.ContactID,
		Name:               req.Name,
		EventType:          eventType,
		Date:               date,
		IsRecurring:        req.IsRecurring,
		GeneratedGreetings: req.Greetings,
		Notes:              req.Notes,
	}, ""
}
