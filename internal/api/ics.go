package api

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-ical"

	"github.com/devsoland/socialsync/internal/checksum"
	"github.com/devsoland/socialsync/internal/dates"
	"github.com/devsoland/socialsync/internal/models"
)

// Calendar handles GET /api/calendar.ics. Recurring events are expanded for
// the previous, current, and next year so calendar apps keep entries when the
// user scrolls without re-fetching.
//
//	@Summary		Export all events as an iCalendar feed
//	@Tags			events
//	@Produce		text/calendar
//	@Success		200	{string}	string	"iCalendar data"
//	@Security		BearerAuth
//	@Router			/calendar.ics [get]
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.svc.ListEvents(ctx, 0)
	if err != nil {
		slog.Error("calendar export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	now := time.Now()
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//SocialSync//EN")
	cal.Props.SetText("X-WR-CALNAME", "SocialSync")
	cal.Props.SetText("CALSCALE", "GREGORIAN")

	for _, ev := range events {
		pd, firstYear := h.recurrencePattern(ctx, ev)
		for _, ve := range icsEvents(ev, pd, now, firstYear) {
			cal.Children = append(cal.Children, ve.Component)
		}
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		slog.Error("calendar encode failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="socialsync.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// recurrencePattern returns the month and day a recurring event repeats on
// and the earliest year an expanded occurrence may carry, zero when the start
// year is unknown. For birthday events the contact's raw birth date is
// authoritative; the stored event date carries a materialized year and its
// month and day can drift for leap-day birthdays.
func (h *Handler) recurrencePattern(ctx context.Context, ev models.Event) (dates.PartialDate, int) {
	pd := dates.PartialDate{Month: ev.Date.Month(), Day: ev.Date.Day()}
	if !ev.IsRecurring {
		return pd, ev.Date.Year()
	}
	if ev.EventType.IsBirthday() && ev.ContactID != 0 {
		contact, err := h.svc.GetContact(ctx, ev.ContactID)
		if err != nil {
			return pd, 0
		}
		raw, err := dates.Resolve(contact.BirthDateRaw)
		if err != nil {
			return pd, 0
		}
		pd.Month, pd.Day = raw.Month, raw.Day
		return pd, raw.Year
	}
	return pd, 0
}

// icsEvents expands one stored event into VEVENTs for the three-year window.
func icsEvents(ev models.Event, pd dates.PartialDate, now time.Time, firstYear int) []*ical.Event {
	years := []int{now.Year() - 1, now.Year(), now.Year() + 1}
	if !ev.IsRecurring {
		years = []int{ev.Date.Year()}
	}

	uidBase := checksum.Sum([]byte(fmt.Sprintf("%d|%s|%s", ev.ID, ev.Name, ev.EventType)))[:16]

	var out []*ical.Event
	for _, y := range years {
		if firstYear != 0 && y < firstYear {
			continue
		}
		date := time.Date(y, pd.Month, pd.Day, 0, 0, 0, 0, time.UTC)

		ve := ical.NewEvent()
		ve.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@socialsync", uidBase, y))
		ve.Props.SetText(ical.PropSummary, ev.Name)
		if ev.Notes != "" {
			ve.Props.SetText(ical.PropDescription, ev.Notes)
		}

		stamp := ical.NewProp(ical.PropDateTimeStamp)
		stamp.SetDateTime(now.UTC())
		ve.Props.Set(stamp)

		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(date)
		ve.Props.Set(start)

		out = append(out, ve)
	}
	return out
}
