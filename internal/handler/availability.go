package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/ovenline/bakery-api/internal/schedule"
)

// Slots handles GET /api/slots: the bookable window expanded into per-day
// pickup times, closed days disabled.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	days := h.sched.Days(h.now())

	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("days")
		e.ArrStart()
		for _, d := range days {
			e.ObjStart()
			e.FieldStart("date")
			e.Str(d.Date)
			e.FieldStart("times")
			e.ArrStart()
			for _, t := range d.Times {
				e.Str(t)
			}
			e.ArrEnd()
			e.FieldStart("disabled")
			e.Bool(d.Disabled)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

// Availability handles GET /api/availability?date=YYYY-MM-DD: per-slot
// used/remaining counts against the capacity ceiling.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, r, http.StatusBadRequest, "date required")
		return
	}
	if _, err := schedule.ParseDate(date); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid date")
		return
	}

	counts, err := h.store.CountActiveByDate(r.Context(), date)
	if err != nil {
		zctx.From(r.Context()).Error("Availability query failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "unexpected error")
		return
	}

	capacity := h.cfg.SlotCapacity
	writeJSON(w, r, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("date")
		e.Str(date)
		e.FieldStart("max_per_slot")
		e.Int(capacity)
		e.FieldStart("slots")
		e.ArrStart()
		for _, t := range h.sched.SlotGrid() {
			used := counts[t]
			remaining := max(0, capacity-used)
			e.ObjStart()
			e.FieldStart("time")
			e.Str(t)
			e.FieldStart("used")
			e.Int(used)
			e.FieldStart("remaining")
			e.Int(remaining)
			e.FieldStart("full")
			e.Bool(remaining == 0)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}
