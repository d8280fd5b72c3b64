package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
)

// LiveAttendance streams today's worked time as server-sent events, one
// "tick" event per interval while a session is open. When the session is
// closed (or today's record cannot be read) a final "stopped" event is sent
// and the stream ends. Each connection owns its own LiveTimer, stopped when
// the client goes away.
// GET /api/employees/{id}/attendance/live
func (h *Handler) LiveAttendance(w http.ResponseWriter, r *http.Request) {
	emp, err := h.employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "Failed to start live timer", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "Streaming not supported", nil)
		return
	}
	// The stream outlives the server's write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx, cancel := context.WithCancel(r.Context())
	ticks := make(chan attendance.Tick)
	emit := func(t attendance.Tick) {
		select {
		case ticks <- t:
		case <-ctx.Done():
		}
	}

	opts := []attendance.TimerOption{attendance.WithClock(h.now)}
	if h.TickInterval > 0 {
		opts = append(opts, attendance.WithInterval(h.TickInterval))
	}
	timer := attendance.NewLiveTimer(opts...)
	timer.Start(h.Attendance.Sampler(ctx, generic.EmployeeID(emp.ID)), emit)
	defer func() {
		cancel()
		timer.Stop()
	}()

	for {
		select {
		case tick := <-ticks:
			event := "tick"
			if !tick.Running {
				event = "stopped"
			}
			data, err := json.Marshal(toTickDTO(tick))
			if err != nil {
				h.Logger.Error("encode tick", "employee_id", emp.ID, "err", err)
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
			flusher.Flush()
			if !tick.Running {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
