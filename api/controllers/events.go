package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gaprints/prints-backend/api/responses"
	"github.com/gaprints/prints-backend/internal/signals"
	pkgerrors "github.com/gaprints/prints-backend/pkg/errors"
	"github.com/gaprints/prints-backend/pkg/logger"
)

const (
	eventOpen    = "open"
	eventClose   = "close"
	eventUpdated = "updated"

	eventBuffer = 32
)

var heartbeatInterval = 25 * time.Second

type cartEvent struct {
	name  string
	stage signals.Stage
}

func (e cartEvent) data() []byte {
	if e.name != eventOpen {
		return []byte("{}")
	}
	raw, _ := json.Marshal(map[string]signals.Stage{"stage": e.stage})
	return raw
}

// CartEvents streams the session's open, close and updated signals as
// server-sent events. A pending deferred open and a ?cart=open deep link are
// delivered to this stream only; the deep link fires once per ?nav= id.
func CartEvents(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessionFor(sessions, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rc := http.NewResponseController(w)

		events := make(chan cartEvent, eventBuffer)
		push := func(e cartEvent) {
			select {
			case events <- e:
			default:
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "event", e.name), "cart event dropped, stream not keeping up")
				}
			}
		}

		offOpen := s.Bus.OnOpen(func(stage signals.Stage) { push(cartEvent{name: eventOpen, stage: stage}) })
		offClose := s.Bus.OnClose(func() { push(cartEvent{name: eventClose}) })
		offUpdated := s.Bus.OnUpdated(func() { push(cartEvent{name: eventUpdated}) })
		defer func() {
			offOpen()
			offClose()
			offUpdated()
		}()

		if stage, ok := sessions.TakeDeferredOpen(s.ID); ok {
			push(cartEvent{name: eventOpen, stage: stage})
		}
		if stage, ok := signals.DeepLink(r.URL.Query()); ok {
			sessions.OncePerNavigation(s.ID, r.URL.Query().Get("nav"), func() {
				push(cartEvent{name: eventOpen, stage: stage})
			})
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			if logg != nil {
				logg.Error(r.Context(), "event stream unsupported", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush"))
			}
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case e := <-events:
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.name, e.data()); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
