package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
	"github.com/zatekoja/dentisalud-funnel/internal/locator"
)

// SessionHub is the live-session registry used by the handler.
type SessionHub interface {
	Create() *locator.Session
	Get(id string) (*locator.Session, bool)
	Remove(id string) bool
}

// SessionHandler exposes stateful locator sessions: clients post events and
// follow state snapshots over SSE.
type SessionHandler struct {
	hub       SessionHub
	heartbeat time.Duration
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(hub SessionHub) *SessionHandler {
	return &SessionHandler{hub: hub, heartbeat: sseHeartbeatInterval}
}

type sessionEventRequest struct {
	Type       string   `json:"type"`
	Query      string   `json:"query"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	PostalCode string   `json:"postal_code"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Reason     string   `json:"reason"`
	ID         string   `json:"sp_id"`
	Offset     float64  `json:"offset"`
	Velocity   float64  `json:"velocity"`
}

var errUnknownEvent = errors.New("unknown event type")

func (req sessionEventRequest) event() (locator.Event, error) {
	switch req.Type {
	case "query":
		return locator.SetQuery{Query: req.Query}, nil
	case "region":
		return locator.SetRegion{Region: req.Region}, nil
	case "subregion":
		return locator.SetSubregion{Subregion: req.Subregion}, nil
	case "postal_code":
		return locator.SetPostalCode{PostalCode: req.PostalCode}, nil
	case "locate":
		return locator.LocateRequested{}, nil
	case "near_me":
		if req.Lat == nil || req.Lon == nil {
			return nil, errors.New("near_me requires lat and lon")
		}
		return locator.NearMe{Coordinates: locator.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon}}, nil
	case "geolocation_failed":
		return locator.GeolocationFailed{Reason: req.Reason}, nil
	case "clear":
		return locator.ClearSearch{}, nil
	case "select":
		if req.ID == "" {
			return nil, errors.New("select requires sp_id")
		}
		return locator.SelectServicePoint{ServicePointID: req.ID}, nil
	case "highlight":
		if req.ID == "" {
			return nil, errors.New("highlight requires sp_id")
		}
		return locator.HighlightServicePoint{ServicePointID: req.ID}, nil
	case "back":
		return locator.Back{}, nil
	case "drag_end":
		return locator.DragEnd{Offset: req.Offset, Velocity: req.Velocity}, nil
	case "toggle_handle":
		return locator.ToggleHandle{}, nil
	case "open":
		return locator.Reopen{}, nil
	default:
		return nil, errUnknownEvent
	}
}

// CreateSession handles POST /api/locator/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.hub.Create()
	w.Header().Set("Location", "/api/locator/sessions/"+s.ID())
	respondWithJSON(w, http.StatusCreated, s.Snapshot())
}

// GetSession handles GET /api/locator/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.hub.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	respondWithJSON(w, http.StatusOK, s.Snapshot())
}

// DeleteSession handles DELETE /api/locator/sessions/{id}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.hub.Remove(r.PathValue("id")) {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostEvent handles POST /api/locator/sessions/{id}/events. Events are
// applied asynchronously; the response carries the version they follow.
func (h *SessionHandler) PostEvent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.hub.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}

	var req sessionEventRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	ev, err := req.event()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	after := s.Snapshot().Version
	if err := s.Dispatch(r.Context(), ev); err != nil {
		if errors.Is(err, locator.ErrSessionClosed) {
			respondWithError(w, http.StatusGone, "session closed")
			return
		}
		respondWithError(w, http.StatusServiceUnavailable, "event not accepted")
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted":      true,
		"after_version": after,
	})
}

// StreamSession handles GET /api/locator/sessions/{id}/stream
func (h *SessionHandler) StreamSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.hub.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}

	flusher, ok := startSSE(w)
	if !ok {
		return
	}

	snapshots, cancel := s.Subscribe()
	defer cancel()

	logger := observability.LoggerFromContext(r.Context())
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("locator_session", s.ID()).Msg("client disconnected from session stream")
			return
		case <-ticker.C:
			if err := sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()}); err != nil {
				return
			}
			flusher.Flush()
		case snap, ok := <-snapshots:
			if !ok {
				_ = sendEvent(w, "closed", map[string]string{"id": s.ID()})
				flusher.Flush()
				return
			}
			if err := sendEvent(w, "snapshot", snap); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
