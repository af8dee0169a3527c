package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/providers"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
)

const (
	contactRateLimit   = 5
	contactRateWindow  = time.Hour
	contactDedupWindow = 24 * time.Hour
	maxContactBody     = 16 << 10
)

// LeadService defines the lead operations used by the handlers.
type LeadService interface {
	Submit(ctx context.Context, lead *entities.Lead) (entities.LeadDelivery, error)
	Subscribe(ctx context.Context) (<-chan *entities.LeadEvent, error)
}

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	service LeadService
	cache   providers.CacheProvider
	logger  zerolog.Logger
}

// NewContactHandler creates a new contact handler. cache backs the rate
// limit and duplicate suppression.
func NewContactHandler(service LeadService, cache providers.CacheProvider) *ContactHandler {
	return &ContactHandler{
		service: service,
		cache:   cache,
		logger:  observability.Component("contact_handler"),
	}
}

type contactRequest struct {
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	Zip             string   `json:"zip"`
	BirthDates      []string `json:"birthDates"`
	PrivacyAccepted bool     `json:"privacyAccepted"`
}

// SubmitContact handles POST /api/contact
func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var payload contactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxContactBody)).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.Phone) == "" || !payload.PrivacyAccepted {
		respondWithError(w, http.StatusBadRequest, services.MsgIncompleteLead)
		return
	}
	if len(payload.Name) > 200 || len(payload.Phone) > 40 || len(payload.Email) > 200 || len(payload.Zip) > 10 {
		respondWithError(w, http.StatusBadRequest, "field too long")
		return
	}

	ip := clientIP(r)
	allowed, retryAfter := h.allowRequest(r.Context(), "contact:rate:"+ip)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	dupKey := "contact:dup:" + contactFingerprint(payload)
	if h.isDuplicate(r.Context(), dupKey) {
		respondWithJSON(w, http.StatusAccepted, map[string]interface{}{
			"success": true,
			"status":  "duplicate_ignored",
		})
		return
	}

	lead := &entities.Lead{
		FullName:        payload.Name,
		Phone:           payload.Phone,
		Email:           payload.Email,
		ZipCode:         payload.Zip,
		BirthDates:      payload.BirthDates,
		PrivacyAccepted: payload.PrivacyAccepted,
		UserAgent:       r.UserAgent(),
	}

	delivery, err := h.service.Submit(r.Context(), lead)
	if err != nil {
		// the lead was not accepted, so a retry must reach the service
		if delErr := h.cache.Delete(context.WithoutCancel(r.Context()), dupKey); delErr != nil {
			h.logger.Warn().Err(delErr).Msg("failed to release duplicate marker")
		}
		respondWithAppError(w, r, err, "failed to process lead")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Lead procesado correctamente",
		"lead_id":  delivery.LeadID,
		"delivery": delivery,
	})
}

// allowRequest fails open when the cache is unreachable.
func (h *ContactHandler) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	count, err := h.cache.Incr(ctx, key, int(contactRateWindow.Seconds()))
	if err != nil {
		h.logger.Warn().Err(err).Msg("rate limit check failed")
		return true, 0
	}
	return count <= contactRateLimit, contactRateWindow
}

func (h *ContactHandler) isDuplicate(ctx context.Context, key string) bool {
	created, err := h.cache.SetNX(ctx, key, []byte("1"), int(contactDedupWindow.Seconds()))
	if err != nil {
		h.logger.Warn().Err(err).Msg("duplicate check failed")
		return false
	}
	return !created
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// contactFingerprint keys on the person, not the client IP.
func contactFingerprint(payload contactRequest) string {
	var digits strings.Builder
	for _, c := range payload.Phone {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	normalized := []string{
		strings.Join(strings.Fields(strings.ToLower(payload.Name)), " "),
		digits.String(),
		strings.ToLower(strings.TrimSpace(payload.Email)),
	}
	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}
