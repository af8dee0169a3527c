package handlers

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/zatekoja/dentisalud-funnel/internal/application/services"
	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
	"github.com/zatekoja/dentisalud-funnel/internal/infrastructure/observability"
)

// DirectoryImporter defines the import operation used by the handler.
type DirectoryImporter interface {
	ImportFile(ctx context.Context, r io.Reader, opts services.ImportOptions) (entities.ImportResult, error)
}

// AdminHandler serves development-only maintenance endpoints and the
// sales desk lead stream.
type AdminHandler struct {
	importer    DirectoryImporter
	leads       LeadService
	development bool
	seedFile    string
	opts        services.ImportOptions
	heartbeat   time.Duration
}

// NewAdminHandler creates a new admin handler. Imports are refused unless
// development is true.
func NewAdminHandler(importer DirectoryImporter, leads LeadService, development bool, seedFile string, opts services.ImportOptions) *AdminHandler {
	return &AdminHandler{
		importer:    importer,
		leads:       leads,
		development: development,
		seedFile:    seedFile,
		opts:        opts,
		heartbeat:   sseHeartbeatInterval,
	}
}

// ImportDirectory handles POST /api/admin/directory/import. A JSON body is
// imported directly; an empty body imports the configured seed file.
func (h *AdminHandler) ImportDirectory(w http.ResponseWriter, r *http.Request) {
	if !h.development {
		respondWithError(w, http.StatusForbidden, "Endpoint solo disponible en desarrollo")
		return
	}

	var source io.Reader = r.Body
	if r.ContentLength == 0 {
		f, err := os.Open(h.seedFile)
		if err != nil {
			observability.LoggerFromContext(r.Context()).Error().Err(err).Str("file", h.seedFile).Msg("failed to open seed file")
			respondWithError(w, http.StatusInternalServerError, "seed file not available")
			return
		}
		defer f.Close()
		source = f
	}

	result, err := h.importer.ImportFile(r.Context(), source, h.opts)
	if err != nil {
		respondWithAppError(w, r, err, "directory import failed")
		return
	}

	var errs interface{}
	if len(result.Errors) > 0 {
		errs = result.Errors
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"total_processed": result.TotalProcessed,
		"inserted":        result.Inserted,
		"errors":          errs,
	})
}

// StreamLeads handles GET /api/admin/leads/stream
func (h *AdminHandler) StreamLeads(w http.ResponseWriter, r *http.Request) {
	if !h.development {
		respondWithError(w, http.StatusForbidden, "Endpoint solo disponible en desarrollo")
		return
	}

	events, err := h.leads.Subscribe(r.Context())
	if err != nil {
		respondWithAppError(w, r, err, "lead stream unavailable")
		return
	}

	flusher, ok := startSSE(w)
	if !ok {
		return
	}
	_ = sendEvent(w, "connected", map[string]interface{}{"timestamp": time.Now()})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()}); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := sendEvent(w, "lead", event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
