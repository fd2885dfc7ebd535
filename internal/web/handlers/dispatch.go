package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/blockedby/dosimetria-portal/internal/dispatcher"
	"github.com/blockedby/dosimetria-portal/internal/logger"
	"github.com/blockedby/dosimetria-portal/internal/models"
	"github.com/blockedby/dosimetria-portal/internal/report"
	"github.com/blockedby/dosimetria-portal/internal/repository"
)

// maxSubmitBytes caps the public form body.
const maxSubmitBytes = 1 << 20

// MsgSubmitted is the acknowledgment shown to the submitter.
const MsgSubmitted = "Solicitud de despacho registrada correctamente"

// DispatchHandler serves the public intake endpoint and the staff views.
type DispatchHandler struct {
	intake IntakeService
	repo   DispatchesRepository
	export func(io.Writer, []*models.DispatchRequest) error
	log    *logger.Logger
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(intake IntakeService, repo DispatchesRepository) *DispatchHandler {
	return &DispatchHandler{
		intake: intake,
		repo:   repo,
		export: report.WriteDispatches,
		log:    logger.Get().Component("dispatch-api"),
	}
}

// SubmitResponse acknowledges a stored dispatch request.
type SubmitResponse struct {
	Success      bool   `json:"success"`
	ID           string `json:"id"`
	Message      string `json:"message"`
	Notification string `json:"notification"`
}

// Submit stores a public dispatch request.
// POST /api/despachos
func (h *DispatchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dispatcher.SubmitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxSubmitBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	res, err := h.intake.Submit(r.Context(), &req)
	if err != nil {
		// only storage failures reach here
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponse{
		Success:      true,
		ID:           res.ID.String(),
		Message:      MsgSubmitted,
		Notification: string(res.Notification.Status),
	})
}

// List returns dispatch requests newest first.
// GET /api/despachos?status=&limit=
func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filter := repository.DispatchFilter{
		Status: models.DispatchStatus(r.URL.Query().Get("status")),
		Limit:  limit,
	}

	dispatches, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("list dispatches")
		respondError(w, http.StatusInternalServerError, "failed to list dispatches")
		return
	}

	// Ensure we return empty array, not null
	if dispatches == nil {
		dispatches = []*models.DispatchRequest{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"despachos": dispatches,
		"total":     len(dispatches),
	})
}

// Export streams the dispatch list as a spreadsheet.
// GET /api/despachos/export.xlsx
func (h *DispatchHandler) Export(w http.ResponseWriter, r *http.Request) {
	dispatches, err := h.repo.List(r.Context(), repository.DispatchFilter{
		Status: models.DispatchStatus(r.URL.Query().Get("status")),
		Limit:  500,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("export dispatches")
		respondError(w, http.StatusInternalServerError, "failed to list dispatches")
		return
	}

	// render fully before any header goes out so a failure can still be a 500
	var buf bytes.Buffer
	if err := h.export(&buf, dispatches); err != nil {
		h.log.Error().Err(err).Msg("write dispatch export")
		respondError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	filename := "despachos-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warn().Err(err).Msg("send dispatch export")
	}
}

// Summary returns the dashboard counters.
// GET /api/dashboard/summary
func (h *DispatchHandler) Summary(w http.ResponseWriter, r *http.Request) {
	pending, err := h.repo.CountByStatus(r.Context(), models.DispatchStatusPending)
	if err != nil {
		h.log.Error().Err(err).Msg("count pending dispatches")
		respondError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"dosis_altas_pendientes": 0,
		"solicitudes_pendientes": 0,
		"despachos_pendientes":   pending,
	})
}
