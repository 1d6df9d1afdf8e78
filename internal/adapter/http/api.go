package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/flight-delay-service/internal/credentials"
	"github.com/couchcryptid/flight-delay-service/internal/domain"
	"github.com/couchcryptid/flight-delay-service/internal/predictor"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type apiHandler struct {
	svc    *predictor.Service
	logger *slog.Logger
}

type riskResponse struct {
	domain.DelayReport
	Headline string `json:"headline"`
}

type validateKeyRequest struct {
	Slot     string `json:"slot" validate:"required,oneof=weather flight"`
	Provider string `json:"provider" validate:"omitempty,oneof=opensky aviationstack"`
	Key      string `json:"key" validate:"max=256"`
}

func (h *apiHandler) airports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Airports())
}

func (h *apiHandler) risk(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.CheckDelay(r.Context(), r.URL.Query().Get("airport"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, riskResponse{DelayReport: report, Headline: report.Assessment.Level.Headline()})
}

func (h *apiHandler) schedules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.Schedules(r.Context(), q.Get("airport"), q.Get("provider"), q.Get("type"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *apiHandler) validateKey(w http.ResponseWriter, r *http.Request) {
	var req validateKeyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request", Detail: err.Error()})
		return
	}

	check, err := h.svc.ValidateKey(r.Context(), credentials.Slot(req.Slot), req.Provider, req.Key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (h *apiHandler) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	reports, err := h.svc.History(r.Context(), q.Get("airport"), limit)
	if errors.Is(err, predictor.ErrHistoryDisabled) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// writeError maps a fault to its HTTP status. Upstream faults keep the
// upstream status.
func (h *apiHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.FaultKindOf(err) {
	case domain.FaultValidation:
		status = http.StatusBadRequest
	case domain.FaultConfiguration:
		status = http.StatusInternalServerError
	case domain.FaultUpstream:
		status = http.StatusBadGateway
		var ue *domain.UpstreamError
		if errors.As(err, &ue) && ue.Status >= 400 && ue.Status <= 599 {
			status = ue.Status
		}
	case domain.FaultTransport:
		status = http.StatusBadGateway
	default:
		h.logger.Error("request failed", "error", err)
		writeJSON(w, status, errorBody{Error: "Internal server error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
