package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/dto"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/application/usecase"
	"github.com/ingatatech/loan-management-system-backend-sub003/internal/domain/port"
)

// ServicingHandler exposes the synchronous servicing operations over HTTP so
// the loan origination and payment systems can call them.
type ServicingHandler struct {
	generate *usecase.GenerateScheduleUseCase
	payment  *usecase.ApplyPaymentUseCase
	recalc   *usecase.RecalculateScheduleUseCase
	classify *usecase.ClassifyLoanUseCase
	logger   *slog.Logger
}

// NewServicingHandler creates the servicing HTTP handler.
func NewServicingHandler(
	generate *usecase.GenerateScheduleUseCase,
	payment *usecase.ApplyPaymentUseCase,
	recalc *usecase.RecalculateScheduleUseCase,
	classify *usecase.ClassifyLoanUseCase,
	logger *slog.Logger,
) *ServicingHandler {
	return &ServicingHandler{
		generate: generate,
		payment:  payment,
		recalc:   recalc,
		classify: classify,
		logger:   logger,
	}
}

// RegisterRoutes attaches the servicing routes to the given mux.
func (h *ServicingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/loans/{loanID}/schedule", h.generateSchedule)
	mux.HandleFunc("POST /v1/loans/{loanID}/payments", h.applyPayment)
	mux.HandleFunc("POST /v1/loans/{loanID}/recalculate", h.recalculate)
	mux.HandleFunc("GET /v1/loans/{loanID}/classification", h.classification)
}

func (h *ServicingHandler) generateSchedule(w http.ResponseWriter, r *http.Request) {
	resp, err := h.generate.Execute(r.Context(), dto.GenerateScheduleRequest{
		LoanID: r.PathValue("loanID"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ServicingHandler) applyPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.LoanID = r.PathValue("loanID")

	resp, err := h.payment.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ServicingHandler) recalculate(w http.ResponseWriter, r *http.Request) {
	var req dto.RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.LoanID = r.PathValue("loanID")

	resp, err := h.recalc.Execute(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ServicingHandler) classification(w http.ResponseWriter, r *http.Request) {
	resp, err := h.classify.Execute(r.Context(), dto.ClassifyRequest{
		LoanID: r.PathValue("loanID"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ServicingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, port.ErrLoanNotFound), errors.Is(err, port.ErrInstallmentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, port.ErrVersionConflict):
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		h.logger.WarnContext(r.Context(), "request rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
