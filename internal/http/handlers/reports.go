package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"savora-admin-service/internal/reporting"
	"savora-admin-service/pkg/response"
)

func (h *Handler) ReportsAggregates(w http.ResponseWriter, r *http.Request) {
	agg, err := h.Reports.Aggregates()
	if err != nil {
		writeReportsError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    agg,
		"filter":  h.Reports.Filter(),
	})
}

func (h *Handler) ReportsSummary(w http.ResponseWriter, r *http.Request) {
	counters, err := reporting.ComputeSummary(r.Context(), h.Store, time.Now())
	if err != nil {
		h.Logger.Error("summary counters failed", zapError(err))
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNREACHABLE", "Could not compute summary counters")
		return
	}
	response.Success(w, counters)
}

type restaurantFilterRequest struct {
	Restaurant string `json:"restaurant"`
}

func (h *Handler) ReportsSetRestaurantFilter(w http.ResponseWriter, r *http.Request) {
	var req restaurantFilterRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	h.Reports.SetRestaurantFilter(req.Restaurant)
	response.Success(w, h.Reports.Filter())
}

type dateRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h *Handler) ReportsStageDateRange(w http.ResponseWriter, r *http.Request) {
	var req dateRangeRequest
	if err := decodeBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	start, err := parseDateParam(req.Start)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid start date")
		return
	}
	end, err := parseDateParam(req.End)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid end date")
		return
	}
	if err := h.Reports.StageDateRange(start, end); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	response.Success(w, map[string]any{"staged": true})
}

func (h *Handler) ReportsCommitDateRange(w http.ResponseWriter, r *http.Request) {
	h.Reports.CommitDateRange()
	response.Success(w, h.Reports.Filter())
}

func (h *Handler) ReportsRefreshFavorites(w http.ResponseWriter, r *http.Request) {
	if err := h.Reports.RefreshFavorites(r.Context()); err != nil {
		h.Logger.Error("favorites refresh failed", zapError(err))
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNREACHABLE", "Could not refresh favorites")
		return
	}
	response.Success(w, map[string]any{"refreshed": true})
}

func (h *Handler) ReportsExportPDF(w http.ResponseWriter, r *http.Request) {
	agg, err := h.Reports.Aggregates()
	if err != nil {
		writeReportsError(w, err)
		return
	}

	counters, err := reporting.ComputeSummary(r.Context(), h.Store, time.Now())
	if err != nil {
		h.Logger.Error("summary counters failed", zapError(err))
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNREACHABLE", "Could not compute summary counters")
		return
	}

	buf, err := reporting.RenderReportPDF(agg, counters, h.Reports.Filter(), time.Now())
	if err != nil {
		h.Logger.Error("report pdf failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not render report")
		return
	}

	filename := fmt.Sprintf("report-%s.pdf", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeReportsError(w http.ResponseWriter, err error) {
	var connErr *reporting.ConnectivityError
	switch {
	case errors.Is(err, reporting.ErrNotReady):
		response.Error(w, http.StatusServiceUnavailable, "NOT_READY", "Aggregates are still loading")
	case errors.As(err, &connErr):
		response.Error(w, http.StatusServiceUnavailable, "STORE_UNREACHABLE", "The data store is unreachable")
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load aggregates")
	}
}
