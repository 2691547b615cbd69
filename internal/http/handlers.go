package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady reports 503 while the store cannot be read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status, httpStatus := "ready", http.StatusOK

	if s.readyCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.readyCheck(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	counters := []struct {
		name, help, kind string
		value            int64
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", atomic.LoadInt64(&s.appMetrics.totalRequests)},
		{"transactions_created_total", "Total number of transactions recorded", "counter", atomic.LoadInt64(&s.appMetrics.transactionsCreated)},
		{"rate_limit_hits_total", "Total rate limit hits", "counter", atomic.LoadInt64(&s.security.rateLimitHits)},
		{"suspicious_requests_total", "Total suspicious requests detected", "counter", atomic.LoadInt64(&s.security.suspiciousRequests)},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", int64(s.limiter.activeClients())},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.appMetrics.uptime).Seconds())},
	}
	for _, c := range counters {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %d\n\n", c.name, c.help, c.name, c.kind, c.name, c.value)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newIndexView(s.dashboard.Index(r.Context())))
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	d := s.dashboard.Data(r.Context(), parseYear(r.URL.Query()))
	writeJSON(w, http.StatusOK, newDataView(d))
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	metric := r.PathValue("metric")
	report, err := s.dashboard.Details(r.Context(), metric, parseYear(r.URL.Query()))
	if errors.Is(err, core.ErrUnknownMetric) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Details failed",
			log.FieldMetric, metric, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, newDetailsView(report))
}

// handleAdd records a submission sent as JSON or as a form.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		logger.WarnContext(ctx, "Invalid request body", log.FieldOperation, log.OpParse, log.FieldError, err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.submitter.Submit(ctx, parser.Submission())
	if err != nil {
		var ve *core.ValidationError
		switch {
		case errors.As(err, &ve):
			logger.InfoContext(ctx, "Submission rejected", log.FieldOperation, log.OpValidate, log.FieldError, ve.Reason)
			writeError(w, http.StatusBadRequest, ve.Reason)
		case core.IsStorage(err):
			logger.ErrorContext(ctx, "Failed to save transaction", log.FieldOperation, log.OpAppend, log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to save transaction")
		default:
			logger.ErrorContext(ctx, "Submission failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	atomic.AddInt64(&s.appMetrics.transactionsCreated, 1)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Transaction added successfully",
		"id":      tx.ID,
	})
}
