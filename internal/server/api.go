// ABOUTME: HTTP API handlers serving the dashboard client
// ABOUTME: Provides GET /api/dashboard-data plus health endpoints

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2389/sensorwatch/internal/metrics"
)

// anomalyListLimit caps the anomalies returned to the dashboard.
const anomalyListLimit = 100

// StatsResponse is the aggregate counts section of the dashboard payload.
// Valid + invalid + unprocessed always equals total.
type StatsResponse struct {
	Total       int `json:"total"`
	Valid       int `json:"valid"`
	Invalid     int `json:"invalid"`
	Unprocessed int `json:"unprocessed"`
}

// AnomalyResponse is one flagged reading in the dashboard payload.
type AnomalyResponse struct {
	ID          int64   `json:"id"`
	Timestamp   string  `json:"timestamp"`
	SensorValue float64 `json:"sensor_value"`
}

// DashboardDataResponse is the JSON response for GET /api/dashboard-data.
type DashboardDataResponse struct {
	Stats     StatsResponse     `json:"stats"`
	Anomalies []AnomalyResponse `json:"anomalies"`
}

// handleDashboardData handles GET /api/dashboard-data requests.
// It returns aggregate counts over a consistent snapshot and the most recent
// flagged anomalies, newest first. Store failures surface as a structured
// error payload, never as a partial response.
func (s *Server) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.store.AggregateStats(ctx)
	if err != nil {
		s.logger.Error("failed to aggregate stats", "error", err)
		metrics.DashboardRequests.WithLabelValues("error").Inc()
		s.sendJSONError(w, http.StatusInternalServerError, "failed to read aggregate stats")
		return
	}

	invalid, err := s.store.LatestInvalid(ctx, anomalyListLimit)
	if err != nil {
		s.logger.Error("failed to list anomalies", "error", err)
		metrics.DashboardRequests.WithLabelValues("error").Inc()
		s.sendJSONError(w, http.StatusInternalServerError, "failed to read anomalies")
		return
	}

	anomalies := make([]AnomalyResponse, 0, len(invalid))
	for _, reading := range invalid {
		anomalies = append(anomalies, AnomalyResponse{
			ID:          reading.ID,
			Timestamp:   reading.Timestamp.UTC().Format(time.RFC3339),
			SensorValue: reading.Value,
		})
	}

	response := DashboardDataResponse{
		Stats: StatsResponse{
			Total:       stats.Total,
			Valid:       stats.Valid,
			Invalid:     stats.Invalid,
			Unprocessed: stats.Unknown,
		},
		Anomalies: anomalies,
	}

	metrics.DashboardRequests.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to encode dashboard response", "error", err)
	}
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store is reachable and seeded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.AggregateStats(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unreachable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (generation %d)", s.store.Generation())
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
