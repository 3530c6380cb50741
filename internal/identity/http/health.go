package http

import (
	"net/http"
	"time"

	"github.com/driftlock/identity/internal/identity/store"
	"github.com/driftlock/identity/pkg/httpx"
	"github.com/driftlock/identity/pkg/slogx"
)

type healthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// HealthHandler reports service status plus database reachability. A
// failing database check degrades the status and flips to 503 so load
// balancers stop routing here.
func HealthHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := slogx.RequestIDFromContext(r.Context())

		status := "ok"
		database := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			status = "degraded"
			database = "error: " + err.Error()
			statusCode = http.StatusServiceUnavailable
		}

		body := struct {
			Success   bool           `json:"success"`
			Data      healthResponse `json:"data"`
			RequestID string         `json:"requestId,omitempty"`
		}{
			Success: statusCode == http.StatusOK,
			Data: healthResponse{
				Status:   status,
				Uptime:   time.Since(startTime).String(),
				Version:  version,
				Database: database,
			},
			RequestID: requestID,
		}
		httpx.WriteJSON(w, statusCode, body)
	}
}
