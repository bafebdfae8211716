// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/respond"
)

// HealthCheck probes one dependency.
type HealthCheck struct {
	Name  string
	Check func(context context.Context) error
}

type healthHandler struct {
	checks []HealthCheck
	logger *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(logger *slog.Logger, checks ...HealthCheck) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{checks: checks, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
	})
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	results := make([]checkResult, 0, len(handler.checks))
	isSystemReady := true

	for _, check := range handler.checks {
		result := checkResult{Name: check.Name, IsOK: true}
		if err := check.Check(request.Context()); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", check.Name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	status, httpStatus := "ready", http.StatusOK
	if !isSystemReady {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: results,
	})
}
