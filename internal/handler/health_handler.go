package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"storefront-auth/internal/util"
)

// Pinger : Postgres и Redis
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	deps map[string]Pinger
}

func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Health godoc
// @Summary Проверка зависимостей
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.PingContext(ctx); err != nil {
			util.LoggerFrom(r.Context()).Warn("зависимость недоступна", slog.String("dep", name), slog.Any("err", err))
			result[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}

	util.WriteJSON(w, status, result)
}
