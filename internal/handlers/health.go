package handlers

import (
	"context"
	"net/http"
	"time"

	"blogapi/internal/logger"
	"blogapi/internal/utils/helpers"

	"go.uber.org/zap"
)

// Pinger — всё, что нужно проверке здоровья от базы.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

type healthStatus struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// Health
// @Summary      Проверка здоровья
// @Tags         health
// @Produce      json
// @Success      200 {object} helpers.Response{data=handlers.healthStatus}
// @Failure      503 {object} helpers.Response
// @Router       /api/health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.WithCtx(r.Context()).Error("health: база недоступна", zap.Error(err))
		helpers.Error(w, http.StatusServiceUnavailable, "Database connection failed")
		return
	}
	helpers.JSON(w, http.StatusOK, healthStatus{
		Status:    "OK",
		Database:  "connected",
		Timestamp: time.Now().UTC(),
	})
}
