package handlers

import (
	"strconv"
	"time"

	"github.com/AryanPatankar27/NagrikSathi/internal/database"
	"github.com/AryanPatankar27/NagrikSathi/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ingester Ingester
}

func NewHealthHandler(ingester Ingester) *HealthHandler {
	return &HealthHandler{ingester: ingester}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	store := h.ingester.StoreHealth(c.Context())
	storeStatus := map[string]string{
		"enabled": strconv.FormatBool(store.Enabled),
		"status":  store.Status,
	}
	if store.Error != "" {
		storeStatus["error"] = store.Error
	}

	return c.JSON(dto.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         dbStatus,
		AssetStore: storeStatus,
	})
}
