package handler

import (
	"context"
	"errors"
	"net/http"

	"cosmo-agent/internal/dto"
	"cosmo-agent/internal/service"

	"github.com/labstack/echo/v4"
)

type StoreHandler struct {
	syncService service.SyncService
}

func NewStoreHandler(syncService service.SyncService) *StoreHandler {
	return &StoreHandler{
		syncService: syncService,
	}
}

func (h *StoreHandler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.syncService.Status())
}

// Sync runs a reconciliation cycle right away. The cycle outlives the request
// so a client hanging up cannot cut it short.
func (h *StoreHandler) Sync(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())

	report, err := h.syncService.RunOnce(ctx)
	if errors.Is(err, service.ErrCycleInProgress) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return c.JSON(http.StatusBadGateway, dto.SyncResponse{
			Report: report,
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, dto.SyncResponse{Report: report})
}
