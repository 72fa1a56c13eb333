package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/restoboard/restoboard/internal/pkg/logger"
	"github.com/restoboard/restoboard/internal/service/report"
)

func (c *Controller) ConsolidatedReport(ctx echo.Context) error {
	var req report.Request
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	key := userKey(ctx)

	cfg, err := c.thresholds.Get(reqCtx, key)
	if err != nil {
		// Threshold config is advisory for a report; run without it.
		logger.Warnf(reqCtx, "report: threshold lookup failed for %s: %s", key, err.Error())
	} else {
		req.Thresholds = cfg
	}

	consolidated, err := c.reports.Consolidated(reqCtx, key, req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, consolidated)
}
