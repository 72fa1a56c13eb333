package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/restoboard/restoboard/internal/domain"
)

func (c *Controller) GetThresholds(ctx echo.Context) error {
	cfg, err := c.thresholds.Get(ctx.Request().Context(), userKey(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, cfg)
}

type updateThresholdsRequest struct {
	DiscountThresholdPct float64 `json:"discountThresholdPct" validate:"gte=0,lte=100"`
	AdsThresholdPct      float64 `json:"adsThresholdPct" validate:"gte=0,lte=100"`
}

func (c *Controller) UpdateThresholds(ctx echo.Context) error {
	var req updateThresholdsRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	cfg, err := c.thresholds.Update(ctx.Request().Context(), userKey(ctx), &domain.ThresholdConfig{
		DiscountThresholdPct: req.DiscountThresholdPct,
		AdsThresholdPct:      req.AdsThresholdPct,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, cfg)
}
