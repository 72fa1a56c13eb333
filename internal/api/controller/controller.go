package controller

import (
	"github.com/labstack/echo/v4"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/service/mapping"
	"github.com/restoboard/restoboard/internal/service/report"
	"github.com/restoboard/restoboard/internal/service/threshold"
)

type Controller struct {
	mappings   *mapping.Service
	reports    *report.Service
	thresholds *threshold.Service
}

func NewController(mappings *mapping.Service, reports *report.Service, thresholds *threshold.Service) *Controller {
	return &Controller{
		mappings:   mappings,
		reports:    reports,
		thresholds: thresholds,
	}
}

func userKey(ctx echo.Context) string {
	key, _ := ctx.Get(constants.CtxKeyUserKey).(string)
	return key
}

// syncedResponse carries a mutation result plus the degraded-mode warning
// when the mapping store write failed but local state advanced.
type syncedResponse struct {
	Data        interface{} `json:"data"`
	SyncWarning string      `json:"syncWarning,omitempty"`
}
