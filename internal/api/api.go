package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/restoboard/restoboard/internal/api/controller"
	"github.com/restoboard/restoboard/internal/pkg/logger"
	"github.com/spf13/viper"

	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/service/mapping"
	"github.com/restoboard/restoboard/internal/service/report"
	"github.com/restoboard/restoboard/internal/service/threshold"
)

type APIService struct {
	router *echo.Echo
}

func (svc *APIService) Serve(addr string) {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func NewAPIService(
	mappingService *mapping.Service,
	reportService *report.Service,
	thresholdService *threshold.Service,
) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.Use(middleware.Logger())
	svc.router.Use(RequestIDMiddleware)
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: viper.GetStringSlice(constants.ViperAllowedOrigins),
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{"Content-Type", "Authorization", constants.HeaderUserKey},
	}))

	api := svc.router.Group("/api/v1", UserKeyMiddleware)
	cntrl := controller.NewController(mappingService, reportService, thresholdService)

	groups := api.Group("/groups")
	groups.POST("", cntrl.CreateGroup)
	groups.GET("", cntrl.ListGroups)
	groups.POST("/duplicates", cntrl.DetectDuplicates)
	groups.POST("/merge", cntrl.MergeGroups)
	groups.POST("/:id/platforms", cntrl.AssignPlatformID)
	groups.DELETE("/:id", cntrl.DeleteGroup)

	reports := api.Group("/reports")
	reports.POST("/consolidated", cntrl.ConsolidatedReport)

	thresholds := api.Group("/thresholds")
	thresholds.GET("", cntrl.GetThresholds)
	thresholds.PUT("", cntrl.UpdateThresholds)

	return svc, nil
}
