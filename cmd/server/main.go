package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/viper"

	"github.com/restoboard/restoboard/internal/api"
	"github.com/restoboard/restoboard/internal/pkg/constants"
	"github.com/restoboard/restoboard/internal/pkg/insights"
	"github.com/restoboard/restoboard/internal/pkg/logger"
	"github.com/restoboard/restoboard/internal/pkg/rista"
	"github.com/restoboard/restoboard/internal/pkg/store"
	"github.com/restoboard/restoboard/internal/pkg/store/xpgx"
	"github.com/restoboard/restoboard/internal/service/mapping"
	"github.com/restoboard/restoboard/internal/service/report"
	"github.com/restoboard/restoboard/internal/service/threshold"
)

func main() {
	ctx := context.Background()

	initConfig()

	pool, err := connectPool(ctx, viper.GetString(constants.ViperDatabaseDSN))
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer pool.Close()

	st := store.NewStore(pool)
	fetchTimeout := viper.GetDuration(constants.ViperFetchTimeout)

	mappingService := mapping.NewService(st)
	thresholdService := threshold.NewService(st)
	reportService := report.NewService(
		mappingService,
		insights.NewClient(viper.GetString(constants.ViperInsightsBaseURL), fetchTimeout),
		rista.NewClient(
			viper.GetString(constants.ViperRistaBaseURL),
			viper.GetString(constants.ViperRistaAPIKey),
			viper.GetString(constants.ViperRistaSecretKey),
			fetchTimeout,
		),
		fetchTimeout,
	)

	apiService, err := api.NewAPIService(mappingService, reportService, thresholdService)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	go apiService.Serve(viper.GetString(constants.ViperListenAddr))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := apiService.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "shutdown: %s", err.Error())
	}
}

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(constants.ViperListenAddr, ":8080")
	viper.SetDefault(constants.ViperFetchTimeout, 30*time.Second)
	viper.SetDefault(constants.ViperAllowedOrigins, []string{"http://localhost:3000"})
}

func connectPool(ctx context.Context, dsn string) (xpgx.Pool, error) {
	var pool xpgx.Pool
	err := backoff.Retry(
		func() error {
			var connErr error
			pool, connErr = xpgx.Connect(ctx, dsn)
			if connErr != nil {
				logger.Warnf(ctx, "db connect: %s", connErr.Error())
			}
			return connErr
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 10),
			ctx,
		),
	)
	return pool, err
}
