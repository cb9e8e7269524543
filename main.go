package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"statbench/internal"
	"statbench/internal/api"
	"statbench/internal/config"
	"statbench/internal/container"
)

func main() {
	logger := internal.DefaultLogger

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration: %v", err)
		os.Exit(1)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx := context.Background()
	appContainer, err := container.New(appConfig)
	if err != nil {
		logger.Error("failed to create application container: %v", err)
		os.Exit(1)
	}
	if err := appContainer.Init(ctx); err != nil {
		logger.Error("failed to initialize container: %v", err)
		os.Exit(1)
	}
	defer appContainer.Shutdown(ctx)

	if appConfig.Profiling.Enabled {
		go func() {
			logger.Info("pprof listening on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				logger.Warn("pprof server failed: %v", err)
			}
		}()
	}

	server := api.NewServer(appContainer.Workbench, appConfig.Server.MaxUploadBytes)
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		logger.Error("server stopped: %v", err)
		os.Exit(1)
	}
}
