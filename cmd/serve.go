package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"pdfshrink/internal/infrastructure/logging"
	"pdfshrink/internal/interface/api"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API сжатия",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddress != "" {
			appConfig.Server.Address = serveAddress
		}

		logger := newLogger(appConfig, os.Stderr)
		defer logger.Close()

		if logging.ParseLevel(appConfig.Output.LogLevel) > logging.ParseLevel("debug") {
			gin.SetMode(gin.ReleaseMode)
		}

		app, err := newApplication(appConfig, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		handler := api.NewHandler(app.percentage, app.limit, app.configRepo,
			appConfig.Search, appConfig.Server.MaxUploadMB, logger)

		srv, err := api.NewServer(appConfig.Server, api.NewRouter(handler))
		if err != nil {
			return err
		}
		return api.Run(cmd.Context(), srv, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "addr", "", "Адрес сервера (по умолчанию из конфигурации)")
	rootCmd.AddCommand(serveCmd)
}
