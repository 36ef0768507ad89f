package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/fileproxy/app"
	"github.com/kbukum/fileproxy/config"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/server/lambda"
)

func main() {
	var cfg app.Config
	if err := config.LoadConfig(app.ServiceName, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.ApplyDefaults()
	logger.Init(&cfg.Logging)
	log := logger.GetGlobalLogger()

	h, err := app.NewHandler(context.Background(), &cfg, log)
	if err != nil {
		log.Error("startup failed", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
	lambda.Start(h, log)
}
