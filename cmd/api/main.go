package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"todoKeeper/internal/app"
	"todoKeeper/internal/config"
	"todoKeeper/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yml", "путь к файлу конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	runErr := a.InitHTTP().Run(ctx)
	if runErr != nil {
		logger.Error("App: Сервер завершился с ошибкой", runErr)
	}
	a.Shutdown()

	if runErr != nil {
		os.Exit(1)
	}
}
