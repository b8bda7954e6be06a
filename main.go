package main

import (
	"chatrouter/app/api"
	"chatrouter/app/client/newsapi"
	"chatrouter/app/client/weatherapi"
	"chatrouter/app/config"
	"chatrouter/app/mcpserver"
	"chatrouter/app/service/analyzer"
	"chatrouter/app/service/completion"
	"chatrouter/app/service/conversation"
	"chatrouter/app/service/general"
	"chatrouter/app/service/intent"
	"chatrouter/app/service/memory"
	"chatrouter/app/service/news"
	"chatrouter/app/service/weather"
	"chatrouter/app/util/mylog"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, memory.New)
	do.Provide(di, completion.New)
	do.Provide(di, weatherapi.NewClient)
	do.Provide(di, newsapi.NewClient)
	do.Provide(di, intent.New)
	do.Provide(di, analyzer.New)
	do.Provide(di, weather.New)
	do.Provide(di, news.New)
	do.Provide(di, general.New)
	do.Provide(di, conversation.New)
	do.Provide(di, api.New)
	do.Provide(di, mcpserver.New)

	slog.Info("Service started", slog.String("mode", cfg.Server.Mode))

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	switch cfg.Server.Mode {
	case "mcp":
		err = do.MustInvoke[*mcpserver.Server](di).Run(appCtx)
	default:
		err = do.MustInvoke[*api.Server](di).Run(appCtx)
	}
	if err != nil {
		slog.Error("Server stopped", slog.Any("error", err))
	}
}
