package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/emandor/mcq_mentor/internal/config"
	"github.com/emandor/mcq_mentor/internal/mentor"
	"github.com/emandor/mcq_mentor/internal/middleware"
	"github.com/emandor/mcq_mentor/internal/providers"
	"github.com/emandor/mcq_mentor/internal/telemetry"
	"github.com/emandor/mcq_mentor/internal/ws"
)

func main() {
	cfg := config.Load()

	tlog := telemetry.Init(telemetry.FromEnv(config.GetEnv))
	tlog.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("booting mcq_mentor")

	clients, err := providers.Build(cfg)
	if err != nil {
		log.Fatal(err)
	}
	svc := mentor.NewService(clients)
	mh, err := mentor.NewHandler(cfg, svc)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "mcq_mentor",
		DisableStartupMessage: cfg.AppEnv != "dev",
		// a page request waits on one outbound call
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.MaxTimeout() + 10*time.Second,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.Recover())
	app.Use(middleware.RequestLog())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := app.Group("/api/v1", middleware.CORS(cfg))
	api.Get("/variants", mh.ListVariants)
	api.Post("/mcq", mh.Generate)

	app.Use("/ws", middleware.WSUpgrade())
	app.Get("/ws", websocket.New(ws.Handle(svc)))

	pages := app.Group("/", middleware.SecureHeaders())
	pages.Get("/", mh.Index)
	pages.Get("/:variant", mh.Page)
	pages.Post("/:variant", mh.Submit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(":" + cfg.AppPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		tlog.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}
