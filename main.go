package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/DedS3t/monopoly-engine/app/controllers"
	"github.com/DedS3t/monopoly-engine/pkg/routes"
	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/DedS3t/monopoly-engine/platform/cache"
	"github.com/DedS3t/monopoly-engine/platform/config"
	"github.com/DedS3t/monopoly-engine/platform/database"
	"github.com/DedS3t/monopoly-engine/platform/logging"
	"github.com/DedS3t/monopoly-engine/platform/queries"
	socket "github.com/DedS3t/monopoly-engine/platform/sockets"
	"github.com/DedS3t/monopoly-engine/platform/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := database.PostgreSQLConnection(cfg)
	defer db.Close()
	if err := database.CreateSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("preparing postgres")
	}
	lobby := queries.NewPostgres(db)

	snapshots, closeStore, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("opening game store")
	}
	defer closeStore()

	b, err := board.New()
	if err != nil {
		log.WithError(err).Fatal("loading board")
	}

	sock, err := socket.NewServer(lobby, cfg.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("creating socket server")
	}
	svc := queries.NewGameService(snapshots, lobby, sock, b, cfg.Game.Settings())
	sock.Handle(svc)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowCredentials: true,
	}))
	auth := controllers.NewAuthController(lobby, cfg.JWTSecret)
	games := controllers.NewGameController(lobby, svc)
	routes.AuthRoutes(app, auth)
	routes.GameRoutes(app, games)
	routes.PrivateRoutes(app, cfg.JWTSecret, auth, games)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sock.ListenAndServe(ctx, cfg.SocketAddr, cfg.AllowedOrigins)
	})
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		return app.Listen(cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-ctx.Done()
		return app.Shutdown()
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// openStore picks the snapshot store named by STORE_DRIVER.
func openStore(cfg config.Config) (store.Store, func() error, error) {
	if cfg.StoreDriver == config.DriverSQLite {
		s, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	pool := cache.CreateRedisPool(cfg.RedisURL)
	return cache.NewStore(pool), pool.Close, nil
}
