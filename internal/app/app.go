package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/Ritahchanger/propertify-console/config"
	"github.com/Ritahchanger/propertify-console/internal/adapters/gateway"
	httpadapter "github.com/Ritahchanger/propertify-console/internal/adapters/http"
	"github.com/Ritahchanger/propertify-console/internal/adapters/http/handlers"
	guard "github.com/Ritahchanger/propertify-console/internal/adapters/http/middleware"
	natsadapter "github.com/Ritahchanger/propertify-console/internal/adapters/nats"
	"github.com/Ritahchanger/propertify-console/internal/adapters/sqlite"
	"github.com/Ritahchanger/propertify-console/internal/session"
	pkglog "github.com/Ritahchanger/propertify-console/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	logger := pkglog.New(cfg.AppEnv)

	db, err := sqlite.Open(cfg.SessionDBPath)
	if err != nil {
		return nil, err
	}
	store := sqlite.NewStore(db)

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats connect failed, session events disabled")
			nc = nil
		}
	}

	gw := gateway.NewHTTPClient(cfg.GatewayBaseURL, cfg.GatewayTimeout)
	publisher := natsadapter.NewPublisher(nc, cfg.NATSEstablishedSubject, cfg.NATSClearedSubject)
	synchronizer := session.NewSynchronizer(store, logger)
	container := session.NewContainer(gw, synchronizer, publisher, logger)

	container.Hydrate(ctx)
	if cfg.VerifyOnHydrate {
		go func() {
			_ = container.VerifyHydrated(ctx)
		}()
	}

	if nc != nil {
		snapshotHandler := natsadapter.NewSnapshotHandler(container.Snapshot)
		if err := snapshotHandler.Subscribe(nc, cfg.NATSSnapshotSubject, cfg.AppName); err != nil {
			logger.Warn().Err(err).Msg("snapshot subscription failed")
		}
	}

	handler := handlers.NewSessionHandler(container)
	sessionGuard := guard.NewSessionGuard(container.Snapshot)
	router := httpadapter.NewRouter(cfg, handler, sessionGuard)

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: logger, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
