package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fsdevblog/shortlinks/internal/config"
	"github.com/fsdevblog/shortlinks/internal/controllers"
	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/logs"
	"github.com/fsdevblog/shortlinks/internal/services"
	"github.com/fsdevblog/shortlinks/internal/tlscert"
	"github.com/fsdevblog/shortlinks/internal/workers"
)

const (
	connectTimeout    = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

type App struct {
	config   config.Config
	conn     any
	Services *services.Services
	Logger   *zap.Logger
}

// NewLogger создает логгер по настройкам приложения. extra применяются до настроек из конфига.
func NewLogger(conf config.Config, extra ...func(*logs.LoggerOptions)) (*zap.Logger, error) {
	opts := append(extra,
		logs.WithLevel(conf.LogLevel),
		logs.WithFile(conf.LogFile),
		logs.WithErrorFile(conf.ErrorLogFile),
	)
	logger, err := logs.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// New подключается к хранилищу (с миграцией схемы) и собирает сервисный слой.
func New(ctx context.Context, conf config.Config, logger *zap.Logger) (*App, error) {
	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, connErr := db.NewConnectionFactory(connCtx, conf.FactoryConfig())
	if connErr != nil {
		return nil, fmt.Errorf("connect storage `%s`: %w", conf.Storage, connErr)
	}

	dbServices, servicesErr := services.Factory(conn, conf.Storage,
		services.WithLogger(logger),
		services.WithCodeLength(conf.CodeLength),
		services.WithDefaultValidity(conf.DefaultValidity()),
	)
	if servicesErr != nil {
		_ = db.Close(ctx, conn)
		return nil, fmt.Errorf("init services: %w", servicesErr)
	}

	return &App{
		config:   conf,
		conn:     conn,
		Services: dbServices,
		Logger:   logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Close закрывает подключение к хранилищу.
func (a *App) Close(ctx context.Context) error {
	if err := db.Close(ctx, a.conn); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

// Run запускает web сервер и фоновые воркеры и блокируется до сигнала остановки или ошибки сервера.
// При остановке сервер дожидается текущих запросов, а очереди переходов дописываются.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clicks := workers.NewClickDispatcher(
		a.Services.LinkService, a.config.ClickWorkers, a.config.ClickBuffer, a.Logger.Named("clicks"),
	)
	reaper := workers.NewReaper(
		a.Services.LinkService, a.config.ReapInterval, a.config.ReapGrace, a.Logger.Named("reaper"),
	)

	router := controllers.SetupRouter(controllers.RouterParams{
		LinkService: a.Services.LinkService,
		PingService: a.Services.PingService,
		Clicks:      clicks,
		AppConf:     a.config,
		Logger:      a.Logger,
	})
	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	reaperCtx, stopReaper := context.WithCancel(ctx)
	defer stopReaper()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reaper.Run(reaperCtx)
	}()

	if a.config.EnableHTTPS {
		if err := a.ensureCertificate(); err != nil {
			stopReaper()
			wg.Wait()
			_ = clicks.Close(context.Background())
			return err
		}
	}

	errChan := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting server",
			zap.String("address", a.config.ServerAddress),
			zap.Bool("https", a.config.EnableHTTPS),
		)
		var err error
		if a.config.EnableHTTPS {
			err = server.ListenAndServeTLS(a.config.TLSCertFile, a.config.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.Error("server error", zap.Error(serverErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("server shutdown error", zap.Error(err))
	}
	stopReaper()
	wg.Wait()

	if err := clicks.Close(shutdownCtx); err != nil {
		a.Logger.Error("click queues were not drained", zap.Error(err),
			zap.Int64("dropped", clicks.Dropped()))
	}
	a.Logger.Info("Server stopped",
		zap.Int64("droppedClicks", clicks.Dropped()),
		zap.Int64("failedClicks", clicks.Failed()),
	)
	return serverErr
}

// ensureCertificate выпускает самоподписанный сертификат для хоста из BASE_URL, если рабочего нет.
func (a *App) ensureCertificate() error {
	hosts := []string{"localhost", "127.0.0.1", "::1"}
	if u, err := url.Parse(a.config.BaseURL); err == nil && u.Hostname() != "" {
		hosts = append(hosts, u.Hostname())
	}
	written, err := tlscert.EnsurePair(a.config.TLSCertFile, a.config.TLSKeyFile, tlscert.Options{Hosts: hosts})
	if err != nil {
		return fmt.Errorf("prepare tls certificate: %w", err)
	}
	if written {
		a.Logger.Info("Self-signed certificate issued",
			zap.String("cert", a.config.TLSCertFile),
			zap.Strings("hosts", hosts),
		)
	}
	return nil
}
