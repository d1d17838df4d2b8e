package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tangerineshop/shop-server/internal/config"
	"github.com/tangerineshop/shop-server/orders"
	"github.com/tangerineshop/shop-server/server"
	"github.com/tangerineshop/shop-server/session"
	"github.com/tangerineshop/shop-server/session/redisstore"
	"github.com/tangerineshop/shop-server/session/repofake"
	"github.com/tangerineshop/shop-server/storage/sqlite"
	"github.com/tangerineshop/shop-server/token"
)

// staleOrderInterval is how often PROCESSING orders are swept; orders older
// than staleOrderMaxAge are flipped to COMPLETE.
const (
	staleOrderInterval = 10 * time.Minute
	staleOrderMaxAge   = time.Hour
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())

	db, err := sqlite.Open(filepath.Join(c.GetDataFolder(), "shop.db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserStore(db)
	catalogRepo := sqlite.NewCatalogStore(db)
	orderRepo := sqlite.NewOrderStore(db)

	sessionRepo, err := newSessionRepo(c)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	codec := token.NewCodec(c.GetJWTSecret())
	sessions, err := session.NewManager(sessionRepo, userRepo, codec,
		session.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()))
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	orderService, err := orders.NewService(orderRepo, userRepo, catalogRepo)
	if err != nil {
		return fmt.Errorf("create order service: %w", err)
	}

	kakao, err := newKakaoAuthenticator(c)
	if err != nil {
		return fmt.Errorf("configure social login: %w", err)
	}

	handler, err := server.New(c, server.Deps{
		Codec:    codec,
		Sessions: sessions,
		Users:    userRepo,
		Catalog:  catalogRepo,
		Orders:   orderService,
		Kakao:    kakao,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweepStaleOrders(sweeperCtx, orderService)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func configureLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// newSessionRepo picks Redis when an address is configured, otherwise an
// in-memory store. In-memory sessions do not survive a restart.
func newSessionRepo(c config.Config) (session.Repo, error) {
	addr := c.GetRedisAddr()
	if addr == "" {
		log.Warn().Msg("REDIS_ADDR not set, using in-memory session store")
		return repofake.NewFakeSessionRepo(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisstore.DefaultDialTimeout)
	defer cancel()
	return redisstore.New(ctx, redisstore.Config{
		Addr:     addr,
		Password: c.GetRedisPassword(),
	})
}

// newKakaoAuthenticator returns nil when no client ID is configured, which
// simply leaves the social login routes off.
func newKakaoAuthenticator(c config.Config) (*server.KakaoAuthenticator, error) {
	if c.GetKakaoClientID() == "" {
		log.Warn().Msg("KAKAO_CLIENT_ID not set, social login disabled")
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.NewKakaoAuthenticator(ctx, c)
}

func sweepStaleOrders(ctx context.Context, orderService *orders.Service) {
	ticker := time.NewTicker(staleOrderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			completed, err := orderService.CompleteStale(ctx, staleOrderMaxAge)
			if err != nil {
				log.Error().Err(err).Msg("stale order sweep failed")
				continue
			}
			if completed > 0 {
				log.Info().Int("completed", completed).Msg("completed stale orders")
			}
		}
	}
}

func listenAndServe(httpServer *http.Server) error {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
