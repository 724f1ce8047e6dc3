package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/salon-booking/internal/config"
	"github.com/iliyamo/salon-booking/internal/database"
	"github.com/iliyamo/salon-booking/internal/handler"
	"github.com/iliyamo/salon-booking/internal/logger"
	"github.com/iliyamo/salon-booking/internal/middleware"
	"github.com/iliyamo/salon-booking/internal/obs"
	"github.com/iliyamo/salon-booking/internal/queue"
	"github.com/iliyamo/salon-booking/internal/repository"
	"github.com/iliyamo/salon-booking/internal/router"
	"github.com/iliyamo/salon-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	eng, err := config.LoadEngine()
	if err != nil {
		log.Fatalf("engine config: %v", err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if eng.OTelEnabled {
		shutdown, err := obs.InitTracer(ctx, eng.OTelEndpoint, eng.OTelServiceName, cfg.Env)
		if err != nil {
			lg.Warn("tracing disabled", zap.Error(err))
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					lg.Warn("tracer shutdown", zap.Error(err))
				}
			}()
		}
	}

	db, err := database.Open(cfg.Database())
	if err != nil {
		lg.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if eng.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			lg.Fatal("migrate", zap.Error(err))
		}
		lg.Info("schema migrated")
	}

	// ---- Repositories ----
	timeout := eng.DBQueryTimeout
	professionals := repository.NewProfessionalRepo(db, timeout)
	services := repository.NewServiceRepo(db, timeout)
	clients := repository.NewClientRepo(db, timeout)
	policies := repository.NewPolicyRepo(db, timeout)
	businessHours := repository.NewBusinessHoursRepo(db, timeout)
	professionalHours := repository.NewProfessionalHoursRepo(db, timeout)
	bookings := repository.NewBookingRepo(db, timeout)

	// ---- Events ----
	var events service.EventPublisher
	if eng.QueueEnabled {
		pub := queue.NewPublisher(eng.QueueURL, eng.QueueExchange, lg.Named("publisher"))
		defer pub.Close()
		events = pub
		go func() {
			err := queue.StartBookingConsumer(ctx, queue.ConsumerConfig{
				URL:      eng.QueueURL,
				Exchange: eng.QueueExchange,
				Queue:    eng.QueueAuditQ,
				LogPath:  eng.QueueAuditLog,
			}, lg.Named("consumer"))
			if err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	// ---- Services ----
	cal := service.Calendar{Location: eng.Location()}
	calc := service.NewAvailabilityCalculator(professionals, businessHours, professionalHours, services, policies, bookings, cal, lg.Named("availability"))
	writer := service.NewBookingWriter(professionals, businessHours, professionalHours, services, policies, bookings, clients, events, cal, lg.Named("bookings"))
	schedules := service.NewScheduleAdmin(businessHours, professionalHours, professionals, eng.ScheduleMinMinutes, lg.Named("schedules"))
	policyAdmin := service.NewPolicyAdmin(policies)

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID(), middleware.RequestLogger(lg.Named("http")))

	rdb := config.NewRedisClient(lg)
	if rdb != nil {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg.Named("ratelimit"))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, lg.Named("cache"))

	availH := handler.NewAvailabilityHandler(calc, lg)
	bookingH := handler.NewBookingHandler(writer, lg)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, availH, limiter, cache)
	router.RegisterCustomer(e, availH, bookingH, cfg.JWTSecret, limiter)
	router.RegisterStaffBookings(e, availH, bookingH, cfg.JWTSecret)
	router.RegisterStaff(e, handler.NewScheduleHandler(schedules, lg), handler.NewPolicyHandler(policyAdmin, lg), cfg.JWTSecret)
	if cfg.DevTokenTTLMin > 0 && !logger.IsProduction(cfg.Env) {
		router.RegisterDev(e, handler.NewAuthHandler(cfg.JWTSecret, cfg.DevTokenTTLMin))
		lg.Warn("development token endpoint enabled")
	}

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("timezone", eng.Timezone))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
	lg.Info("stopped")
}
