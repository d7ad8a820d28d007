package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/config"
	"github.com/ignatzorin/hebammen-backend/internal/db"
	"github.com/ignatzorin/hebammen-backend/internal/domain/event"
	"github.com/ignatzorin/hebammen-backend/internal/domain/repository"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/goroutine"
	httpRouter "github.com/ignatzorin/hebammen-backend/internal/http/router"
	"github.com/ignatzorin/hebammen-backend/internal/infrastructure/mq"
	"github.com/ignatzorin/hebammen-backend/internal/infrastructure/payment"
	"github.com/ignatzorin/hebammen-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/handler"
	"github.com/ignatzorin/hebammen-backend/internal/logger"
	legacyRepo "github.com/ignatzorin/hebammen-backend/internal/repository"
	"github.com/ignatzorin/hebammen-backend/internal/service"
	"github.com/ignatzorin/hebammen-backend/internal/storage"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/admin"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/billing"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/booking"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/dispute"
	"github.com/ignatzorin/hebammen-backend/internal/usecase/profile"
	"github.com/ignatzorin/hebammen-backend/internal/ws"
)

func main() {
	// Контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
	log := logger.Get()

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	bookingRepo := persistence.NewBookingRepositoryAdapter(dbConn)
	profileRepo := persistence.NewProfileRepositoryAdapter(dbConn)
	availabilityRepo := persistence.NewAvailabilityRepositoryAdapter(dbConn)
	disputeRepo := persistence.NewDisputeRepositoryAdapter(dbConn)
	subscriptionRepo := persistence.NewSubscriptionRepositoryAdapter(dbConn)
	invoiceRepo := persistence.NewInvoiceRepositoryAdapter(dbConn)
	paymentRepo := persistence.NewPaymentRepositoryAdapter(dbConn)
	webhookEventRepo := persistence.NewWebhookEventRepositoryAdapter(dbConn)
	userRepo := legacyRepo.NewUserRepository(dbConn)
	mediaRepo := legacyRepo.NewMediaRepository(dbConn)
	notificationRepo := legacyRepo.NewNotificationRepository(dbConn)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(userRepo, profileRepo, tokenManager, profile.NewCalendarToken)
	notificationService := service.NewNotificationService(notificationRepo)
	searchCache := service.NewCacheService()
	defer searchCache.Close()

	// Публикация событий: вебсокеты всегда, RabbitMQ при наличии RABBITMQ_URL.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	publishers := event.Multi{ws.NewBookingEventPublisher(hub, notificationService)}
	if cfg.RabbitMQURL != "" {
		mqPublisher, err := mq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.WithField("error", err.Error()).Warn("main: RabbitMQ недоступен, события публикуются только в вебсокеты")
		} else {
			defer func() {
				if err := mqPublisher.Close(); err != nil {
					log.WithField("error", err.Error()).Warn("main: ошибка закрытия RabbitMQ")
				}
			}()
			publishers = append(publishers, mqPublisher)
		}
	}

	var gateway repository.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Warn("main: STRIPE_SECRET_KEY не задан, оплата и подписки недоступны")
	}

	fee := valueobject.MoneyFromCents(cfg.BookingFeeCents, cfg.BookingCurrency)

	// Бронирования.
	createBookingUC := booking.NewCreateBookingUseCase(bookingRepo, profileRepo, publishers, fee)
	markPaidUC := booking.NewMarkPaidUseCase(bookingRepo, paymentRepo, publishers)
	boostUC := booking.NewBoostStaleRequestsUseCase(bookingRepo)

	// Биллинг.
	setPlanUC := billing.NewSetPlanUseCase(profileRepo)
	processWebhookUC := billing.NewProcessWebhookUseCase(
		webhookEventRepo, markPaidUC, createBookingUC, setPlanUC, profileRepo, subscriptionRepo, invoiceRepo,
	)

	h := httpRouter.Handlers{
		Auth: handler.NewAuthHandler(authService),
		Booking: handler.NewBookingHandler(
			createBookingUC,
			booking.NewUpdateBookingStatusUseCase(bookingRepo, publishers),
			booking.NewGetBookingUseCase(bookingRepo),
			booking.NewListBookingsUseCase(bookingRepo),
			booking.NewGetStatsUseCase(bookingRepo),
			booking.NewGetContactUseCase(bookingRepo, profileRepo),
			booking.NewCreateCheckoutUseCase(bookingRepo, gateway, cfg.AppBaseURL),
		),
		Dispute: handler.NewDisputeHandler(
			dispute.NewOpenDisputeUseCase(disputeRepo, bookingRepo),
			dispute.NewListMyDisputesUseCase(disputeRepo),
			dispute.NewListDisputesUseCase(disputeRepo),
			dispute.NewResolveDisputeUseCase(disputeRepo),
		),
		Profile: handler.NewProfileHandler(
			profile.NewGetProfileUseCase(profileRepo),
			profile.NewUpdateProfileUseCase(profileRepo, searchCache),
			profile.NewGetCompletionUseCase(profileRepo),
			profile.NewUploadPhotoUseCase(profileRepo, photoStorage),
			profile.NewRotateCalendarTokenUseCase(profileRepo),
			mediaRepo,
			cfg.MaxUploadSizeMB,
			cfg.PublicAPIURL,
		),
		Midwife: handler.NewMidwifeHandler(
			profile.NewSearchMidwivesUseCase(profileRepo, searchCache),
			profile.NewGetMidwifeUseCase(profileRepo),
			profile.NewSetVerificationUseCase(profileRepo, searchCache),
		),
		Availability: handler.NewAvailabilityHandler(
			profile.NewAddAvailabilityUseCase(availabilityRepo),
			profile.NewListAvailabilityUseCase(availabilityRepo),
			profile.NewDeleteAvailabilityUseCase(availabilityRepo),
		),
		Billing: handler.NewBillingHandler(
			billing.NewStartSubscriptionUseCase(profileRepo, gateway, cfg.StripePriceMonth, cfg.StripePriceYear, cfg.AppBaseURL),
			billing.NewOpenPortalUseCase(profileRepo, gateway, cfg.AppBaseURL),
			billing.NewGetSubscriptionUseCase(subscriptionRepo),
			setPlanUC,
		),
		Webhook:      handler.NewWebhookHandler(processWebhookUC, cfg.StripeWebhookSecret, cfg.StripeWebhookTolerance),
		Calendar:     handler.NewCalendarHandler(booking.NewCalendarFeedUseCase(profileRepo, bookingRepo, cfg.CalendarName)),
		Notification: handler.NewNotificationHandler(notificationService),
		Admin:        handler.NewAdminHandler(admin.NewGetOverviewUseCase(bookingRepo, paymentRepo, cfg.BookingCurrency)),
		WS:           handler.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
		Health:       handler.NewHealthHandler(dbConn),
	}

	// Поднятие заявок без ответа у PRO-акушерок.
	goroutine.Every(ctx, cfg.BoosterInterval, func(ctx context.Context) {
		boosted, err := boostUC.Execute(ctx, time.Now().UTC())
		if err != nil {
			log.WithField("error", err.Error()).Error("booster: не удалось поднять заявки")
			return
		}
		if boosted > 0 {
			log.WithField("count", boosted).Info("booster: заявки подняты")
		}
	})

	engine := httpRouter.SetupRouter(cfg, h, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Get().Errorf("main: ошибка закрытия базы: %v", err)
	}
}
