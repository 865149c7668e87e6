package bootstrap

import (
	"context"
	"log"

	"clipboard-api-be/internal/config"
	"clipboard-api-be/internal/controller"
	"clipboard-api-be/internal/pkg/logger"
	"clipboard-api-be/internal/pkg/mailer"
	"clipboard-api-be/internal/repository/memory"
	"clipboard-api-be/internal/repository/unitofwork"
	"clipboard-api-be/internal/service"
	"clipboard-api-be/internal/websocket"

	pktNats "clipboard-api-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const eventTopic = "CLIPBOARD_EVENTS"

type Container struct {
	// Controllers
	ClipboardController controller.IClipboardController
	AuthController      controller.IAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	CleanupService  service.ICleanupService

	// WebSockets
	FeedHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (optional mirror of the event stream)
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// Redis (feed fanout across instances)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Feed Hub
	feedLogger := logger.NewIsolatedLogger("logs/feed.log")
	feedHub := websocket.NewHub(rdb, feedLogger)
	go feedHub.Run()

	// In-memory OAuth stores
	loginStates := memory.NewLoginStateRepository(cfg.OAuth.LoginStateTTL)
	userInfoCache := memory.NewUserInfoCache(cfg.OAuth.UserInfoCacheTTL)

	// 3. Services
	publisherService := service.NewPublisherService(eventTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		eventTopic,
		uowFactory,
		feedHub,
		natsPub,
	)

	authService := service.NewAuthService(
		uowFactory,
		cfg.OAuth,
		loginStates,
		userInfoCache,
		publisherService,
	)
	clipboardService := service.NewClipboardService(
		uowFactory,
		publisherService,
		emailService,
		cfg.App.ClientURL,
	)
	cleanupService := service.NewCleanupService(clipboardService, cfg.Cleanup.Schedule, sysLogger)

	// 4. Controllers
	return &Container{
		ClipboardController: controller.NewClipboardController(clipboardService, authService, feedHub, feedLogger),
		AuthController:      controller.NewAuthController(authService),

		ConsumerService: consumerService,
		CleanupService:  cleanupService,

		FeedHub: feedHub,
	}
}
