package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/raymondpolo/brc-vendor-form/internal/config"
	"github.com/raymondpolo/brc-vendor-form/internal/handler"
	"github.com/raymondpolo/brc-vendor-form/internal/logger"
	"github.com/raymondpolo/brc-vendor-form/internal/metrics"
	"github.com/raymondpolo/brc-vendor-form/internal/model"
	"github.com/raymondpolo/brc-vendor-form/internal/notify"
	"github.com/raymondpolo/brc-vendor-form/internal/reminder"
	"github.com/raymondpolo/brc-vendor-form/internal/router"
	"github.com/raymondpolo/brc-vendor-form/internal/service"
	"github.com/raymondpolo/brc-vendor-form/internal/sse"
)

func main() {
	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(cfg.Server.Mode, cfg.Log.Level)
	defer logger.Sync()

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Property{},
		&model.Vendor{},
		&model.RequestType{},
		&model.WorkOrder{},
		&model.Quote{},
		&model.Attachment{},
		&model.Note{},
		&model.Notification{},
		&model.AuditLog{},
		&model.PushSubscription{},
	); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Core components
	sseHub := sse.NewHub(rdb)
	if cfg.Metrics.Enabled {
		metrics.Init(cfg.Metrics.Namespace)
	}

	// Notifier: delivery jobs go through the Redis queue when mail or
	// push is turned on, otherwise only in-app notifications are kept.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.Mail.Enabled || cfg.Push.Enabled {
		queue := notify.NewQueue(rdb, cfg.Mail.QueueName)

		var mailer notify.Mailer = notify.LogMailer{}
		if cfg.Mail.Enabled {
			mailer = notify.NewSMTPMailer(cfg.Mail)
		}
		var pusher notify.Pusher = notify.NoopPusher{}
		if cfg.Push.Enabled {
			pusher = notify.NewSubscriptionPusher(db, cfg.Encrypt.AESKey)
		}

		worker := notify.NewWorker(queue, mailer, pusher, cfg.Mail.Workers)
		worker.Start(ctx)

		notifier = notify.NewQueueNotifier(queue, cfg.Mail.SiteURL)
	}

	// Services
	workOrderService := service.NewWorkOrderService(db, sseHub)
	quoteService := service.NewQuoteService(db, sseHub)
	noteService := service.NewNoteService(db, sseHub)
	vendorService := service.NewVendorService(db)
	propertyService := service.NewPropertyService(db)
	requestTypeService := service.NewRequestTypeService(db)
	userService := service.NewUserService(db)
	notificationService := service.NewNotificationService(db)
	pushService := service.NewPushService(db, cfg.Encrypt.AESKey)

	// Inject notifiers
	workOrderService.SetNotifier(notifier)
	quoteService.SetNotifier(notifier)
	noteService.SetNotifier(notifier)

	// Follow-up reminder sweep
	if cfg.Reminder.Enabled {
		sweeper := reminder.NewSweeper(db, sseHub, notifier,
			time.Duration(cfg.Reminder.IntervalHours)*time.Hour)
		sweeper.Start(ctx)
	}

	// Handlers
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	noteHandler := handler.NewNoteHandler(noteService)
	vendorHandler := handler.NewVendorHandler(vendorService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	requestTypeHandler := handler.NewRequestTypeHandler(requestTypeService)
	userHandler := handler.NewUserHandler(userService)
	notificationHandler := handler.NewNotificationHandler(notificationService, pushService)
	dashboardHandler := handler.NewDashboardHandler(db)
	calendarHandler := handler.NewCalendarHandler(db)
	streamHandler := handler.NewStreamHandler(sseHub, workOrderService)

	// Gin engine
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Setup routes
	router.Setup(r, router.Deps{
		DB:                  db,
		JWTSecret:           cfg.JWT.Secret,
		MetricsEnabled:      cfg.Metrics.Enabled,
		WorkOrderHandler:    workOrderHandler,
		QuoteHandler:        quoteHandler,
		NoteHandler:         noteHandler,
		VendorHandler:       vendorHandler,
		PropertyHandler:     propertyHandler,
		RequestTypeHandler:  requestTypeHandler,
		UserHandler:         userHandler,
		NotificationHandler: notificationHandler,
		DashboardHandler:    dashboardHandler,
		CalendarHandler:     calendarHandler,
		StreamHandler:       streamHandler,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
