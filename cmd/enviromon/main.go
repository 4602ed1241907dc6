package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"github.com/trancuong31/EnviroMonitor/internal/alert"
	"github.com/trancuong31/EnviroMonitor/internal/config"
	"github.com/trancuong31/EnviroMonitor/internal/consumer"
	httpapi "github.com/trancuong31/EnviroMonitor/internal/http"
	"github.com/trancuong31/EnviroMonitor/internal/logger"
	"github.com/trancuong31/EnviroMonitor/internal/mailer"
	mqttclient "github.com/trancuong31/EnviroMonitor/internal/mqtt"
	"github.com/trancuong31/EnviroMonitor/internal/notify"
	"github.com/trancuong31/EnviroMonitor/internal/repository"
	"github.com/trancuong31/EnviroMonitor/internal/service"
	"github.com/trancuong31/EnviroMonitor/internal/store"
)

func main() {
	// 1. 加载配置（阈值非法在这里直接拒绝启动）
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 连接数据库
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}
	defer db.Close()

	// 4. 连接 Redis（缓存 + 限流；连不上只降级，不阻止启动）
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var kv store.KV
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unavailable, cache and rate limiting degraded", zap.Error(err))
	} else {
		kv = store.NewRedisKV(redisClient)
	}
	defer redisClient.Close()

	// 5. 组装各层
	readingsRepo := repository.NewPostgresReadingsRepo(db, cfg.Readings.MaxLocations, log)
	dataLogs := service.NewDataLogService(readingsRepo, kv, cfg.Readings.CacheTTL, log)

	smtpMailer := mailer.NewSMTPMailer(&cfg.Email, log)
	emailQueue := mailer.NewQueue(smtpMailer, 64, log)

	var notifier alert.Notifier
	if cfg.Alert.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Alert.WebhookURL, log)
	}
	dispatcher := alert.NewDispatcher(smtpMailer, log)
	aggregator := alert.NewAggregator(readingsRepo, dispatcher, notifier, log)
	scheduler := alert.NewScheduler(aggregator, &cfg.Alert, log)

	// 6. HTTP 路由
	router := httpapi.NewRouter(log)
	router.RegisterHealthRoute()
	router.RegisterDataLogRoutes(httpapi.NewDataLogHandler(dataLogs, log))
	router.RegisterAlertRoutes(httpapi.NewAlertHandler(&cfg.Alert, emailQueue, log))

	var handler = http.Handler(router)
	if kv != nil {
		handler = httpapi.NewRateLimiter(kv, cfg.RateLimit.Window, cfg.RateLimit.Max, log).Middleware(router)
	}

	srv := service.NewServer(cfg.HTTP.Addr, handler, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. 后台组件
	go emailQueue.Start(ctx)
	scheduler.Start(ctx)

	// 可选：MQTT 网关接入
	if cfg.MQTT.Enabled {
		mqttCli, err := mqttclient.NewClient(mqttclient.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
		}, log)
		if err != nil {
			log.Fatal("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer mqttCli.Disconnect()

		readingConsumer := consumer.NewReadingConsumer(cfg, mqttCli, readingsRepo, log)
		go func() {
			if err := readingConsumer.Start(ctx); err != nil {
				log.Error("Reading consumer error", zap.Error(err))
			}
		}()
	}

	// 8. 启动 HTTP 服务
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// 9. 等待信号（优雅关闭）
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server error", zap.Error(err))
	}

	// 停掉后续告警触发；进行中的周期允许跑完
	scheduler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	log.Info("EnviroMonitor stopped")
}
