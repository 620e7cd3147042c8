package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Lingo_Community/internal/config"
	"Lingo_Community/internal/pkg"
	"Lingo_Community/internal/repository/redis"
	"Lingo_Community/internal/repository/sqldb"
	"Lingo_Community/internal/router"
	"Lingo_Community/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err = sqldb.InitDB(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		log.Fatal(err)
	}
	db := sqldb.DB
	// 自动建表
	if err = sqldb.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	// redis 可选；接口变量保持 nil 表示未启用
	var (
		dueCache service.DueCache
		likes    service.LikeCounter
		locker   service.Locker
		sessions service.SessionStore
		marker   service.ReminderMarker
	)
	if cfg.RedisAddr != "" {
		if err = redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
			log.Fatal(err)
		}
		defer func() { _ = redis.Close() }()
		dueCache = redis.NewDueCacheRepository(redis.Client)
		likes = redis.NewLikeCacheRepository(redis.Client)
		locker = &redis.DistLock{RDB: redis.Client}
		sessions = &redis.SessionRepository{RDB: redis.Client}
		marker = &redis.ReminderRepository{RDB: redis.Client}
	}

	clock := pkg.SystemClock{}
	jwtMgr := pkg.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)

	svcs := router.Services{
		Users:      service.NewUserService(db, jwtMgr, sessions, cfg.SyncKeyHash),
		Progress:   service.NewProgressService(db, clock, dueCache),
		Community:  service.NewCommunityService(db, clock),
		Posts:      service.NewPostService(db),
		Likes:      service.NewPostLikeService(db, likes, locker),
		Moderation: service.NewModerationService(db, clock),
		Flashcards: service.NewFlashcardService(db),
		Quizzes:    service.NewQuizService(db, clock),
		Videos:     service.NewVideoService(db, clock),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// outbox 投递：配了 kafka 就发 kafka，否则打日志
	var sender service.Sender = service.LogSender
	if brokers := pkg.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: brokers, Topic: cfg.KafkaTopic})
		defer func() { _ = producer.Close() }()
		sender = service.KafkaSender(producer)
	}
	go service.NewOutboxRelayer(db, sender).Run(ctx)

	var notifiers []service.Notifier
	smtp := pkg.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	if smtp.Enabled() {
		notifiers = append(notifiers, service.NewEmailNotifier(smtp))
	}
	if cfg.TelegramBotToken != "" {
		tg, err := pkg.NewTelegramClient(cfg.TelegramBotToken)
		if err != nil {
			log.Printf("telegram disabled: %v", err)
		} else {
			notifiers = append(notifiers, service.NewTelegramNotifier(tg))
		}
	}

	reminder := service.NewReminderService(db, clock, marker, notifiers...)
	reconciler := service.NewMemberCountReconciler(db, locker)
	jobs, err := service.NewJobs(ctx, cfg.ReminderCron, reminder, cfg.ReconcileInterval, reconciler)
	if err != nil {
		log.Fatal(err)
	}
	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.Handler(router.InitRouter(svcs), cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
