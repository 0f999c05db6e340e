package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SaluSL/planimbly/config"
	"github.com/SaluSL/planimbly/internal/outbox"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/pkg/database"
	applogger "github.com/SaluSL/planimbly/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("PLANIMBLY_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !cfg.Kafka.Enabled {
		logger.Warn("kafka.enabled=false，outbox 投递未启动")
		return
	}
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Fatal("kafka.brokers 不能为空")
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	// Topic 由每条消息携带
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Kafka.Brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	defer writer.Close()

	repo := repository.NewRepository(db)
	relay := outbox.NewRelay(repo.Outbox, writer, cfg.Kafka.PollInterval, cfg.Kafka.BatchSize, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，停止 outbox 投递...", zap.String("signal", sig.String()))
	cancel()
	<-done
	logger.Info("worker 已退出")
}
