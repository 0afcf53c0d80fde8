package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-core/internal/event"
	"bank-core/internal/service/mq"
	"bank-core/pkg/config"
	"bank-core/pkg/database"
	"bank-core/pkg/logger"
	"bank-core/pkg/monitor"

	"go.uber.org/zap"
)

// NotifierWorker 独立运行的通知服务
// 消费交易事件流，推送账户动账通知 (目前输出结构化日志并打点)
func main() {
	// 1. 初始化配置与日志
	config.Init()
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	logger.Info("启动通知服务 (Notifier Worker)...", zap.String("env", config.Global.App.Env))

	monitor.InitBusinessMetrics()

	// 2. 初始化 MQ Consumer
	var consumer mq.Consumer
	if config.Global.MQ.Type == "kafka" {
		logger.Info("MQ Mode: Kafka Consumer", zap.Strings("brokers", config.Global.Kafka.Brokers))
		consumer = mq.NewKafkaConsumer(config.Global.Kafka.Brokers, "notifier-group")
	} else {
		logger.Info("MQ Mode: Redis Consumer")
		rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
		if err != nil {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		consumer = mq.NewRedisConsumer(rdb, "notifier-group", "worker-1")
	}

	// 3. 启动消费 (订阅模式)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Info("开始监听交易事件", zap.String("topic", event.TopicTransactions))
		if err := consumer.Subscribe(ctx, event.TopicTransactions, handleTransactionEvent); err != nil {
			logger.Fatal("订阅失败", zap.Error(err))
		}
	}()

	// 4. 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在停止通知服务...")
	cancel()
	_ = consumer.Close()
	time.Sleep(2 * time.Second)
	logger.Info("通知服务已停止")
}

func handleTransactionEvent(msg *mq.Message) error {
	var e event.TransactionRecordedEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		logger.Error("解析消息失败", zap.Error(err))
		return nil // 格式错误，重试也无意义
	}

	// 投递是 at-least-once，通知要按 TransactionID 幂等；
	// 这里只做日志 + 打点，天然幂等
	logger.Info("账户动账通知",
		zap.String("transaction_id", e.TransactionID),
		zap.String("type", e.Type),
		zap.String("account", e.AccountNumber),
		zap.String("amount", e.Amount),
		zap.String("balance_after", e.BalanceAfter),
	)
	monitor.Business.TransactionEventsTotal.WithLabelValues(e.Type).Inc()
	return nil
}
