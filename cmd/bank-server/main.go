package main

import (
	"context"
	"fmt"

	"bank-core/internal/model"
	"bank-core/internal/repository"
	"bank-core/internal/server"
	"bank-core/internal/service"
	"bank-core/internal/service/account"
	"bank-core/internal/service/auth"
	"bank-core/internal/service/mq"
	"bank-core/internal/service/transaction"
	"bank-core/pkg/cache"
	"bank-core/pkg/config"
	"bank-core/pkg/database"
	"bank-core/pkg/logger"
	"bank-core/pkg/validator"

	"go.uber.org/zap"
)

// @title Bank Core API
// @version 1.0
// @description Banking Ledger Server API
// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger 与请求校验器
	logger.Init(config.Global.App.Env)
	defer logger.Sync()
	validator.Init()

	// 2. 构造 DSN 并连接数据库
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 开发环境自动迁移 Schema，生产用 cmd/migrate + golang-migrate
	if config.Global.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("自动迁移失败", zap.Error(err))
		}
	}

	// 5. 仓储与业务服务
	store := repository.NewGormStore(db)
	sessions := cache.NewRedisCache(rdb)

	authSvc := auth.NewService(store, sessions)
	accountSvc := account.NewService(store)
	txnSvc := transaction.NewService(store)

	// 6. 事件投递: Outbox Relay + MQ Producer
	var producer mq.Producer
	switch config.Global.MQ.Type {
	case "kafka":
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers)
	default:
		producer = mq.NewRedisProducer(rdb)
	}
	relay := service.NewRelayService(store.Repos().Outbox, producer)

	ctx, cancel := context.WithCancel(context.Background())
	go relay.Start(ctx)

	// 7. HTTP Server (阻塞直到收到退出信号)
	router := server.NewHTTPRouter(server.Services{
		Auth:        authSvc,
		Account:     accountSvc,
		Transaction: txnSvc,
	})
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, router)
	app.Run()

	// 8. 清理
	cancel()
	if err := producer.Close(); err != nil {
		logger.Error("MQ Producer 关闭失败", zap.Error(err))
	}
}
