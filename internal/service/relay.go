package service

import (
	"context"
	"time"

	"bank-core/internal/repository"
	"bank-core/internal/service/mq"
	"bank-core/pkg/logger"

	"go.uber.org/zap"
)

// RelayService 负责将本地消息表 (outbox) 的待投递消息搬运到 MQ。
// At-least-once: 只有 Publish 成功才置 SENT，消费方需做好幂等。
type RelayService struct {
	outbox   repository.Outbox
	producer mq.Producer
	interval time.Duration
}

func NewRelayService(outbox repository.Outbox, producer mq.Producer) *RelayService {
	return &RelayService{
		outbox:   outbox,
		producer: producer,
		interval: 500 * time.Millisecond,
	}
}

// Start 阻塞运行，直到 ctx 取消
func (s *RelayService) Start(ctx context.Context) {
	logger.Info("outbox relay started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			s.processPending(ctx)
		}
	}
}

func (s *RelayService) processPending(ctx context.Context) {
	// 每次取 50 条，避免一次性加载过多
	messages, err := s.outbox.FindPending(ctx, 50)
	if err != nil {
		logger.Error("outbox query failed", zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}

	for _, msg := range messages {
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			logger.Error("outbox publish failed", zap.Uint64("id", msg.ID), zap.Error(err))
			continue
		}
		if err := s.outbox.MarkSent(ctx, msg.ID); err != nil {
			// 状态更新失败会导致重复投递，由消费方幂等兜底
			logger.Error("outbox mark sent failed", zap.Uint64("id", msg.ID), zap.Error(err))
		}
	}
}
