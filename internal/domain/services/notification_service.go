package services

import (
	"context"
	"sync"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/pkg/logger"
)

// Publisher 事件投递通道（websocket、MQTT 等）
type Publisher interface {
	Name() string
	Publish(ctx context.Context, event models.Event) error
}

// InterfaceNotificationService 定义事件通知接口
type InterfaceNotificationService interface {
	AddPublisher(p Publisher)
	Publish(ctx context.Context, events ...models.Event)
}

// NotificationService 将业务事件分发到所有已注册的通道。
// 事件在事务提交后发送，投递失败只记录日志。
type NotificationService struct {
	mu         sync.RWMutex
	publishers []Publisher
}

// NewNotificationService 创建通知服务
func NewNotificationService(publishers ...Publisher) InterfaceNotificationService {
	return &NotificationService{publishers: publishers}
}

// AddPublisher 注册投递通道
func (s *NotificationService) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

// Publish 分发事件
func (s *NotificationService) Publish(ctx context.Context, events ...models.Event) {
	s.mu.RLock()
	publishers := make([]Publisher, len(s.publishers))
	copy(publishers, s.publishers)
	s.mu.RUnlock()

	for _, event := range events {
		if event.Recipient == "" {
			continue
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now()
		}
		for _, p := range publishers {
			if err := p.Publish(ctx, event); err != nil {
				logger.Warning("[%s] 事件投递失败 type=%s recipient=%s: %v", p.Name(), event.Type, event.Recipient, err)
			}
		}
	}
}
