// Package mqtt 将业务事件发布到 MQTT，供移动端等订阅者接收
package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/pkg/logger"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	connectAttempts = 5
	connectTimeout  = 5 * time.Second
	publishTimeout  = 3 * time.Second
)

// ErrNotConnected 客户端未连接
var ErrNotConnected = errors.New("mqtt client not connected")

var topicReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// Topic 返回用户的事件主题：<prefix>/users/<email>/events
func Topic(prefix, email string) string {
	return fmt.Sprintf("%s/users/%s/events", prefix, topicReplacer.Replace(email))
}

// Publisher 基于 paho 客户端的事件投递通道
type Publisher struct {
	Client pahomqtt.Client
	Config *config.Config

	mu        sync.RWMutex
	connected bool
	backoff   func(attempt int) time.Duration
}

// NewPublisher 创建 MQTT 事件发布器
func NewPublisher(cfg *config.Config) *Publisher {
	p := &Publisher{Config: cfg, backoff: exponentialBackoff}
	p.Client = pahomqtt.NewClient(p.clientOptions())
	return p
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s, 8s
}

// clientOptions 设置MQTT客户端参数
func (p *Publisher) clientOptions() *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(p.Config.MQTTBrokerURL)
	// 使用唯一的客户端ID，避免同一服务多实例冲突
	opts.SetClientID(fmt.Sprintf("%s-%s", p.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)

	if p.Config.MQTTUsername != "" {
		opts.SetUsername(p.Config.MQTTUsername)
		opts.SetPassword(p.Config.MQTTPassword)
	}
	if strings.HasPrefix(p.Config.MQTTBrokerURL, "ssl://") || strings.HasPrefix(p.Config.MQTTBrokerURL, "tls://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warning("[MQTT] 连接丢失: %v", err)
		p.setConnected(false)
	})
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		logger.Info("[MQTT] 成功连接到 %s", p.Config.MQTTBrokerURL)
		p.setConnected(true)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		logger.Info("[MQTT] 正在尝试重连...")
	})
	return opts
}

func (p *Publisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

// IsConnected 是否已连接
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.Client.IsConnected()
}

// Connect 连接到MQTT服务器，失败时指数退避重试
func (p *Publisher) Connect(ctx context.Context) error {
	if p.IsConnected() {
		return nil
	}

	var err error
	for i := 0; i < connectAttempts; i++ {
		token := p.Client.Connect()
		if token.WaitTimeout(connectTimeout) && token.Error() == nil {
			p.setConnected(true)
			return nil
		}
		err = token.Error()
		if err == nil {
			err = errors.New("connect timeout")
		}
		if i == connectAttempts-1 {
			break
		}

		wait := p.backoff(i)
		logger.Warning("[MQTT] 连接尝试 %d/%d 失败: %v, 将在 %v 后重试", i+1, connectAttempts, err, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("mqtt connect failed after %d attempts: %w", connectAttempts, err)
}

// Name 投递通道名称
func (p *Publisher) Name() string {
	return "mqtt"
}

// Publish 发布事件到接收人的主题。发布结果异步确认，不阻塞请求。
func (p *Publisher) Publish(_ context.Context, event models.Event) error {
	if !p.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	topic := Topic(p.Config.MQTTTopicPrefix, event.Recipient)
	token := p.Client.Publish(topic, byte(p.Config.MQTTQoS), false, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			logger.Warning("[MQTT] 发布超时: topic=%s type=%s", topic, event.Type)
			return
		}
		if err := token.Error(); err != nil {
			logger.Warning("[MQTT] 发布失败: topic=%s type=%s: %v", topic, event.Type, err)
		}
	}()
	return nil
}

// Disconnect 断开与MQTT服务器的连接
func (p *Publisher) Disconnect() {
	if p.Client != nil && p.Client.IsConnected() {
		p.Client.Disconnect(250)
	}
	p.setConnected(false)
}
