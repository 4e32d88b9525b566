package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"assetverse-http-service/internal/domain/models"
	"assetverse-http-service/internal/infrastructure/config"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient 只实现发布器用到的方法
type fakeClient struct {
	pahomqtt.Client

	mu          sync.Mutex
	connected   bool
	failConnect int
	attempts    int
	messages    []published
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Connect() pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
	if c.attempts <= c.failConnect {
		return newFakeToken(errors.New("broker unavailable"))
	}
	c.connected = true
	return newFakeToken(nil)
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return newFakeToken(nil)
}

func testPublisher(client *fakeClient) *Publisher {
	return &Publisher{
		Client:  client,
		Config:  &config.Config{MQTTTopicPrefix: "assetverse", MQTTQoS: 1},
		backoff: func(int) time.Duration { return time.Millisecond },
	}
}

func TestTopic(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"ana@acme.io", "assetverse/users/ana@acme.io/events"},
		{"odd/+#@acme.io", "assetverse/users/odd___@acme.io/events"},
	}
	for _, tt := range tests {
		if got := Topic("assetverse", tt.email); got != tt.want {
			t.Errorf("Topic(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}

func TestConnectRetries(t *testing.T) {
	client := &fakeClient{failConnect: 2}
	p := testPublisher(client)

	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if client.attempts != 3 {
		t.Fatalf("attempts = %d, want 3", client.attempts)
	}
	if !p.IsConnected() {
		t.Fatal("publisher should be connected")
	}
}

func TestConnectGivesUp(t *testing.T) {
	client := &fakeClient{failConnect: connectAttempts}
	p := testPublisher(client)

	if err := p.Connect(context.Background()); err == nil {
		t.Fatal("Connect should fail")
	}
	if client.attempts != connectAttempts {
		t.Fatalf("attempts = %d, want %d", client.attempts, connectAttempts)
	}
}

func TestPublish(t *testing.T) {
	client := &fakeClient{}
	p := testPublisher(client)

	event := models.Event{Type: models.EventReturnCompleted, Recipient: "ana@acme.io", EntityID: 3}
	if err := p.Publish(context.Background(), event); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("Publish before connect err = %v, want ErrNotConnected", err)
	}

	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(client.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(client.messages))
	}
	msg := client.messages[0]
	if msg.topic != "assetverse/users/ana@acme.io/events" || msg.qos != 1 {
		t.Fatalf("message = %s qos %d", msg.topic, msg.qos)
	}
	var got models.Event
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Type != event.Type || got.EntityID != 3 {
		t.Fatalf("payload event = %+v", got)
	}

	p.Disconnect()
	if p.IsConnected() {
		t.Fatal("publisher should be disconnected")
	}
}
