package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/database"
	"github.com/AnshRaj112/wardline-backend/internal/models"
)

// AlertEvent is the payload broadcast over Redis and WebSocket when an
// alert copy has been written for a monitor. Best-effort: the durable copy
// in MongoDB is the source of truth, the stream is a convenience.
type AlertEvent struct {
	Type  string       `json:"type"`
	Alert models.Alert `json:"alert"`
}

const alertChannelPrefix = "alerts:"

// alertHub fans Redis events out to the local WebSocket subscribers,
// keyed by monitor uid.
type alertHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan AlertEvent]struct{}
}

var (
	hub             = &alertHub{subscribers: make(map[string]map[chan AlertEvent]struct{})}
	alertSubStarted sync.Once
)

// SubscribeAlerts registers a local subscriber for a monitor's alert stream.
// The returned cancel func must be called on disconnect.
func SubscribeAlerts(monitorUID string) (<-chan AlertEvent, func()) {
	ch := make(chan AlertEvent, 8)

	hub.mu.Lock()
	if hub.subscribers[monitorUID] == nil {
		hub.subscribers[monitorUID] = make(map[chan AlertEvent]struct{})
	}
	hub.subscribers[monitorUID][ch] = struct{}{}
	hub.mu.Unlock()

	cancel := func() {
		hub.mu.Lock()
		if subs, ok := hub.subscribers[monitorUID]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(hub.subscribers, monitorUID)
			}
		}
		hub.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

func (h *alertHub) fanOut(monitorUID string, event AlertEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[monitorUID] {
		// Non-blocking best-effort send; a slow consumer drops events.
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishAlertEvent publishes a delivered alert copy to the recipient
// monitor's Redis channel. Called by the alert fan-out after each write.
func PublishAlertEvent(ctx context.Context, alert models.Alert) error {
	event := AlertEvent{Type: "alert", Alert: alert}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	channel := alertChannelPrefix + alert.MonitorUID
	return database.RedisClient.Publish(ctx, channel, data).Err()
}

// StartRedisAlertSubscriber ensures a single shared Redis listener per instance.
func StartRedisAlertSubscriber(ctx context.Context) {
	alertSubStarted.Do(func() {
		go runAlertSubscriber(ctx)
	})
}

func runAlertSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; alert subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, alertChannelPrefix+"*")
			defer pubsub.Close()

			log.Println("✅ Alert Redis subscriber started (pattern: alerts:*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event AlertEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal alert event: %v", err)
					continue
				}

				hub.fanOut(event.Alert.MonitorUID, event)
			}
		}()
	}
}
