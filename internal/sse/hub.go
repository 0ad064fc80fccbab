package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Event struct {
	ID   int64       `json:"id"`
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Topics name live streams: one per work order for notes and activity,
// one per user for notifications.
func WorkOrderTopic(id uint) string { return fmt.Sprintf("workorder:%d", id) }
func UserTopic(id uint) string      { return fmt.Sprintf("user:%d", id) }

type subscriber struct {
	ch chan Event
}

// Hub fans events out to connected SSE clients. Every broadcast is
// also appended to a Redis list so reconnecting clients can replay
// from their Last-Event-ID.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
	rdb         *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		subscribers: make(map[string][]*subscriber),
		rdb:         rdb,
	}
}

func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, 256)}
	h.subscribers[topic] = append(h.subscribers[topic], sub)

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[topic]
		for i, s := range subs {
			if s == sub {
				h.subscribers[topic] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		if len(h.subscribers[topic]) == 0 {
			delete(h.subscribers, topic)
		}
	}
	return sub.ch, unsub
}

func streamKey(topic string) string { return "stream:" + topic }

func (h *Hub) Broadcast(topic string, event Event) {
	if h.rdb != nil {
		ctx := context.Background()
		data, _ := json.Marshal(event)
		h.rdb.RPush(ctx, streamKey(topic), string(data))
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[topic] {
		select {
		case sub.ch <- event:
		default:
			// drop if full
		}
	}
}

func (h *Hub) ReplayFrom(topic string, fromID int64) ([]Event, error) {
	if h.rdb == nil {
		return nil, nil
	}
	ctx := context.Background()
	items, err := h.rdb.LRange(ctx, streamKey(topic), fromID, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for i, item := range items {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		ev.ID = fromID + int64(i)
		events = append(events, ev)
	}
	return events, nil
}

func (h *Hub) SetExpire(topic string, ttl time.Duration) {
	if h.rdb == nil {
		return
	}
	h.rdb.Expire(context.Background(), streamKey(topic), ttl)
}

func (h *Hub) TotalEvents(topic string) int64 {
	if h.rdb == nil {
		return 0
	}
	count, _ := h.rdb.LLen(context.Background(), streamKey(topic)).Result()
	return count
}

func ParseLastEventID(header string) int64 {
	if header == "" {
		return 0
	}
	id, _ := strconv.ParseInt(header, 10, 64)
	return id
}
