package handler

import (
	"sync"

	"uav-planner/algo"
	"uav-planner/model"
)

// SSE 事件名
const (
	EventSnapshot       = "snapshot"
	EventGraph          = "graph"
	EventMatrices       = "matrices"
	EventRangeViolation = "range_violation"
)

// Event 推送给前端的一条事件
type Event struct {
	Name string
	Data any
}

// MatricesPayload 矩阵变化事件的内容；航点不足两个时 Distances 为空
type MatricesPayload struct {
	IDs         []int              `json:"ids"`
	Distances   [][]float64        `json:"distances"`
	Connections []model.Connection `json:"connections"`
}

// EventHub 把引擎通知广播给所有 SSE 订阅者
// 回调在引擎锁内执行，所以这里只做非阻塞发送，跟不上的订阅者会丢事件
type EventHub struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
}

var _ algo.Listener = (*EventHub)(nil)

// NewEventHub 创建事件中心，buffer 为每个订阅者的缓冲大小
func NewEventHub(buffer int) *EventHub {
	if buffer <= 0 {
		buffer = 16
	}
	return &EventHub{subs: make(map[chan Event]struct{}), buffer: buffer}
}

// Subscribe 订阅事件，返回的函数用于取消订阅
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers 当前订阅者数量
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *EventHub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *EventHub) OnGraphChanged(waypoints []model.Waypoint) {
	h.publish(Event{Name: EventGraph, Data: waypoints})
}

func (h *EventHub) OnMatricesChanged(dm *algo.DistanceMatrix, connections []model.Connection) {
	payload := MatricesPayload{Connections: connections}
	if dm != nil {
		payload.IDs = dm.IDs()
		payload.Distances = dm.Rows()
	}
	h.publish(Event{Name: EventMatrices, Data: payload})
}

func (h *EventHub) OnRangeViolation(message string) {
	h.publish(Event{Name: EventRangeViolation, Data: map[string]string{"message": message}})
}
