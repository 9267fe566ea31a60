package leadevents

import (
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	TypeProcessing = "processing"
	TypeCompleted  = "completed"
	TypeFailed     = "failed"

	SourcePipeline = "pipeline"
	SourceWebhook  = "webhook"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
	maxStreams              = 4096
)

// Event is one realtime search progress update. Events are fanned out
// best-effort; slow subscribers lose events rather than blocking the
// publisher.
type Event struct {
	SearchID      string `json:"search_id"`
	Type          string `json:"type"`
	LeadsCount    int    `json:"leads_count,omitempty"`
	Message       string `json:"message,omitempty"`
	Source        string `json:"source"`
	CorrelationID string `json:"correlation_id,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

func NewEvent(searchID, eventType, source string) Event {
	return Event{
		SearchID:   searchID,
		Type:       eventType,
		Source:     source,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
	nextID uint64
}

type Subscription struct {
	hub      *Hub
	searchID string
	id       uint64
	ch       chan Event
	once     sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish appends to the stream's replay buffer and fans out to current
// subscribers. The stream is created if absent so a subscriber arriving
// after the run started still sees recent history.
func (h *Hub) Publish(searchID string, event Event) {
	if h == nil {
		return
	}
	key := strings.TrimSpace(searchID)
	if key == "" {
		return
	}
	stream := h.ensureStream(key)

	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan Event, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers for a search's events and returns the buffered
// history for replay.
func (h *Hub) Subscribe(searchID string) (*Subscription, []Event, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	key := strings.TrimSpace(searchID)
	if key == "" {
		return nil, nil, errors.New("invalid_search_id")
	}

	stream := h.ensureStream(key)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan Event)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan Event, h.subscriberBuffer)
	stream.subs[id] = ch
	buffer := append([]Event(nil), stream.buffer...)
	stream.mu.Unlock()

	return &Subscription{
		hub:      h,
		searchID: key,
		id:       id,
		ch:       ch,
	}, buffer, nil
}

func (h *Hub) ensureStream(searchID string) *stream {
	h.mu.RLock()
	current := h.streams[searchID]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[searchID]
	if current == nil {
		if len(h.streams) >= maxStreams {
			h.evictIdleLocked()
		}
		current = &stream{subs: make(map[uint64]chan Event)}
		h.streams[searchID] = current
	}
	return current
}

// evictIdleLocked drops one subscriber-less stream to bound the map.
// Callers hold h.mu.
func (h *Hub) evictIdleLocked() {
	for key, candidate := range h.streams {
		candidate.mu.Lock()
		idle := len(candidate.subs) == 0
		candidate.mu.Unlock()
		if idle {
			delete(h.streams, key)
			return
		}
	}
}

func (h *Hub) unsubscribe(searchID string, id uint64) {
	if h == nil {
		return
	}
	h.mu.RLock()
	stream := h.streams[searchID]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	stream.mu.Unlock()
	if remaining != 0 {
		return
	}

	// Drop subscriber-less streams with empty recent history lazily; the
	// buffer stays for late subscribers until the map is rebuilt.
	h.mu.Lock()
	current := h.streams[searchID]
	if current == stream {
		stream.mu.Lock()
		empty := len(stream.subs) == 0 && len(stream.buffer) == 0
		stream.mu.Unlock()
		if empty {
			delete(h.streams, searchID)
		}
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.searchID, s.id)
	})
}
