package realtime

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// channelPrefix namespaces the Redis pub/sub channels, one per show.
const channelPrefix = "show:"

// subscriberBuffer is the per-connection event queue.  A consumer that
// falls this far behind starts losing events and must reconcile by
// re-fetching show state.
const subscriberBuffer = 16

// Subscriber is one connected viewer of a show.  Events arrive on C;
// the channel is closed when the subscriber is removed from the hub.
type Subscriber struct {
	ID     string // connection ID, compared against Event.Origin
	ShowID uint64
	C      chan Event
}

// Hub is a show-scoped broadcast registry.  Local subscribers attach per
// show; Publish fans an event out to every subscriber of that show except
// the originating connection.  When a Redis client is provided, events
// travel through a `show:{id}` pub/sub channel so viewers connected to
// other instances converge too; with a nil client the hub degrades to
// process-local delivery, mirroring how the Redis-backed middleware
// degrades when Redis is unavailable.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint64]map[*Subscriber]struct{}
	rdb  *redis.Client
}

// NewHub creates a Hub.  rdb may be nil for process-local operation.
// When rdb is non-nil the caller should start Run in a goroutine.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		subs: make(map[uint64]map[*Subscriber]struct{}),
		rdb:  rdb,
	}
}

// Subscribe attaches a viewer to a show and returns its Subscriber.  The
// connection ID is echoed back on published events from this client so it
// can be excluded from its own fan-out.
func (h *Hub) Subscribe(showID uint64, connID string) *Subscriber {
	sub := &Subscriber{ID: connID, ShowID: showID, C: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	set, ok := h.subs[showID]
	if !ok {
		set = make(map[*Subscriber]struct{})
		h.subs[showID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe detaches a viewer and closes its channel.  Safe to call
// once per subscriber; the show's registry entry is dropped when the last
// viewer leaves.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[sub.ShowID]; ok {
		if _, present := set[sub]; present {
			delete(set, sub)
			close(sub.C)
		}
		if len(set) == 0 {
			delete(h.subs, sub.ShowID)
		}
	}
	h.mu.Unlock()
}

// Publish broadcasts a seat-state event to the viewers of ev.ShowID.
// With Redis configured the event is published to the show's channel and
// local delivery happens when Run receives it back; without Redis it is
// delivered to local subscribers directly.  Publish never blocks the
// mutating request: delivery failures are logged and dropped.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if h.rdb == nil {
		h.deliver(ev)
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("realtime: marshal event failed: %v", err)
		return
	}
	channel := channelPrefix + strconv.FormatUint(ev.ShowID, 10)
	if err := h.rdb.Publish(ctx, channel, body).Err(); err != nil {
		log.Printf("realtime: publish to %s failed: %v; delivering locally", channel, err)
		h.deliver(ev)
	}
}

// deliver fans the event out to the show's local subscribers, skipping
// the originating connection.  Sends are non-blocking; a full buffer
// means the event is dropped for that subscriber.
func (h *Hub) deliver(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[ev.ShowID] {
		if ev.Origin != "" && sub.ID == ev.Origin {
			continue
		}
		select {
		case sub.C <- ev:
		default:
			log.Printf("realtime: dropping %s event for slow subscriber on show %d", ev.Type, ev.ShowID)
		}
	}
}

// Run consumes the Redis pattern subscription covering every show channel
// and forwards events to local subscribers.  It returns when ctx is
// cancelled.  Calling Run with a nil Redis client is a no-op.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	sub := h.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer func() { _ = sub.Close() }()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !strings.HasPrefix(msg.Channel, channelPrefix) {
				continue
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("realtime: unmarshal event from %s failed: %v", msg.Channel, err)
				continue
			}
			h.deliver(ev)
		}
	}
}
