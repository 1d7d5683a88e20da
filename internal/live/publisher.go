// Package live implements push delivery of per-user data windows.
//
// A Subscription is a standing query over the most recent N records of a
// feed. Whenever a write changes the window's membership or ordering, the
// subscriber receives the full re-evaluated snapshot, never a diff. The
// abstraction is store-agnostic: a SnapshotSource re-runs the query, the
// Publisher only routes change events to interested subscriptions.
package live

import (
	"context"
	"errors"
	"sync"

	"edulink_backend/internal/logger"
)

// Feed names a subscribable collection.
type Feed string

const (
	FeedNotifications   Feed = "notifications"
	FeedRealtimeUpdates Feed = "realtime_updates"
)

var ErrUnknownFeed = errors.New("live: unknown feed")

// SnapshotSource re-evaluates the top-limit window for one user and feed,
// newest first. Implementations query the backing store.
type SnapshotSource interface {
	Snapshot(userID string, feed Feed, limit int) (interface{}, error)
}

type changeEvent struct {
	userID string
	feed   Feed
}

type Publisher struct {
	source SnapshotSource

	mu   sync.RWMutex
	subs map[Feed]map[string]map[*Subscription]struct{}

	events chan changeEvent
	done   chan struct{}
}

func NewPublisher(source SnapshotSource) *Publisher {
	return &Publisher{
		source: source,
		subs:   make(map[Feed]map[string]map[*Subscription]struct{}),
		events: make(chan changeEvent, 1024),
		done:   make(chan struct{}),
	}
}

// Run consumes change events until ctx is cancelled. Must be started
// exactly once, before the first Notify.
func (p *Publisher) Run(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			p.dispatch(ev)
		}
	}
}

// Notify signals that records of (userID, feed) changed. It never blocks
// the caller: under backpressure delivery shifts to a goroutine. Event
// reordering is harmless because every delivery is a full snapshot.
func (p *Publisher) Notify(userID string, feed Feed) {
	ev := changeEvent{userID: userID, feed: feed}
	select {
	case p.events <- ev:
	case <-p.done:
	default:
		go func() {
			select {
			case p.events <- ev:
			case <-p.done:
			}
		}()
	}
}

// Subscribe registers a live view and synchronously delivers the initial
// snapshot. Setup errors (bad feed, failing initial query) are returned
// here; later query errors terminate the subscription via onError.
//
// onChange and onError must not call Unsubscribe on their own
// subscription; they run under the subscription lock.
func (p *Publisher) Subscribe(userID string, feed Feed, limit int, onChange func(interface{}), onError func(error)) (*Subscription, error) {
	if feed != FeedNotifications && feed != FeedRealtimeUpdates {
		return nil, ErrUnknownFeed
	}
	if limit <= 0 {
		limit = 20
	}

	snapshot, err := p.source.Snapshot(userID, feed, limit)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		publisher: p,
		userID:    userID,
		feed:      feed,
		limit:     limit,
		onChange:  onChange,
		onError:   onError,
	}

	p.mu.Lock()
	byUser, ok := p.subs[feed]
	if !ok {
		byUser = make(map[string]map[*Subscription]struct{})
		p.subs[feed] = byUser
	}
	set, ok := byUser[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		byUser[userID] = set
	}
	set[sub] = struct{}{}
	p.mu.Unlock()

	sub.deliver(snapshot)
	return sub, nil
}

func (p *Publisher) dispatch(ev changeEvent) {
	p.mu.RLock()
	var targets []*Subscription
	if byUser, ok := p.subs[ev.feed]; ok {
		for sub := range byUser[ev.userID] {
			targets = append(targets, sub)
		}
	}
	p.mu.RUnlock()

	// Limits differ per subscription, so the window is re-evaluated for
	// each one.
	for _, sub := range targets {
		snapshot, err := p.source.Snapshot(ev.userID, ev.feed, sub.limit)
		if err != nil {
			logger.Warn("live snapshot query failed, ending subscription",
				"user_id", ev.userID, "feed", string(ev.feed), "error", err)
			sub.fail(err)
			continue
		}
		sub.deliver(snapshot)
	}
}

func (p *Publisher) remove(sub *Subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if byUser, ok := p.subs[sub.feed]; ok {
		if set, ok := byUser[sub.userID]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(byUser, sub.userID)
			}
		}
	}
}
