package generic

import (
	"context"
	"sync"
)

// subscriberBuffer bounds how far a slow subscriber may lag before
// changes are dropped for it.
const subscriberBuffer = 64

// Broadcaster fans committed changes out to subscribers. A subscriber whose
// buffer is full misses the change; writers never block on readers.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Change)}
}

// Subscribe implements ChangeFeed.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := make(chan Change, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Publish delivers c to every current subscriber.
func (b *Broadcaster) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
