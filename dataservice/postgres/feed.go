package postgres

import (
	"sync"
	"time"

	"github.com/lib/pq"

	errs "fee-portal/errors"
	"fee-portal/logger"
)

// Feed adapts Postgres LISTEN/NOTIFY on the students change channel to the
// portal's change-feed interface.
type Feed struct {
	listener *pq.Listener
	log      *logger.Logger

	mu     sync.Mutex
	subs   map[int]func()
	nextID int
	closed bool
}

// NewFeed opens a dedicated listener connection and starts dispatching.
func NewFeed(connStr string, log *logger.Logger) (*Feed, error) {
	listener := pq.NewListener(connStr, 10*time.Second, time.Minute, nil)
	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		return nil, errs.E(errs.Service, "error listening for student changes", err)
	}

	f := &Feed{
		listener: listener,
		log:      log,
		subs:     make(map[int]func()),
	}
	go f.run()
	return f, nil
}

func (f *Feed) run() {
	for range f.listener.Notify {
		// A nil notification signals a reconnect; a re-fetch is the safe
		// response either way.
		f.broadcast()
	}
}

func (f *Feed) broadcast() {
	f.mu.Lock()
	callbacks := make([]func(), 0, len(f.subs))
	for _, cb := range f.subs {
		callbacks = append(callbacks, cb)
	}
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// Subscribe registers a no-payload callback for any students write and
// returns its release handle.
func (f *Feed) Subscribe(onChange func()) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errs.E(errs.Service, "change feed is closed")
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = onChange

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}, nil
}

// Close stops the listener connection.
func (f *Feed) Close() error {
	f.mu.Lock()
	f.closed = true
	f.subs = make(map[int]func())
	f.mu.Unlock()
	return f.listener.Close()
}
