package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultWriteTimeout = 5 * time.Second

// Autosaver is a write-behind sink in front of session stores. Saves return
// immediately and one worker goroutine applies them in enqueue order. Reads
// through a wrapped store observe writes that are still queued.
type Autosaver struct {
	queue        chan writeOp
	done         chan struct{}
	logger       *slog.Logger
	onError      func(*PersistenceWriteError)
	writeTimeout time.Duration

	sendMu sync.Mutex // serializes enqueue order with queue order
	closed bool

	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingWrite
}

type writeOp struct {
	store  SessionStore
	scope  string
	key    string
	value  string
	remove bool
	seq    uint64

	barrier chan struct{}
}

type pendingWrite struct {
	value  string
	remove bool
	seq    uint64
}

// AutosaverOption configures an Autosaver
type AutosaverOption func(*Autosaver)

// WithErrorHook registers a callback for failed writes. It runs on the worker
// goroutine and must not block.
func WithErrorHook(fn func(*PersistenceWriteError)) AutosaverOption {
	return func(a *Autosaver) { a.onError = fn }
}

// WithWriteTimeout bounds each store write
func WithWriteTimeout(d time.Duration) AutosaverOption {
	return func(a *Autosaver) { a.writeTimeout = d }
}

// NewAutosaver starts the sink worker. queueSize bounds how many writes may be
// queued before Save blocks.
func NewAutosaver(queueSize int, logger *slog.Logger, opts ...AutosaverOption) *Autosaver {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Autosaver{
		queue:        make(chan writeOp, queueSize),
		done:         make(chan struct{}),
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
		pending:      make(map[string]pendingWrite),
	}
	for _, opt := range opts {
		opt(a)
	}
	go a.run()
	return a
}

// Wrap returns a store whose writes go through the sink. scope must uniquely
// identify store among the stores wrapped by this sink.
func (a *Autosaver) Wrap(store SessionStore, scope string) SessionStore {
	return &autosavedStore{sink: a, store: store, scope: scope}
}

// Flush waits until every write enqueued before the call has been applied
func (a *Autosaver) Flush(ctx context.Context) error {
	barrier := make(chan struct{})

	a.sendMu.Lock()
	if a.closed {
		a.sendMu.Unlock()
		return nil
	}
	a.queue <- writeOp{barrier: barrier}
	a.sendMu.Unlock()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies every queued write and stops the worker. Writes after Close
// are applied synchronously.
func (a *Autosaver) Close() error {
	a.sendMu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.sendMu.Unlock()

	<-a.done
	return nil
}

func (a *Autosaver) enqueue(op writeOp) {
	a.sendMu.Lock()
	if a.closed {
		a.sendMu.Unlock()
		a.write(op)
		return
	}

	a.mu.Lock()
	a.seq++
	op.seq = a.seq
	a.pending[pendingKey(op.scope, op.key)] = pendingWrite{value: op.value, remove: op.remove, seq: op.seq}
	a.mu.Unlock()

	a.queue <- op
	a.sendMu.Unlock()
}

func (a *Autosaver) run() {
	defer close(a.done)
	for op := range a.queue {
		if op.barrier != nil {
			close(op.barrier)
			continue
		}
		a.write(op)

		a.mu.Lock()
		k := pendingKey(op.scope, op.key)
		if p, ok := a.pending[k]; ok && p.seq == op.seq {
			delete(a.pending, k)
		}
		a.mu.Unlock()
	}
}

func (a *Autosaver) write(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), a.writeTimeout)
	defer cancel()

	name := "set"
	var err error
	if op.remove {
		name = "remove"
		err = op.store.Remove(ctx, op.key)
	} else {
		err = op.store.Set(ctx, op.key, op.value)
	}
	if err == nil {
		return
	}

	werr := &PersistenceWriteError{Scope: op.scope, Key: op.key, Op: name, Err: err}
	a.logger.Warn("autosave failed", "scope", op.scope, "key", op.key, "op", name, "error", err)
	if a.onError != nil {
		a.onError(werr)
	}
}

// lookup returns a queued write for key, if any
func (a *Autosaver) lookup(scope, key string) (pendingWrite, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pending[pendingKey(scope, key)]
	return p, ok
}

func pendingKey(scope, key string) string {
	return scope + "\x00" + key
}

type autosavedStore struct {
	sink  *Autosaver
	store SessionStore
	scope string
}

func (s *autosavedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if p, ok := s.sink.lookup(s.scope, key); ok {
		if p.remove {
			return "", false, nil
		}
		return p.value, true, nil
	}
	return s.store.Get(ctx, key)
}

func (s *autosavedStore) Set(_ context.Context, key, value string) error {
	s.sink.enqueue(writeOp{store: s.store, scope: s.scope, key: key, value: value})
	return nil
}

func (s *autosavedStore) Remove(_ context.Context, key string) error {
	s.sink.enqueue(writeOp{store: s.store, scope: s.scope, key: key, remove: true})
	return nil
}
