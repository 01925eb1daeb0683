// Package notify is a payload-less change signal.
//
// A Subject tells its subscribers that some state changed, never what
// changed. Subscribers re-read whatever they care about.
package notify

import (
	"context"
	"sync"
)

// Subject fans a change signal out to its subscribers.
// The zero value is ready to use.
type Subject struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]func()
	order  []uint64
}

// Subscribe registers fn and returns a function that removes it. fn is
// called synchronously from Publish, in subscription order, and must not
// block. Calling the returned cancel more than once is harmless.
func (s *Subject) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[uint64]func())
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Subject) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Publish signals every current subscriber.
// Subscribers may subscribe or cancel from inside their callback.
func (s *Subject) Publish() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of subscribers.
func (s *Subject) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Watch returns a channel that receives a value after one or more Publish
// calls. Signals published while a previous one is still unread coalesce
// into it, so Publish never blocks on a slow reader. The subscription ends
// and the channel is closed when ctx is done.
//
// Watch starts a goroutine that lives until ctx is done. Callers must pass a
// context they cancel; context.Background() leaks the goroutine and the
// subscription for the life of the Subject.
func (s *Subject) Watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	var closing sync.RWMutex
	closed := false

	cancel := s.Subscribe(func() {
		closing.RLock()
		defer closing.RUnlock()
		if closed {
			return
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	go func() {
		<-ctx.Done()
		cancel()
		closing.Lock()
		closed = true
		close(ch)
		closing.Unlock()
	}()

	return ch
}
