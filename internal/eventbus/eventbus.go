// Package eventbus is a small typed in-process publish/subscribe hub used to
// report analysis progress to optional observers such as tracing.
package eventbus

import (
	"context"
	"reflect"
	"sync"
)

// Handler processes events of type T.
type Handler[T any] func(context.Context, T)

type subscription struct {
	fn func(context.Context, any)
}

// Bus dispatches events by their static type. A nil *Bus drops everything.
type Bus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type][]*subscription
}

func New() *Bus { return &Bus{handlers: make(map[reflect.Type][]*subscription)} }

// Subscribe registers h for events of type T on b.
func Subscribe[T any](b *Bus, h Handler[T]) (unsubscribe func()) {
	if b == nil {
		return func() {}
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	sub := &subscription{fn: func(ctx context.Context, v any) { h(ctx, v.(T)) }}

	b.mu.Lock()
	b.handlers[t] = append(b.handlers[t], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[t]
		for i, s := range subs {
			if s == sub {
				subs = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(subs) == 0 {
			delete(b.handlers, t)
		} else {
			b.handlers[t] = subs
		}
	}
}

// Publish calls every handler subscribed to T, synchronously and in
// subscription order.
func Publish[T any](ctx context.Context, b *Bus, e T) {
	if b == nil {
		return
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.RLock()
	subs := b.handlers[t]
	if len(subs) == 0 {
		b.mu.RUnlock()
		return
	}
	copied := append([]*subscription(nil), subs...)
	b.mu.RUnlock()
	for _, s := range copied {
		s.fn(ctx, e)
	}
}
