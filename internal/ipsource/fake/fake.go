// Package fake provides an in-memory IP source test double: a test pushes
// IpChangeEvents into it via Emit, and Watch replays them on its channel.
package fake

import (
	"context"
	"net"
	"sync"

	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/ipsource"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// Source is a controllable test double satisfying ipsource.Source.
type Source struct {
	mu         sync.Mutex
	current    net.IP
	currentErr error
	version    model.IpVersion
	events     chan model.IpChangeEvent

	watchCalls int
}

// New constructs a fake source whose initial Current() result is current.
func New(current net.IP) *Source {
	return &Source{current: current, events: make(chan model.IpChangeEvent, 16)}
}

var _ ipsource.Source = (*Source)(nil)

func (s *Source) Version() model.IpVersion { return s.version }

func (s *Source) Current(ctx context.Context) (net.IP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentErr != nil {
		return nil, ddnserr.IpSource("current", s.currentErr)
	}
	return s.current, nil
}

// SetCurrentErr makes the next/subsequent Current() calls fail with err.
func (s *Source) SetCurrentErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentErr = err
}

// Watch returns the fake's event channel. It may only be called once per
// the Source interface's contract; a second call is a test-harness bug.
func (s *Source) Watch(ctx context.Context) (<-chan model.IpChangeEvent, error) {
	s.mu.Lock()
	s.watchCalls++
	calls := s.watchCalls
	s.mu.Unlock()
	if calls > 1 {
		panic("fake ipsource.Watch called more than once")
	}

	go func() {
		<-ctx.Done()
	}()
	return s.events, nil
}

// WatchCalls returns how many times Watch has been invoked, for asserting
// the "no polling" law (exactly one invocation per session).
func (s *Source) WatchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchCalls
}

// Emit pushes a change event onto the watch channel.
func (s *Source) Emit(newIP, previous net.IP) {
	s.mu.Lock()
	s.current = newIP
	s.mu.Unlock()
	s.events <- model.NewIpChangeEvent(newIP, previous)
}

// Close closes the event channel, signalling watchers that no more events
// will arrive.
func (s *Source) Close() { close(s.events) }
