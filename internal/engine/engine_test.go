package engine

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"

	"github.com/kuadrant/ddns-operator/internal/config"
	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	fakeprovider "github.com/kuadrant/ddns-operator/internal/dnsprovider/fake"
	fakesource "github.com/kuadrant/ddns-operator/internal/ipsource/fake"
	"github.com/kuadrant/ddns-operator/internal/model"
	"github.com/kuadrant/ddns-operator/internal/statestore"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		MaxRetries:            2,
		RetryDelaySecs:        0,
		StartupDelaySecs:      0,
		MinUpdateIntervalSecs: 0,
		EventChannelCapacity:  64,
	}
}

func testRecords() []config.RecordConfig {
	return []config.RecordConfig{{Name: "home.example.com", Type: model.RecordTypeAuto}}
}

func runEngine(t *testing.T, e *Engine) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = e.Run(ctx)
		close(done)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("engine did not stop after cancellation")
		}
	}
}

func drainEvents(e *Engine, collected *[]model.EngineEvent, done <-chan struct{}) {
	go func() {
		for {
			select {
			case ev, ok := <-e.Events():
				if !ok {
					return
				}
				*collected = append(*collected, ev)
			case <-done:
				return
			}
		}
	}()
}

func TestSingleChangeTriggersExactlyOneUpdate(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	provider := fakeprovider.New()
	store := statestore.NewMemoryStore()

	e, err := New(src, provider, store, testRecords(), testEngineConfig(), testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := runEngine(t, e)
	src.Emit(net.ParseIP("203.0.113.2"), net.ParseIP("203.0.113.1"))
	time.Sleep(50 * time.Millisecond)
	stop()

	if got := provider.CallCount(); got != 1 {
		t.Errorf("provider.CallCount() = %d, want 1", got)
	}
}

func TestDuplicateEventIsSkipped(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	provider := fakeprovider.New()
	store := statestore.NewMemoryStore()

	e, err := New(src, provider, store, testRecords(), testEngineConfig(), testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := runEngine(t, e)
	src.Emit(net.ParseIP("203.0.113.2"), net.ParseIP("203.0.113.1"))
	time.Sleep(50 * time.Millisecond)
	src.Emit(net.ParseIP("203.0.113.2"), net.ParseIP("203.0.113.2"))
	time.Sleep(50 * time.Millisecond)
	stop()

	if got := provider.CallCount(); got != 1 {
		t.Errorf("provider.CallCount() = %d, want 1 (second event duplicates the stored IP)", got)
	}
}

func TestRestartPreservesIdempotency(t *testing.T) {
	store := statestore.NewMemoryStore()
	ctx := context.Background()
	if err := store.SetLastIP(ctx, "home.example.com", net.ParseIP("203.0.113.2")); err != nil {
		t.Fatalf("SetLastIP() error = %v", err)
	}

	src := fakesource.New(net.ParseIP("203.0.113.2"))
	provider := fakeprovider.New()

	e, err := New(src, provider, store, testRecords(), testEngineConfig(), testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := runEngine(t, e)
	src.Emit(net.ParseIP("203.0.113.2"), nil)
	time.Sleep(50 * time.Millisecond)
	stop()

	if got := provider.CallCount(); got != 0 {
		t.Errorf("provider.CallCount() = %d, want 0 (restart with unchanged IP must not re-call the provider)", got)
	}
}

func TestRetriesHonorMaxRetriesConfiguration(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	provider := fakeprovider.New()
	provider.Err = errAlwaysFails{}
	store := statestore.NewMemoryStore()

	cfg := testEngineConfig()
	cfg.MaxRetries = 2

	e, err := New(src, provider, store, testRecords(), cfg, testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := runEngine(t, e)
	src.Emit(net.ParseIP("203.0.113.2"), net.ParseIP("203.0.113.1"))
	time.Sleep(100 * time.Millisecond)
	stop()

	if got := provider.CallCount(); got != 3 {
		t.Errorf("provider.CallCount() = %d, want 3 (1 initial + 2 retries)", got)
	}
}

func TestRetriesDisabledMeansOneInvocation(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	provider := fakeprovider.New()
	provider.Err = errAlwaysFails{}
	store := statestore.NewMemoryStore()

	cfg := testEngineConfig()
	cfg.MaxRetries = 0

	e, err := New(src, provider, store, testRecords(), cfg, testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := runEngine(t, e)
	src.Emit(net.ParseIP("203.0.113.2"), net.ParseIP("203.0.113.1"))
	time.Sleep(50 * time.Millisecond)
	stop()

	if got := provider.CallCount(); got != 1 {
		t.Errorf("provider.CallCount() = %d, want 1 (max_retries=0 means a single attempt)", got)
	}
}

func TestDisabledRecordIsNeverUpdated(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	provider := fakeprovider.New()
	store := statestore.NewMemoryStore()

	disabled := false
	records := []config.RecordConfig{{Name: "home.example.com", Enabled: &disabled}}

	e, err := New(src, provider, store, records, testEngineConfig(), testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stop := runEngine(t, e)
	src.Emit(net.ParseIP("203.0.113.2"), net.ParseIP("203.0.113.1"))
	time.Sleep(50 * time.Millisecond)
	stop()

	if got := provider.CallCount(); got != 0 {
		t.Errorf("provider.CallCount() = %d, want 0 for a disabled record", got)
	}
}

func TestStartedEventCarriesRecordsCount(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	provider := fakeprovider.New()
	store := statestore.NewMemoryStore()

	e, err := New(src, provider, store, testRecords(), testEngineConfig(), testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var collected []model.EngineEvent
	done := make(chan struct{})
	drainEvents(e, &collected, done)

	stop := runEngine(t, e)
	time.Sleep(20 * time.Millisecond)
	stop()
	close(done)

	found := false
	for _, ev := range collected {
		if ev.Kind == model.EventStarted {
			found = true
			if ev.RecordsCount != 1 {
				t.Errorf("Started event RecordsCount = %d, want 1", ev.RecordsCount)
			}
		}
	}
	if !found {
		t.Error("no Started event observed")
	}
}

func TestInitialCurrentFailureIsFatal(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	src.SetCurrentErr(errAlwaysFails{})
	provider := fakeprovider.New()
	store := statestore.NewMemoryStore()

	e, err := New(src, provider, store, testRecords(), testEngineConfig(), testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case runErr := <-done:
		if !ddnserr.Is(runErr, ddnserr.KindIpSource) {
			t.Errorf("Run() error = %v, want a KindIpSource error", runErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after initial Current() failure")
	}
}

func TestFlushFailureOnShutdownIsFatal(t *testing.T) {
	src := fakesource.New(net.ParseIP("203.0.113.1"))
	provider := fakeprovider.New()
	store := failingFlushStore{Store: statestore.NewMemoryStore()}

	e, err := New(src, provider, store, testRecords(), testEngineConfig(), testr.New(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case runErr := <-done:
		if !ddnserr.Is(runErr, ddnserr.KindStateStore) {
			t.Errorf("Run() error = %v, want a KindStateStore error", runErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after flush failure on shutdown")
	}
}

type errAlwaysFails struct{}

func (errAlwaysFails) Error() string { return "simulated provider failure" }

type failingFlushStore struct {
	statestore.Store
}

func (failingFlushStore) Flush(ctx context.Context) error {
	return errAlwaysFails{}
}
