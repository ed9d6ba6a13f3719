package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeService records lifecycle calls against a shared ordered log.
type fakeService struct {
	name      string
	startErr  error
	healthErr error

	mu  *sync.Mutex
	log *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	s.record("start " + s.name)
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.record("stop " + s.name)
	return nil
}

func (s *fakeService) HealthCheck(ctx context.Context) error { return s.healthErr }

func (s *fakeService) record(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.log = append(*s.log, entry)
}

func newFakes(names ...string) ([]Service, *[]string) {
	var mu sync.Mutex
	log := &[]string{}
	services := make([]Service, 0, len(names))
	for _, name := range names {
		services = append(services, &fakeService{name: name, mu: &mu, log: log})
	}
	return services, log
}

func TestRunStartsInOrderAndStopsOnCancel(t *testing.T) {
	services, log := newFakes("store", "bus", "core")
	r := New(services, WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("runner did not shut down")
	}

	got := *log
	if len(got) != 6 {
		t.Fatalf("expected 6 lifecycle entries, got %v", got)
	}
	for i, want := range []string{"start store", "start bus", "start core"} {
		if got[i] != want {
			t.Fatalf("startup order wrong: %v", got)
		}
	}
	stops := map[string]bool{}
	for _, entry := range got[3:] {
		stops[entry] = true
	}
	if !stops["stop store"] || !stops["stop bus"] || !stops["stop core"] {
		t.Fatalf("not all services stopped: %v", got)
	}
}

func TestStartFailureStopsStartedServices(t *testing.T) {
	services, log := newFakes("store", "bus", "core")
	services[1].(*fakeService).startErr = errors.New("port in use")

	r := New(services, WithShutdownTimeout(time.Second))
	err := r.Run(context.Background())
	if err == nil || !errors.Is(err, services[1].(*fakeService).startErr) {
		t.Fatalf("expected wrapped start error, got %v", err)
	}

	got := *log
	want := []string{"start store", "start bus", "stop store"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	services, _ := newFakes("store", "core")
	r := New(services)

	if err := r.HealthCheck(context.Background()); err != nil {
		t.Fatalf("healthy services: %v", err)
	}

	services[1].(*fakeService).healthErr = errors.New("db unreachable")
	err := r.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected unhealthy service to surface")
	}
}
