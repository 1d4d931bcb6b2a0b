package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"PairWatch/internal/domain/models"
	icache "PairWatch/internal/service/cache"
	"PairWatch/pkg/logger"

	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

type stubMetrics struct {
	mu     sync.Mutex
	alerts map[string]int
	errors map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{alerts: make(map[string]int), errors: make(map[string]int)}
}

func (m *stubMetrics) RecordAlert(backend string) {
	m.mu.Lock()
	m.alerts[backend]++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordLastPrice(string, float64) {}
func (m *stubMetrics) RecordDeviation(string, float64) {}
func (m *stubMetrics) RecordResidual(float64)          {}
func (m *stubMetrics) RecordCorrelation(float64)       {}
func (m *stubMetrics) RecordLatency(string, float64)   {}

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.Alert
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, a *models.Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, a)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type fakeStorage struct {
	mu     sync.Mutex
	stored []*models.Alert
}

func (s *fakeStorage) Store(_ context.Context, a *models.Alert) error {
	s.mu.Lock()
	s.stored = append(s.stored, a)
	s.mu.Unlock()
	return nil
}

func (s *fakeStorage) Query(context.Context, time.Time, time.Time, int) ([]*models.Alert, error) {
	return nil, nil
}
func (s *fakeStorage) Health(context.Context) error { return nil }
func (s *fakeStorage) Close() error                 { return nil }

func alertFixture(residual float64) *models.Alert {
	return &models.Alert{
		Pair:            "ethusdt/btcusdt",
		TargetSymbol:    "ethusdt",
		ReferenceSymbol: "btcusdt",
		Residual:        residual,
		Threshold:       1.0,
		Timestamp:       time.Now().UTC(),
	}
}

func TestDispatcherLogBackendOnlyRemembers(t *testing.T) {
	pub := &fakePublisher{}
	m := newStubMetrics()
	d := NewAlertDispatcher(pub, nil, nil, m, testLogger(t), "log", 0, 10)

	d.Emit(context.Background(), alertFixture(3.0))

	require.Zero(t, pub.count())
	require.Len(t, d.Recent(0), 1)
	require.Equal(t, 1, m.alerts["log"])
}

func TestDispatcherKafkaBackendPublishes(t *testing.T) {
	pub := &fakePublisher{}
	d := NewAlertDispatcher(pub, nil, nil, newStubMetrics(), testLogger(t), "kafka", 0, 10)

	d.Emit(context.Background(), alertFixture(3.0))
	require.Equal(t, 1, pub.count())
}

func TestDispatcherClickHouseBackendStores(t *testing.T) {
	store := &fakeStorage{}
	d := NewAlertDispatcher(nil, store, nil, newStubMetrics(), testLogger(t), "clickhouse", 0, 10)

	d.Emit(context.Background(), alertFixture(3.0))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.stored, 1)
}

func TestDispatcherDeliveryFailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	m := newStubMetrics()
	d := NewAlertDispatcher(pub, nil, nil, m, testLogger(t), "kafka", 0, 10)

	d.Emit(context.Background(), alertFixture(3.0))

	require.Equal(t, 1, m.errors["alert_deliver"])
	require.Zero(t, m.alerts["kafka"])
	// the alert is still visible in the recent ring
	require.Len(t, d.Recent(0), 1)
}

func TestDispatcherCooldownSuppressesDelivery(t *testing.T) {
	pub := &fakePublisher{}
	m := newStubMetrics()
	d := NewAlertDispatcher(pub, nil, icache.NewTTLCache(), m, testLogger(t), "kafka", time.Minute, 10)

	d.Emit(context.Background(), alertFixture(3.0))
	d.Emit(context.Background(), alertFixture(4.0))

	require.Equal(t, 1, pub.count(), "second delivery inside the cooldown must be suppressed")
	require.Equal(t, 1, m.errors["alert_cooldown"])
	require.Len(t, d.Recent(0), 2, "suppressed alerts still land in the ring")
}

func TestDispatcherRecentNewestFirstAndBounded(t *testing.T) {
	d := NewAlertDispatcher(nil, nil, nil, newStubMetrics(), testLogger(t), "log", 0, 3)

	for i := 1; i <= 5; i++ {
		d.Emit(context.Background(), alertFixture(float64(i)))
	}

	recent := d.Recent(0)
	require.Len(t, recent, 3)
	require.Equal(t, 5.0, recent[0].Residual)
	require.Equal(t, 4.0, recent[1].Residual)
	require.Equal(t, 3.0, recent[2].Residual)

	require.Len(t, d.Recent(2), 2)
}
