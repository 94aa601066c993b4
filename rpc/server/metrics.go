package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Server Metrics
// --------------------------------------------------------------------------

// serverMetrics holds the counters of one server instance. Every server gets its
// own metrics.Set so that several servers (e.g. in tests) do not share counters.
type serverMetrics struct {
	set *metrics.Set

	accepted       *metrics.Counter
	protocolErrors *metrics.Counter
	storageErrors  *metrics.Counter
	storeLatency   *metrics.Histogram
}

func newServerMetrics(activeConnections func() int) *serverMetrics {
	set := metrics.NewSet()
	set.NewGauge("phonebook_active_connections", func() float64 {
		return float64(activeConnections())
	})
	return &serverMetrics{
		set:            set,
		accepted:       set.NewCounter("phonebook_accepted_connections_total"),
		protocolErrors: set.NewCounter("phonebook_protocol_errors_total"),
		storageErrors:  set.NewCounter("phonebook_storage_errors_total"),
		storeLatency:   set.NewHistogram("phonebook_store_duration_seconds"),
	}
}

// request counts one decoded request
func (m *serverMetrics) request(action common.Action) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`phonebook_requests_total{action=%q}`, action)).Inc()
}

// serveHTTP exposes the metrics at /metrics until ctx is cancelled
func (m *serverMetrics) serveHTTP(ctx context.Context, endpoint string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		m.set.WritePrometheus(w)
	})
	srv := &http.Server{Addr: endpoint, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		Logger.Infof("metrics available at http://%s/metrics", endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("metrics endpoint failed: %v", err)
		}
	}()
}

// --------------------------------------------------------------------------
// Instrumented Store
// --------------------------------------------------------------------------

// instrumentedStore records the latency of every store call and counts storage errors
type instrumentedStore struct {
	store.IRecordStore
	metrics *serverMetrics
}

func (s *instrumentedStore) observe(start time.Time, err error) {
	s.metrics.storeLatency.UpdateDuration(start)
	if store.IsStorageError(err) {
		s.metrics.storageErrors.Inc()
	}
}

func (s *instrumentedStore) Enumerate() ([]store.Record, error) {
	start := time.Now()
	records, err := s.IRecordStore.Enumerate()
	s.observe(start, err)
	return records, err
}

func (s *instrumentedStore) Search(field store.Field, substr string) ([]store.Record, error) {
	start := time.Now()
	records, err := s.IRecordStore.Search(field, substr)
	s.observe(start, err)
	return records, err
}

func (s *instrumentedStore) Add(record store.Record) error {
	start := time.Now()
	err := s.IRecordStore.Add(record)
	s.observe(start, err)
	return err
}

func (s *instrumentedStore) Delete(target string) (bool, error) {
	start := time.Now()
	deleted, err := s.IRecordStore.Delete(target)
	s.observe(start, err)
	return deleted, err
}
