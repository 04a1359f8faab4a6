package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/movers/internal/fetcher"
	"github.com/ternarybob/movers/internal/models"
	"github.com/ternarybob/movers/internal/pipeline"
)

// sample returns the value of the named metric whose labels include want.
func sample(t *testing.T, registry *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, m := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range m.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, want)
	return 0
}

func TestRecorder_FetchEvents(t *testing.T) {
	r := NewRecorder("movers")
	aapl := models.ListedInstrument{Symbol: "AAPL", Exchange: models.ExchangeNASDAQ}
	ibm := models.ListedInstrument{Symbol: "IBM", Exchange: models.ExchangeNYSE}

	r.BatchStarted(1, 1, 2)
	r.SymbolStarted(1, 2, aapl)
	r.RateLimited(aapl, 1, time.Minute, "Note")
	r.SymbolStarted(2, 2, ibm)
	r.SymbolSkipped(ibm, fetcher.SkipZeroVolume, fetcher.ErrZeroVolume)
	r.BatchCompleted(fetcher.BatchProgress{Batch: 1, TotalBatches: 1, Processed: 2, Total: 2, Fetched: 1, Skipped: 1, Elapsed: 90 * time.Second})

	reg := r.Registry()
	assert.Equal(t, 2.0, sample(t, reg, "movers_fetch_symbols_requested_total", nil))
	assert.Equal(t, 1.0, sample(t, reg, "movers_fetch_symbols_skipped_total", map[string]string{"reason": "zero_volume"}))
	assert.Equal(t, 1.0, sample(t, reg, "movers_fetch_rate_limited_total", nil))
	assert.Equal(t, 60.0, sample(t, reg, "movers_fetch_cooldown_seconds_total", nil))
	assert.Equal(t, 2.0, sample(t, reg, "movers_fetch_processed_symbols", nil))
	assert.Equal(t, 2.0, sample(t, reg, "movers_fetch_total_symbols", nil))
	assert.Equal(t, 1.0, sample(t, reg, "movers_fetch_batch_duration_seconds", nil))
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder("movers")
	now := time.Date(2024, time.January, 13, 18, 30, 0, 0, time.UTC)

	r.ObserveRun(&pipeline.Result{Stocks: make([]models.RankedStock, 3), Duration: time.Minute}, nil, now)
	r.ObserveRun(&pipeline.Result{Interrupted: true, Duration: time.Second}, context.Canceled, now)
	r.ObserveRun(&pipeline.Result{}, pipeline.ErrCancelledByOperator, now)
	r.ObserveRun(nil, errors.New("boom"), now)

	reg := r.Registry()
	assert.Equal(t, 1.0, sample(t, reg, "movers_runs_total", map[string]string{"status": "success"}))
	assert.Equal(t, 1.0, sample(t, reg, "movers_runs_total", map[string]string{"status": "interrupted"}))
	assert.Equal(t, 1.0, sample(t, reg, "movers_runs_total", map[string]string{"status": "declined"}))
	assert.Equal(t, 1.0, sample(t, reg, "movers_runs_total", map[string]string{"status": "failed"}))
	assert.Equal(t, 3.0, sample(t, reg, "movers_ranked_stocks", nil))
	assert.Equal(t, float64(now.Unix()), sample(t, reg, "movers_last_success_timestamp_seconds", nil))
	assert.Equal(t, 3.0, sample(t, reg, "movers_run_duration_seconds", nil))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder("movers")
	r.SymbolSkipped(models.ListedInstrument{Symbol: "X"}, fetcher.SkipDataError, fetcher.ErrDataError)

	server := httptest.NewServer(r.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `movers_fetch_symbols_skipped_total{reason="data_error"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
