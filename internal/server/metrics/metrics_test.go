package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/logging"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns the counter value, or the histogram sample count, of the
// series of family name whose label values, in label-name order, equal
// labels.
func sample(t *testing.T, m *Metrics, name string, labels ...string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if !labelsMatch(metric, labels) {
				continue
			}
			if h := metric.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("series %s%v not found", name, labels)
	return 0
}

func labelsMatch(metric *dto.Metric, values []string) bool {
	pairs := metric.GetLabel()
	if len(pairs) != len(values) {
		return false
	}
	for i, p := range pairs {
		if p.GetValue() != values[i] {
			return false
		}
	}
	return true
}

func TestCounters(t *testing.T) {
	m := New()

	m.TokenIssued("session")
	m.TokenIssued("session")
	m.TokenIssued("invite")
	m.AuthFailed("bad_credentials")
	m.RateLimited("Login")
	m.QuotaRejected("maxVaults")
	m.StoreSaved(3 * time.Millisecond)
	m.RequestHandled("/safe360.v1.VaultService/Login", "OK", time.Millisecond)

	assert.Equal(t, 2.0, sample(t, m, "safe360_tokens_issued_total", "session"))
	assert.Equal(t, 1.0, sample(t, m, "safe360_tokens_issued_total", "invite"))
	assert.Equal(t, 1.0, sample(t, m, "safe360_auth_failures_total", "bad_credentials"))
	assert.Equal(t, 1.0, sample(t, m, "safe360_ratelimit_rejections_total", "Login"))
	assert.Equal(t, 1.0, sample(t, m, "safe360_quota_rejections_total", "maxVaults"))
	assert.Equal(t, 1.0, sample(t, m, "safe360_grpc_requests_total", "OK", "/safe360.v1.VaultService/Login"))
	assert.Equal(t, 1.0, sample(t, m, "safe360_store_save_duration_seconds"))
}

func TestRouter(t *testing.T) {
	m := New()
	m.TokenIssued("reset")

	healthy := true
	h := NewRouter(m, func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("store unreadable")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	healthy = false
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `safe360_tokens_issued_total{kind="reset"} 1`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer("", NewRouter(New(), nil), logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, lis) }()

	url := "http://" + lis.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.TrimSpace(string(b)) == "ok"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
