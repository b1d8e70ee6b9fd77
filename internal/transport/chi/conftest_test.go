package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/strindex/internal/domain"
	"github.com/kailas-cloud/strindex/internal/domain/query"
	domrec "github.com/kailas-cloud/strindex/internal/domain/record"
	healthuc "github.com/kailas-cloud/strindex/internal/usecase/health"
	nlqueryuc "github.com/kailas-cloud/strindex/internal/usecase/nlquery"
	recorduc "github.com/kailas-cloud/strindex/internal/usecase/record"
)

// fakeRepo is an in-memory record repository. err, when set, fails every call.
type fakeRepo struct {
	mu      sync.Mutex
	records []domrec.Record
	err     error
	clock   time.Time
}

func (f *fakeRepo) FindOne(_ context.Context, value string) (domrec.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domrec.Record{}, f.err
	}
	for _, r := range f.records {
		if r.Value() == value {
			return r, nil
		}
	}
	return domrec.Record{}, domain.ErrNotFound
}

func (f *fakeRepo) Find(_ context.Context, expr query.Expression) ([]domrec.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domrec.Record
	for i := range f.records {
		if expr.Matches(query.RecordRow(&f.records[i])) {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) Create(_ context.Context, rec domrec.Record) (domrec.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domrec.Record{}, f.err
	}
	for _, r := range f.records {
		if r.Value() == rec.Value() {
			return domrec.Record{}, domain.ErrAlreadyExists
		}
	}
	// strictly increasing timestamps keep list order deterministic
	f.clock = f.clock.Add(time.Second)
	stored := rec.WithCreatedAt(f.clock)
	f.records = append(f.records, stored)
	return stored, nil
}

func (f *fakeRepo) DeleteOne(_ context.Context, value string) (domrec.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domrec.Record{}, f.err
	}
	for i, r := range f.records {
		if r.Value() == value {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return r, nil
		}
	}
	return domrec.Record{}, domain.ErrNotFound
}

type testEnv struct {
	repo    *fakeRepo
	pingErr error
	handler http.Handler
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()

	env := &testEnv{repo: &fakeRepo{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}
	records := recorduc.New(env.repo, nlqueryuc.NewInstrumentedTranslator(zap.NewNop()))
	health := healthuc.New(healthuc.Component{
		Name:   "store",
		Pinger: healthuc.PingFunc(func(context.Context) error { return env.pingErr }),
	})

	reg := prometheus.NewRegistry()
	srv := NewServer(records, health, zap.NewNop())
	env.handler = srv.Handler(Options{
		APIKeys: apiKeys,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) seed(t *testing.T, values ...string) {
	t.Helper()
	for _, v := range values {
		body, _ := json.Marshal(map[string]string{"value": v})
		if rr := e.do(t, http.MethodPost, "/strings", string(body)); rr.Code != http.StatusCreated {
			t.Fatalf("seed %q: got %d: %s", v, rr.Code, rr.Body.String())
		}
	}
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
	resp := decodeJSON[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("code: got %q, want %q", resp.Code, code)
	}
	return resp
}
