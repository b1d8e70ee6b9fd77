package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(
		Component{Name: "database", Pinger: &mockPinger{}},
		Component{Name: "index", Pinger: &mockPinger{}},
	)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["index"] != CheckOK {
		t.Errorf("expected index %q, got %q", CheckOK, r.Checks["index"])
	}
}

func TestCheck_PartialFailure(t *testing.T) {
	svc := New(
		Component{Name: "database", Pinger: &mockPinger{}},
		Component{Name: "index", Pinger: &mockPinger{err: errors.New("unknown index")}},
	)
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["index"] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks["index"])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New(Component{Name: "database", Pinger: &mockPinger{err: errors.New("conn refused")}})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Error("expected database error")
	}
}

func TestCheck_PingFuncSeesDeadline(t *testing.T) {
	var hadDeadline bool
	svc := New(Component{Name: "database", Pinger: PingFunc(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})})

	if r := svc.Check(context.Background()); r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if !hadDeadline {
		t.Error("component check must run with a timeout")
	}
}

func TestCheck_NoComponents(t *testing.T) {
	r := New().Check(context.Background())
	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if len(r.Checks) != 0 {
		t.Errorf("expected no checks, got %d", len(r.Checks))
	}
}
