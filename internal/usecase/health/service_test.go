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
	svc := New(&mockPinger{}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["postgres"] != CheckOK {
		t.Errorf("expected postgres %q, got %q", CheckOK, r.Checks["postgres"])
	}
	if r.Checks["redis"] != CheckOK {
		t.Errorf("expected redis %q, got %q", CheckOK, r.Checks["redis"])
	}
}

func TestCheck_PostgresError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["postgres"] != CheckError {
		t.Errorf("expected postgres %q, got %q", CheckError, r.Checks["postgres"])
	}
	if r.Checks["redis"] != CheckOK {
		t.Errorf("expected redis %q, got %q", CheckOK, r.Checks["redis"])
	}
}

func TestCheck_RedisError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["postgres"] != CheckOK {
		t.Errorf("expected postgres %q, got %q", CheckOK, r.Checks["postgres"])
	}
	if r.Checks["redis"] != CheckError {
		t.Errorf("expected redis %q, got %q", CheckError, r.Checks["redis"])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("db down")},
		&mockPinger{err: errors.New("redis down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["postgres"] != CheckError {
		t.Error("expected postgres error")
	}
	if r.Checks["redis"] != CheckError {
		t.Error("expected redis error")
	}
}

func TestCheck_NoRedis(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["postgres"] != CheckOK {
		t.Errorf("expected postgres %q, got %q", CheckOK, r.Checks["postgres"])
	}
	if _, ok := r.Checks["redis"]; ok {
		t.Error("redis check should be absent when redis is nil")
	}
}

func TestCheck_NoRedis_PostgresError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("fail")}, nil)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["postgres"] != CheckError {
		t.Error("expected postgres error")
	}
	if _, ok := r.Checks["redis"]; ok {
		t.Error("redis check should be absent when redis is nil")
	}
}
