package cluster

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dropDatabas3/tenantplane/internal/domain"
)

type stubConn struct {
	pingErr error
	closed  bool
}

func (c *stubConn) Ping(ctx context.Context) error { return c.pingErr }
func (c *stubConn) Database(name string) Database { return nil }
func (c *stubConn) Close(ctx context.Context) error { c.closed = true; return nil }

func TestRegistry_ConnMemoizedOnce(t *testing.T) {
	var dials int32
	reg := NewRegistry(RegistryConfig{
		URIs: map[string]string{"billing": "mongodb://billing"},
		Dial: func(ctx context.Context, uri string) (Conn, error) {
			atomic.AddInt32(&dials, 1)
			return &stubConn{}, nil
		},
	})

	// Primer uso concurrente desde múltiples requests: una sola conexión.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.Conn(context.Background(), "billing"); err != nil {
				t.Errorf("Conn: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Fatalf("dial called %d times, want 1", n)
	}

	// Reuso posterior tampoco re-dialea.
	if _, err := reg.Conn(context.Background(), "billing"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Fatalf("dial called %d times after reuse, want 1", n)
	}
}

func TestRegistry_FailedDialNotPoisoned(t *testing.T) {
	var dials int32
	boom := errors.New("network down")
	reg := NewRegistry(RegistryConfig{
		URIs: map[string]string{"crm": "mongodb://crm"},
		Dial: func(ctx context.Context, uri string) (Conn, error) {
			if atomic.AddInt32(&dials, 1) == 1 {
				return nil, boom
			}
			return &stubConn{}, nil
		},
	})

	if _, err := reg.Conn(context.Background(), "crm"); err == nil {
		t.Fatal("expected error on first dial")
	} else if !errors.Is(err, domain.ErrClusterUnreachable) {
		t.Fatalf("error %v is not ErrClusterUnreachable", err)
	}

	// El fallo no queda cacheado: el segundo intento conecta.
	if _, err := reg.Conn(context.Background(), "crm"); err != nil {
		t.Fatalf("second dial should succeed, got %v", err)
	}
	if !reg.Has("crm") {
		t.Fatal("connection not memoized after successful retry")
	}
}

func TestRegistry_UnknownKey(t *testing.T) {
	reg := NewRegistry(RegistryConfig{URIs: map[string]string{}})
	if _, err := reg.Conn(context.Background(), "billing"); err == nil {
		t.Fatal("expected error for unconfigured cluster")
	}
}

func TestServices_FixedOrder(t *testing.T) {
	svcs := Services()
	want := []Service{Billing, CRM, Pingora}
	if len(svcs) != len(want) {
		t.Fatalf("got %d services", len(svcs))
	}
	for i := range want {
		if svcs[i] != want[i] {
			t.Fatalf("service[%d] = %s, want %s", i, svcs[i], want[i])
		}
	}
}
