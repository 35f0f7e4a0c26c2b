package health

import (
	"context"
	"sync"
	"testing"
)

func healthyChecker(name string) Checker {
	return func(_ context.Context) Status {
		return Status{Name: name, Healthy: true}
	}
}

func TestCheckAll_EmptyRegistryIsHealthy(t *testing.T) {
	healthy, statuses := NewRegistry().CheckAll(context.Background())
	if !healthy {
		t.Fatal("registry with no probes should be healthy")
	}
	if len(statuses) != 0 {
		t.Fatalf("got %d statuses, want 0", len(statuses))
	}
}

func TestCheckAll_AggregatesInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("database", healthyChecker("database"))
	r.Register("hub", healthyChecker("hub"))

	healthy, statuses := r.CheckAll(context.Background())
	if !healthy {
		t.Fatal("all probes pass, aggregate should be healthy")
	}
	if len(statuses) != 2 || statuses[0].Name != "database" || statuses[1].Name != "hub" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}

func TestCheckAll_OneFailureDegradesAggregate(t *testing.T) {
	r := NewRegistry()
	r.Register("database", healthyChecker("database"))
	r.Register("hub", func(_ context.Context) Status {
		return Status{Name: "hub", Healthy: false, Detail: "connection refused"}
	})

	healthy, statuses := r.CheckAll(context.Background())
	if healthy {
		t.Fatal("aggregate should be unhealthy when any probe fails")
	}
	if statuses[1].Detail != "connection refused" {
		t.Fatalf("got detail %q, want failure detail preserved", statuses[1].Detail)
	}
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Register("probe", healthyChecker("probe"))
		}()
		go func() {
			defer wg.Done()
			r.CheckAll(context.Background())
		}()
	}
	wg.Wait()
}
