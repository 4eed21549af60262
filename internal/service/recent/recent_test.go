package recent

import (
	"fmt"
	"testing"

	"event-ingress-service/internal/models"
)

func event(n int, tenant string, confidence float64) models.AcceptedEvent {
	return models.AcceptedEvent{
		EventID:       fmt.Sprintf("e-%d", n),
		Sequence:      uint64(n),
		TenantID:      tenant,
		InteractionID: "int-1",
		Payload:       models.InteractionEvent{TenantID: tenant, Confidence: confidence},
	}
}

func TestAddEvictsOldest(t *testing.T) {
	b := New(3)
	for i := 1; i <= 5; i++ {
		b.Add(event(i, "acme", 0.9))
	}
	if b.Len() != 3 {
		t.Fatalf("Len = %d, want 3", b.Len())
	}

	got := b.List(Filter{})
	if len(got) != 3 {
		t.Fatalf("List returned %d events", len(got))
	}
	// newest first, oldest two evicted
	for i, want := range []string{"e-5", "e-4", "e-3"} {
		if got[i].EventID != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].EventID, want)
		}
	}
}

func TestListFiltersByTenant(t *testing.T) {
	b := New(10)
	b.Add(event(1, "acme", 0.9))
	b.Add(event(2, "globex", 0.9))
	b.Add(event(3, "acme", 0.9))

	got := b.List(Filter{TenantID: "acme"})
	if len(got) != 2 {
		t.Fatalf("List returned %d events, want 2", len(got))
	}
	if got[0].EventID != "e-3" || got[1].EventID != "e-1" {
		t.Errorf("got %s, %s", got[0].EventID, got[1].EventID)
	}
}

func TestListFiltersByConfidence(t *testing.T) {
	b := New(10)
	b.Add(event(1, "acme", 0.3))
	b.Add(event(2, "acme", 0.95))

	got := b.List(Filter{MinConfidence: 0.9})
	if len(got) != 1 || got[0].EventID != "e-2" {
		t.Errorf("List = %+v, want only e-2", got)
	}
}

func TestListHonorsLimit(t *testing.T) {
	b := New(10)
	for i := 1; i <= 6; i++ {
		b.Add(event(i, "acme", 0.9))
	}

	got := b.List(Filter{Limit: 2})
	if len(got) != 2 {
		t.Fatalf("List returned %d events, want 2", len(got))
	}
	if got[0].EventID != "e-6" {
		t.Errorf("got[0] = %s, want e-6", got[0].EventID)
	}
}

func TestNewClampsCapacity(t *testing.T) {
	b := New(0)
	for i := 0; i < DefaultCapacity+10; i++ {
		b.Add(event(i, "acme", 0.5))
	}
	if b.Len() != DefaultCapacity {
		t.Errorf("Len = %d, want %d", b.Len(), DefaultCapacity)
	}
}
