package health

import (
	"testing"
)

func TestStatusConstructors(t *testing.T) {
	tests := []struct {
		name        string
		build       func(component, message string) Status
		wantState   string
		wantHealthy bool
	}{
		{"healthy", NewHealthy, "healthy", true},
		{"unhealthy", NewUnhealthy, "unhealthy", false},
		{"degraded", NewDegraded, "degraded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.build("mapping_store", "some message")

			if status.Component != "mapping_store" {
				t.Errorf("expected component 'mapping_store', got %q", status.Component)
			}
			if status.Status != tt.wantState {
				t.Errorf("expected state %q, got %q", tt.wantState, status.Status)
			}
			if status.Message != "some message" {
				t.Errorf("expected message to carry through, got %q", status.Message)
			}
			if status.Healthy != tt.wantHealthy {
				t.Errorf("expected Healthy=%v", tt.wantHealthy)
			}
			if status.Timestamp.IsZero() {
				t.Error("expected timestamp to be set")
			}
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		subs      []Status
		wantState string
	}{
		{
			name:      "no sub-components",
			subs:      nil,
			wantState: "healthy",
		},
		{
			name: "all healthy",
			subs: []Status{
				NewHealthy("a", "ok"),
				NewHealthy("b", "ok"),
			},
			wantState: "healthy",
		},
		{
			name: "one unhealthy wins",
			subs: []Status{
				NewHealthy("a", "ok"),
				NewUnhealthy("b", "down"),
			},
			wantState: "unhealthy",
		},
		{
			name: "degraded without unhealthy",
			subs: []Status{
				NewHealthy("a", "ok"),
				NewDegraded("b", "slow"),
			},
			wantState: "degraded",
		},
		{
			name: "unhealthy beats degraded",
			subs: []Status{
				NewDegraded("a", "slow"),
				NewUnhealthy("b", "down"),
			},
			wantState: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Aggregate("system", tt.subs)

			if result.Status != tt.wantState {
				t.Errorf("expected %q, got %q", tt.wantState, result.Status)
			}
			if result.Component != "system" {
				t.Errorf("expected component 'system', got %q", result.Component)
			}
			if len(result.SubStatuses) != len(tt.subs) {
				t.Errorf("expected %d sub-statuses, got %d", len(tt.subs), len(result.SubStatuses))
			}
		})
	}
}

func TestAggregate_CopiesSubStatuses(t *testing.T) {
	subs := []Status{NewHealthy("a", "ok")}
	result := Aggregate("system", subs)

	subs[0].Status = "unhealthy"
	if result.SubStatuses[0].Status != "healthy" {
		t.Error("aggregate should hold its own copy of sub-statuses")
	}
}
