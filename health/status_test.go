package health

import (
	"errors"
	"testing"
	"time"
)

func TestStatus_StateAccessors(t *testing.T) {
	tests := []struct {
		name          string
		status        Status
		wantHealthy   bool
		wantDegraded  bool
		wantUnhealthy bool
	}{
		{"healthy", Status{Status: "healthy"}, true, false, false},
		{"degraded", Status{Status: "degraded"}, false, true, false},
		{"unhealthy", Status{Status: "unhealthy"}, false, false, true},
		{"empty", Status{Status: ""}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsHealthy(); got != tt.wantHealthy {
				t.Errorf("IsHealthy() = %v, want %v", got, tt.wantHealthy)
			}
			if got := tt.status.IsDegraded(); got != tt.wantDegraded {
				t.Errorf("IsDegraded() = %v, want %v", got, tt.wantDegraded)
			}
			if got := tt.status.IsUnhealthy(); got != tt.wantUnhealthy {
				t.Errorf("IsUnhealthy() = %v, want %v", got, tt.wantUnhealthy)
			}
		})
	}
}

func TestStatus_WithMetrics(t *testing.T) {
	original := Status{
		Component: "mapping_store",
		Status:    "healthy",
		Message:   "adopted",
	}

	metrics := &Metrics{
		Uptime:           time.Hour,
		ErrorCount:       5,
		RecordsProcessed: 100,
	}

	result := original.WithMetrics(metrics)

	if original.Metrics != nil {
		t.Error("WithMetrics should not modify the original status")
	}
	if result.Metrics == nil {
		t.Fatal("WithMetrics should return a status with metrics")
	}
	if result.Metrics.Uptime != time.Hour {
		t.Errorf("expected uptime %v, got %v", time.Hour, result.Metrics.Uptime)
	}
	if result.Metrics.ErrorCount != 5 {
		t.Errorf("expected error count 5, got %d", result.Metrics.ErrorCount)
	}
	if result.Metrics.RecordsProcessed != 100 {
		t.Errorf("expected records processed 100, got %d", result.Metrics.RecordsProcessed)
	}
}

func TestStatus_WithSubStatus(t *testing.T) {
	parent := Status{Component: "parent", Status: "healthy"}

	result := parent.WithSubStatus(Status{Component: "child", Status: "degraded"})

	if len(parent.SubStatuses) != 0 {
		t.Error("WithSubStatus should not modify the original status")
	}
	if len(result.SubStatuses) != 1 || result.SubStatuses[0].Component != "child" {
		t.Errorf("expected one child sub-status, got %+v", result.SubStatuses)
	}
}

func TestFromError(t *testing.T) {
	t.Run("nil error is healthy", func(t *testing.T) {
		status := FromError("reload_controller", nil)
		if !status.IsHealthy() {
			t.Errorf("expected healthy status, got %q", status.Status)
		}
		if status.Component != "reload_controller" {
			t.Errorf("expected component name to carry through, got %q", status.Component)
		}
	})

	t.Run("error is unhealthy with message", func(t *testing.T) {
		status := FromError("reload_controller", errors.New("stat failed"))
		if !status.IsUnhealthy() {
			t.Errorf("expected unhealthy status, got %q", status.Status)
		}
		if status.Message != "stat failed" {
			t.Errorf("expected message to carry through, got %q", status.Message)
		}
	})

	t.Run("error message is sanitized", func(t *testing.T) {
		status := FromError("reload_controller",
			errors.New("fetch https://minio.internal:9000/mappings failed"))
		if status.Message != "fetch [URL] failed" {
			t.Errorf("expected sanitized message, got %q", status.Message)
		}
	})
}
