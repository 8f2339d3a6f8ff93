package hostinfo

import (
	"context"
	"errors"
	"testing"
)

func TestToMB(t *testing.T) {
	tests := []struct {
		name  string
		bytes uint64
		want  uint64
	}{
		{"zero", 0, 0},
		{"below half", bytesPerMB/2 - 1, 0},
		{"exactly half rounds up", bytesPerMB / 2, 1},
		{"one MB", bytesPerMB, 1},
		{"8GB", 8 * 1024 * bytesPerMB, 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toMB(tt.bytes); got != tt.want {
				t.Errorf("toMB(%d) = %d, want %d", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestStaticProbe(t *testing.T) {
	want := Info{Hostname: "node-1", Platform: "linux", Architecture: "arm64", CPUCount: 4}
	got, err := StaticProbe{Info: want}.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestStaticProbe_Error(t *testing.T) {
	probeErr := errors.New("no /proc")
	_, err := StaticProbe{Err: probeErr}.Snapshot(context.Background())
	if !errors.Is(err, probeErr) {
		t.Errorf("Snapshot() error = %v, want %v", err, probeErr)
	}
}

func TestSystemProbe_Snapshot(t *testing.T) {
	info, err := NewSystemProbe().Snapshot(context.Background())
	if err != nil {
		t.Skipf("host introspection unavailable: %v", err)
	}

	if info.Platform == "" {
		t.Error("Platform is empty")
	}
	if info.Architecture == "" {
		t.Error("Architecture is empty")
	}
	if info.CPUCount < 1 {
		t.Errorf("CPUCount = %d, want >= 1", info.CPUCount)
	}
	if info.FreeMemoryMB > info.TotalMemoryMB {
		t.Errorf("FreeMemoryMB = %d exceeds TotalMemoryMB = %d", info.FreeMemoryMB, info.TotalMemoryMB)
	}
}
