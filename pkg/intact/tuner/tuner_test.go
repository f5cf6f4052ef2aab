package tuner

import (
	"errors"
	"runtime"
	"testing"
)

func TestResolve(t *testing.T) {
	res := SystemResources{CPUCores: 8}

	tests := []struct {
		name      string
		requested int
		want      int
		wantErr   bool
	}{
		{"zero selects parallelism", 0, 8, false},
		{"one worker", 1, 1, false},
		{"mid range", 4, 4, false},
		{"exactly parallelism", 8, 8, false},
		{"negative", -1, 0, true},
		{"beyond parallelism", 9, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.requested, res)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%d) expected error, got %d", tt.requested, got)
				}
				if !errors.Is(err, ErrInvalidWorkers) {
					t.Errorf("Resolve(%d) error = %v, want ErrInvalidWorkers", tt.requested, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%d): %v", tt.requested, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestResolveDegenerateHost(t *testing.T) {
	got, err := Resolve(0, SystemResources{CPUCores: 0})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != 1 {
		t.Errorf("Resolve(0) on zero-core detection = %d, want 1", got)
	}
}

func TestDetect(t *testing.T) {
	res := Detect()
	if res.CPUCores != runtime.NumCPU() {
		t.Errorf("Detect().CPUCores = %d, want %d", res.CPUCores, runtime.NumCPU())
	}
}

func TestQueueSize(t *testing.T) {
	tests := []struct {
		workers int
		want    int
	}{
		{0, 1},
		{1, 1},
		{16, 16},
	}

	for _, tt := range tests {
		if got := QueueSize(tt.workers); got != tt.want {
			t.Errorf("QueueSize(%d) = %d, want %d", tt.workers, got, tt.want)
		}
	}
}
