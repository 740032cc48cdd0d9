package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNewWorkerPool(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 4, 4},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0)},
		{"negative uses GOMAXPROCS", -5, runtime.GOMAXPROCS(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewWorkerPool(tt.workers)
			defer p.Close()
			if p.Workers() != tt.want {
				t.Errorf("Workers() = %d, want %d", p.Workers(), tt.want)
			}
			if !p.IsRunning() {
				t.Error("pool should be running after creation")
			}
		})
	}
}

func TestRunExecutesEveryJob(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	var counter atomic.Int64
	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			counter.Add(1)
			return nil
		}
	}
	if err := p.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if counter.Load() != 100 {
		t.Errorf("ran %d jobs, want 100", counter.Load())
	}
}

func TestRunReturnsFirstError(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Close()

	boom := errors.New("boom")
	jobs := []Job{
		func(context.Context) error { return nil },
		func(context.Context) error { return boom },
	}
	if err := p.Run(context.Background(), jobs); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestRunCanceledContext(t *testing.T) {
	p := NewWorkerPool(2)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int64
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			ran.Add(1)
			return nil
		}
	}
	if err := p.Run(ctx, jobs); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
	if ran.Load() != 0 {
		t.Errorf("%d jobs ran after cancellation", ran.Load())
	}
}

func TestRunAfterClose(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()
	p.Close()

	if p.IsRunning() {
		t.Error("pool still running after Close")
	}
	err := p.Run(context.Background(), []Job{func(context.Context) error { return nil }})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Run() error = %v, want %v", err, ErrClosed)
	}
}

func TestRunEmpty(t *testing.T) {
	p := NewWorkerPool(1)
	defer p.Close()
	if err := p.Run(context.Background(), nil); err != nil {
		t.Errorf("Run(nil) error = %v", err)
	}
}
