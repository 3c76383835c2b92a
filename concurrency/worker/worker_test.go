package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"valid", &Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: time.Second}, false},
		{"zero workers", &Config{MaxWorkers: 0, QueueSize: 1, TaskTimeout: time.Second}, true},
		{"zero queue", &Config{MaxWorkers: 1, QueueSize: 0, TaskTimeout: time.Second}, true},
		{"negative timeout", &Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoolProcessesTasks(t *testing.T) {
	pool := NewPool(&Config{MaxWorkers: 2, QueueSize: 16, TaskTimeout: time.Second})
	pool.Start()

	var done atomic.Int64
	for i := 0; i < 8; i++ {
		if err := pool.Submit(func() error {
			done.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	deadline := time.After(2 * time.Second)
	for done.Load() < 8 {
		select {
		case <-deadline:
			t.Fatalf("processed %d tasks, want 8", done.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pool.Stop(ctx)

	metrics := pool.GetMetrics()
	if metrics["completed_tasks"] != 8 {
		t.Errorf("completed_tasks = %d, want 8", metrics["completed_tasks"])
	}
}

func TestPoolQueueFull(t *testing.T) {
	pool := NewPool(&Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: time.Second})
	// Not started, so the queue never drains.

	if err := pool.Submit(func() {}); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if err := pool.Submit(func() {}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("second Submit() error = %v, want %v", err, ErrQueueFull)
	}
}

func TestPoolFailedTask(t *testing.T) {
	pool := NewPool(&Config{MaxWorkers: 1, QueueSize: 4, TaskTimeout: time.Second})
	pool.Start()

	if err := pool.Submit(func() error { return errors.New("boom") }); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for pool.GetMetrics()["failed_tasks"] < 1 {
		select {
		case <-deadline:
			t.Fatal("failed task never recorded")
		case <-time.After(10 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	pool.Stop(ctx)
}

func TestPoolUnsupportedTask(t *testing.T) {
	p := &defaultProcessor{}
	if err := p.Process(42); err == nil {
		t.Error("Process(42) error = nil, want unsupported task error")
	}
}
