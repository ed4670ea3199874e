package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/vetter/pkg/lifecycle"
)

type flag struct{ ready atomic.Bool }

func (f *flag) Ready() bool { return f.ready.Load() }

func TestReadiness(t *testing.T) {
	t.Run("not ready before startup", func(t *testing.T) {
		lc := lifecycle.New()
		if lc.Ready() {
			t.Error("should not be ready before WaitForStartup")
		}
	})

	t.Run("ready after startup without checks", func(t *testing.T) {
		lc := lifecycle.New()
		lc.WaitForStartup()
		if !lc.Ready() {
			t.Error("should be ready after WaitForStartup")
		}
	})

	t.Run("pending checker blocks readiness", func(t *testing.T) {
		lc := lifecycle.New()
		db := &flag{}
		lc.Check("database", db)
		lc.WaitForStartup()

		ready, pending := lc.Status()
		if ready {
			t.Fatal("should not be ready while database is pending")
		}
		if len(pending) != 1 || pending[0] != "database" {
			t.Errorf("pending = %v, want [database]", pending)
		}

		db.ready.Store(true)
		if !lc.Ready() {
			t.Error("should be ready once database reports ready")
		}
	})
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() {
			count.Add(1)
		})
	}

	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks: got %d, want 3", got)
	}
}

func TestShutdown(t *testing.T) {
	t.Run("hooks run after cancellation", func(t *testing.T) {
		lc := lifecycle.New()

		var cleaned atomic.Bool
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			cleaned.Store(true)
		})

		lc.WaitForStartup()

		if err := lc.Shutdown(5 * time.Second); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}
		if !cleaned.Load() {
			t.Error("shutdown hook did not execute")
		}
	})

	t.Run("slow hook times out", func(t *testing.T) {
		lc := lifecycle.New()
		lc.OnShutdown(func() {
			<-lc.Context().Done()
			time.Sleep(500 * time.Millisecond)
		})

		lc.WaitForStartup()

		if err := lc.Shutdown(50 * time.Millisecond); err == nil {
			t.Error("expected timeout error, got nil")
		}
	})
}
