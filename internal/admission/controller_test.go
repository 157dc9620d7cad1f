package admission_test

import (
	"sync"
	"testing"

	"codejudge/internal/admission"
	appErr "codejudge/pkg/errors"
)

func TestController_AdmitsUpToCeiling(t *testing.T) {
	c := admission.New(2)

	release1, ok := c.TryAcquire()
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}
	release2, ok := c.TryAcquire()
	if !ok {
		t.Fatal("expected second acquire to succeed")
	}
	if c.InFlight() != 2 {
		t.Fatalf("expected InFlight() == 2, got %d", c.InFlight())
	}

	_, ok = c.TryAcquire()
	if ok {
		t.Fatal("expected third acquire to be throttled")
	}

	release1()
	release2()
	if c.InFlight() != 0 {
		t.Fatalf("expected InFlight() == 0 after release, got %d", c.InFlight())
	}
}

func TestController_ReleaseIsIdempotent(t *testing.T) {
	c := admission.New(1)
	release, ok := c.TryAcquire()
	if !ok {
		t.Fatal("expected acquire to succeed")
	}
	release()
	release()
	if c.InFlight() != 0 {
		t.Fatalf("expected InFlight() == 0 after double release, got %d", c.InFlight())
	}
}

func TestController_MetricHooks(t *testing.T) {
	var admits, releases, throttles int
	c := admission.New(1, admission.WithMetrics(
		func() { admits++ },
		func() { releases++ },
		func() { throttles++ },
	))

	release, ok := c.TryAcquire()
	if !ok {
		t.Fatal("expected acquire to succeed")
	}
	if _, ok := c.TryAcquire(); ok {
		t.Fatal("expected second acquire to be throttled")
	}
	release()

	if admits != 1 || releases != 1 || throttles != 1 {
		t.Fatalf("expected 1/1/1 admit/release/throttle calls, got %d/%d/%d", admits, releases, throttles)
	}
}

func TestController_ConcurrentAcquireNeverExceedsCeiling(t *testing.T) {
	c := admission.New(4)
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, ok := c.TryAcquire()
			if !ok {
				return
			}
			mu.Lock()
			admitted++
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if c.InFlight() != 0 {
		t.Fatalf("expected InFlight() == 0 after all releases, got %d", c.InFlight())
	}
	if admitted == 0 {
		t.Fatal("expected at least some acquires to succeed")
	}
}

func TestErrThrottled(t *testing.T) {
	err := admission.ErrThrottled()
	if appErr.GetCode(err) != appErr.JudgeQueueFull {
		t.Fatalf("expected JudgeQueueFull code, got %v", appErr.GetCode(err))
	}
}
