package interview

import "testing"

func TestTimer_ExpiresExactlyOnce(t *testing.T) {
	for _, total := range []int{1, 2, 5, 60, 120} {
		var tm Timer
		tm.Start(total)

		expiries := 0
		for i := 0; i < total+10; i++ {
			if tm.Tick() {
				expiries++
				if i != total-1 {
					t.Errorf("T=%d: expiry on tick %d, want %d", total, i+1, total)
				}
			}
		}
		if expiries != 1 {
			t.Errorf("T=%d: %d expiries, want 1", total, expiries)
		}
		if tm.Remaining() != 0 || tm.Running() || !tm.Expired() {
			t.Errorf("T=%d: remaining=%d running=%v expired=%v after expiry",
				total, tm.Remaining(), tm.Running(), tm.Expired())
		}
	}
}

func TestTimer_PausePreservesRemaining(t *testing.T) {
	const total, k = 120, 7
	var tm Timer
	tm.Start(total)
	for i := 0; i < k; i++ {
		tm.Tick()
	}

	tm.Pause()
	for i := 0; i < 500; i++ {
		if tm.Tick() {
			t.Fatal("paused timer expired")
		}
	}
	tm.Resume()

	if got := tm.Remaining(); got != total-k {
		t.Errorf("remaining = %d, want %d", got, total-k)
	}
	if !tm.Running() {
		t.Error("timer should run after resume")
	}
}

func TestTimer_ResumeAtZeroStaysStopped(t *testing.T) {
	var tm Timer
	tm.Start(1)
	tm.Tick()
	tm.Resume()
	if tm.Running() {
		t.Error("resume with nothing remaining should not run")
	}
}

func TestTimer_RestartClearsExpiry(t *testing.T) {
	var tm Timer
	tm.Start(1)
	if !tm.Tick() {
		t.Fatal("expected expiry")
	}
	tm.Start(2)
	if tm.Expired() {
		t.Error("re-arming should clear expiry")
	}
	tm.Tick()
	if !tm.Tick() {
		t.Error("expected a fresh expiry after re-arming")
	}
}

func TestTimer_NeverNegative(t *testing.T) {
	var tm Timer
	tm.Start(-5)
	tm.Tick()
	if tm.Remaining() != 0 || tm.Running() {
		t.Errorf("remaining=%d running=%v", tm.Remaining(), tm.Running())
	}
}
