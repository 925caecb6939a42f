package interview

// Timer is the per-question countdown. It is advanced by Tick, which the
// event loop calls once per second; it never reads the wall clock.
type Timer struct {
	remaining int
	running   bool
	expired   bool
}

// Start arms the timer with seconds remaining and starts it. Any pending
// expiry from a previous question is cleared.
func (t *Timer) Start(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	t.remaining = seconds
	t.expired = false
	t.running = seconds > 0
}

// Pause stops the countdown without touching the remaining time.
func (t *Timer) Pause() {
	t.running = false
}

// Resume restarts the countdown if any time remains.
func (t *Timer) Resume() {
	if t.remaining > 0 {
		t.running = true
	}
}

// Tick advances the countdown by one second. It returns true exactly once
// per arming, on the tick that brings remaining to zero.
func (t *Timer) Tick() bool {
	if !t.running || t.remaining <= 0 {
		return false
	}
	t.remaining--
	if t.remaining == 0 {
		t.running = false
		t.expired = true
		return true
	}
	return false
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int { return t.remaining }

// Running reports whether the countdown is advancing.
func (t *Timer) Running() bool { return t.running }

// Expired reports whether the countdown reached zero since the last Start.
func (t *Timer) Expired() bool { return t.expired }
