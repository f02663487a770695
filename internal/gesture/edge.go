package gesture

// EdgeTracker detects false-to-true transitions of a boolean signal such as
// the dominant hand's pinch flag. Holding a pinch fires once.
type EdgeTracker struct {
	prev bool
}

// Rising records the current value and reports whether it just turned on.
func (e *EdgeTracker) Rising(now bool) bool {
	fired := now && !e.prev
	e.prev = now
	return fired
}

// Reset forgets the previous value.
func (e *EdgeTracker) Reset() {
	e.prev = false
}
