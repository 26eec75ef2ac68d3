package chat

// History is the ordered, append-only sequence of turns for one
// conversation. It is owned by exactly one engine instance and is not
// safe for concurrent use; a conversation runs on a single goroutine.
type History struct {
	turns []Turn
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds turns to the end of the log.
func (h *History) Append(turns ...Turn) {
	h.turns = append(h.turns, turns...)
}

// Turns returns a copy of the log so callers cannot mutate it.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns in the log.
func (h *History) Len() int {
	return len(h.turns)
}

// Reset clears the log. Tool registrations and system instructions
// live elsewhere and are untouched.
func (h *History) Reset() {
	h.turns = nil
}
