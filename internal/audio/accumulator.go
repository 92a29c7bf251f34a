package audio

// Accumulator buffers raw PCM bytes and hands them out in fixed-size windows.
// It is not safe for concurrent use; the owning session serializes access.
type Accumulator struct {
	windowSize int
	buf        []byte
}

func NewAccumulator(windowSize int) *Accumulator {
	if windowSize <= 0 {
		windowSize = WindowBytes
	}
	return &Accumulator{windowSize: windowSize}
}

func (a *Accumulator) WindowSize() int {
	return a.windowSize
}

func (a *Accumulator) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	a.buf = append(a.buf, chunk...)
}

// DrainWindow removes exactly one window from the front of the buffer.
// It reports false and leaves the buffer untouched when less than a window is buffered.
func (a *Accumulator) DrainWindow() ([]byte, bool) {
	if len(a.buf) < a.windowSize {
		return nil, false
	}
	window := make([]byte, a.windowSize)
	copy(window, a.buf[:a.windowSize])
	a.buf = a.buf[a.windowSize:]
	return window, true
}

// DrainAll removes and returns whatever is buffered, or nil when empty.
func (a *Accumulator) DrainAll() []byte {
	if len(a.buf) == 0 {
		return nil
	}
	rest := make([]byte, len(a.buf))
	copy(rest, a.buf)
	a.buf = nil
	return rest
}

func (a *Accumulator) Len() int {
	return len(a.buf)
}

func (a *Accumulator) Reset() {
	a.buf = nil
}
