package audio

import "sync"

// ChannelCapture is a Capture backed by buffered channels. Producers call
// Send and Fail; Close stops the producer through the registered stop func.
type ChannelCapture struct {
	chunks chan []byte
	errs   chan error
	done   chan struct{}

	mu       sync.Mutex
	finished bool
	stop     func() error
	once     sync.Once
	stopErr  error
}

func NewChannelCapture(buffer int, stop func() error) *ChannelCapture {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChannelCapture{
		chunks: make(chan []byte, buffer),
		errs:   make(chan error, 4),
		done:   make(chan struct{}),
		stop:   stop,
	}
}

func (c *ChannelCapture) Chunks() <-chan []byte { return c.chunks }
func (c *ChannelCapture) Errors() <-chan error  { return c.errs }

// Done is closed when Close has been called.
func (c *ChannelCapture) Done() <-chan struct{} { return c.done }

// Send delivers a chunk; it reports false once the capture is closed.
func (c *ChannelCapture) Send(chunk []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.chunks <- chunk:
		return true
	case <-c.done:
		return false
	}
}

// Fail reports a capture error without blocking the producer.
func (c *ChannelCapture) Fail(err error) {
	if err == nil {
		return
	}
	select {
	case c.errs <- err:
	default:
	}
}

// Finish closes both channels. Producers call it exactly when they stop sending.
func (c *ChannelCapture) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return
	}
	c.finished = true
	close(c.chunks)
	close(c.errs)
}

func (c *ChannelCapture) Close() error {
	c.once.Do(func() {
		close(c.done)
		if c.stop != nil {
			c.stopErr = c.stop()
		}
	})
	return c.stopErr
}
