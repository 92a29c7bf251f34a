package audio

import "time"

const DefaultSilenceTimeout = 3 * time.Second

// SilenceMonitor remembers the last moment the session saw activity:
// new audio or a new recognition result. It never stops anything itself.
type SilenceMonitor struct {
	now          func() time.Time
	lastActivity time.Time
}

func NewSilenceMonitor(now func() time.Time) *SilenceMonitor {
	if now == nil {
		now = time.Now
	}
	m := &SilenceMonitor{now: now}
	m.lastActivity = now()
	return m
}

func (m *SilenceMonitor) Touch() {
	m.lastActivity = m.now()
}

func (m *SilenceMonitor) TouchAt(t time.Time) {
	m.lastActivity = t
}

func (m *SilenceMonitor) LastActivity() time.Time {
	return m.lastActivity
}

// IsTimedOut reports whether strictly more than timeout has elapsed since the last activity.
func (m *SilenceMonitor) IsTimedOut(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultSilenceTimeout
	}
	return now.Sub(m.lastActivity) > timeout
}
