package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/vox/internal/audio"
	"github.com/foxseedlab/vox/internal/metrics"
	"github.com/foxseedlab/vox/internal/recognizer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockMicrophone struct {
	mu       sync.Mutex
	opened   int
	captures []*audio.ChannelCapture
	openErr  error
}

func (m *mockMicrophone) Open(_ context.Context, _ audio.Format) (audio.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.opened++
	c := audio.NewChannelCapture(16, nil)
	m.captures = append(m.captures, c)
	return c, nil
}

func (m *mockMicrophone) current() *audio.ChannelCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures[len(m.captures)-1]
}

type mockRecognizer struct {
	mu        sync.Mutex
	calls     [][]byte
	recognize func(ctx context.Context, pcm []byte) (recognizer.Result, error)
}

func (m *mockRecognizer) Recognize(ctx context.Context, pcm []byte) (recognizer.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]byte(nil), pcm...))
	fn := m.recognize
	m.mu.Unlock()
	if fn == nil {
		return recognizer.Final(""), nil
	}
	return fn(ctx, pcm)
}

func (m *mockRecognizer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockRecognizer) call(i int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}

type recorder struct {
	mu      sync.Mutex
	results []string
	errs    []error
	stops   []string
}

func (r *recorder) listener() Listener {
	return Listener{
		OnResult: func(text string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.results = append(r.results, text)
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
		OnStop: func(reason string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.stops = append(r.stops, reason)
		},
	}
}

func (r *recorder) resultList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.results...)
}

func (r *recorder) stopReasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stops...)
}

func (r *recorder) errCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func newTestSession(t *testing.T, rec *mockRecognizer, clock *fakeClock) (*Session, *mockMicrophone, *recorder) {
	t.Helper()
	mic := &mockMicrophone{}
	s := New(Config{
		WindowBytes:      4,
		SilenceTimeout:   3 * time.Second,
		CheckInterval:    10 * time.Millisecond,
		RecognizeTimeout: time.Second,
		Now:              clock.Now,
	}, mic, rec)
	r := &recorder{}
	s.Subscribe(r.listener())
	t.Cleanup(func() { _ = s.Stop() })
	return s, mic, r
}

func bufferedBytes(s *Session) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Len()
}

func TestStop_FlushesPartialWindowOnce(t *testing.T) {
	rec := &mockRecognizer{}
	s, mic, _ := newTestSession(t, rec, newFakeClock())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mic.current().Send([]byte{1, 2, 3})
	waitUntil(t, time.Second, func() bool { return bufferedBytes(s) == 3 }, "expected chunk to be buffered")
	if rec.callCount() != 0 {
		t.Fatalf("expected no recognition before a full window, got %d", rec.callCount())
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.callCount() != 1 {
		t.Fatalf("expected exactly one flush call, got %d", rec.callCount())
	}
	if !bytes.Equal(rec.call(0), []byte{1, 2, 3}) {
		t.Fatalf("unexpected flush payload: %v", rec.call(0))
	}
	if s.State() != StateIdle || bufferedBytes(s) != 0 {
		t.Fatalf("expected idle session with empty buffer, got %s/%d", s.State(), bufferedBytes(s))
	}
}

func TestStop_FlushResultIsDelivered(t *testing.T) {
	rec := &mockRecognizer{recognize: func(_ context.Context, _ []byte) (recognizer.Result, error) {
		return recognizer.Final("son söz"), nil
	}}
	s, mic, r := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())
	mic.current().Send([]byte{9})
	waitUntil(t, time.Second, func() bool { return bufferedBytes(s) == 1 }, "expected chunk to be buffered")

	_ = s.Stop()
	if got := r.resultList(); len(got) != 1 || got[0] != "son söz" {
		t.Fatalf("expected flush result to be delivered, got %v", got)
	}
	if got := r.stopReasons(); len(got) != 1 || got[0] != StopReasonManual {
		t.Fatalf("expected manual stop notification after the flush result, got %v", got)
	}
}

func TestStop_EmptyBufferSkipsRecognition(t *testing.T) {
	rec := &mockRecognizer{}
	s, _, _ := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())
	_ = s.Stop()
	if rec.callCount() != 0 {
		t.Fatalf("expected no recognition call, got %d", rec.callCount())
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("expected second stop to be a no-op, got %v", err)
	}
}

func TestStart_IsNoopWhenListening(t *testing.T) {
	rec := &mockRecognizer{}
	s, mic, _ := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())
	_ = s.Start(context.Background())
	if mic.opened != 1 {
		t.Fatalf("expected microphone to be opened once, got %d", mic.opened)
	}
	if s.State() != StateListening {
		t.Fatalf("expected listening, got %s", s.State())
	}
}

func TestStart_MicrophoneError(t *testing.T) {
	mic := &mockMicrophone{openErr: errors.New("device busy")}
	s := New(Config{}, mic, &mockRecognizer{})
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}
}

func TestHandleChunk_SendsEveryFullWindow(t *testing.T) {
	rec := &mockRecognizer{}
	s, mic, _ := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())

	mic.current().Send([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	waitUntil(t, time.Second, func() bool { return rec.callCount() == 2 }, "expected two window recognitions")
	if got := bufferedBytes(s); got != 2 {
		t.Fatalf("expected 2 remaining bytes, got %d", got)
	}
	for i := range 2 {
		if len(rec.call(i)) != 4 {
			t.Fatalf("expected window of 4 bytes, got %d", len(rec.call(i)))
		}
	}
}

func TestResults_OnlyNonEmptyFinalsAreEmitted(t *testing.T) {
	replies := map[byte]recognizer.Result{
		1: recognizer.Partial("merha"),
		2: recognizer.Final("   "),
		3: recognizer.Final("merhaba dünya"),
	}
	rec := &mockRecognizer{recognize: func(_ context.Context, pcm []byte) (recognizer.Result, error) {
		return replies[pcm[0]], nil
	}}
	s, mic, r := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())

	capture := mic.current()
	capture.Send([]byte{1, 1, 1, 1})
	capture.Send([]byte{2, 2, 2, 2})
	capture.Send([]byte{3, 3, 3, 3})

	waitUntil(t, time.Second, func() bool { return len(r.resultList()) == 1 }, "expected final result")
	time.Sleep(30 * time.Millisecond)
	if got := r.resultList(); len(got) != 1 || got[0] != "merhaba dünya" {
		t.Fatalf("unexpected results: %v", got)
	}
}

func TestPartialResultRefreshesSilenceMonitor(t *testing.T) {
	clock := newFakeClock()
	release := make(chan struct{})
	rec := &mockRecognizer{recognize: func(_ context.Context, _ []byte) (recognizer.Result, error) {
		<-release
		return recognizer.Partial("mer"), nil
	}}
	s, mic, _ := newTestSession(t, rec, clock)
	_ = s.Start(context.Background())
	mic.current().Send([]byte{1, 1, 1, 1})
	waitUntil(t, time.Second, func() bool { return rec.callCount() == 1 }, "expected recognition call")

	clock.Advance(2 * time.Second)
	close(release)
	waitUntil(t, time.Second, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.monitor.LastActivity().Equal(clock.Now())
	}, "expected partial to touch the silence monitor")

	clock.Advance(2 * time.Second)
	time.Sleep(30 * time.Millisecond)
	if s.State() != StateListening {
		t.Fatal("expected session to keep listening after partial refreshed activity")
	}
}

func TestTransportErrorKeepsListening(t *testing.T) {
	rec := &mockRecognizer{recognize: func(_ context.Context, _ []byte) (recognizer.Result, error) {
		return recognizer.Result{}, errors.New("connection refused")
	}}
	s, mic, r := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())

	mic.current().Send([]byte{1, 1, 1, 1})
	waitUntil(t, time.Second, func() bool { return r.errCount() == 1 }, "expected error to be forwarded")
	if s.State() != StateListening {
		t.Fatalf("expected listening after transport error, got %s", s.State())
	}

	mic.current().Send([]byte{2, 2, 2, 2})
	waitUntil(t, time.Second, func() bool { return rec.callCount() == 2 }, "expected next window to be sent independently")
}

func TestCaptureErrorIsForwardedWithoutStopping(t *testing.T) {
	rec := &mockRecognizer{}
	s, mic, r := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())

	mic.current().Fail(errors.New("device unplugged"))
	waitUntil(t, time.Second, func() bool { return r.errCount() == 1 }, "expected capture error")
	r.mu.Lock()
	msg := r.errs[0].Error()
	r.mu.Unlock()
	if !strings.Contains(msg, "device unplugged") {
		t.Fatalf("unexpected error: %s", msg)
	}
	if s.State() != StateListening {
		t.Fatalf("expected listening after capture error, got %s", s.State())
	}
}

func TestSilenceTimeoutStopsSession(t *testing.T) {
	clock := newFakeClock()
	rec := &mockRecognizer{}
	s, mic, r := newTestSession(t, rec, clock)
	_ = s.Start(context.Background())
	mic.current().Send([]byte{7, 7})
	waitUntil(t, time.Second, func() bool { return bufferedBytes(s) == 2 }, "expected chunk to be buffered")

	clock.Advance(3 * time.Second)
	time.Sleep(30 * time.Millisecond)
	if s.State() != StateListening {
		t.Fatal("expected session to keep listening at exactly the timeout")
	}

	clock.Advance(time.Millisecond)
	waitUntil(t, time.Second, func() bool { return len(r.stopReasons()) == 1 }, "expected silence timeout to stop the session")
	if s.State() != StateIdle {
		t.Fatalf("expected idle after silence timeout, got %s", s.State())
	}
	if rec.callCount() != 1 || !bytes.Equal(rec.call(0), []byte{7, 7}) {
		t.Fatalf("expected silence stop to flush remaining audio, got %d calls", rec.callCount())
	}
	if got := r.stopReasons(); len(got) != 1 || got[0] != StopReasonSilence {
		t.Fatalf("expected one silence stop notification, got %v", got)
	}
}

func TestOutOfOrderFinalIsDropped(t *testing.T) {
	release := make(chan struct{})
	rec := &mockRecognizer{recognize: func(_ context.Context, pcm []byte) (recognizer.Result, error) {
		if pcm[0] == 1 {
			<-release
			return recognizer.Final("first"), nil
		}
		return recognizer.Final("second"), nil
	}}
	m := metrics.New(prometheus.NewRegistry())
	mic := &mockMicrophone{}
	clock := newFakeClock()
	s := New(Config{WindowBytes: 4, CheckInterval: 10 * time.Millisecond, Now: clock.Now, Metrics: m}, mic, rec)
	r := &recorder{}
	s.Subscribe(r.listener())
	t.Cleanup(func() { _ = s.Stop() })
	_ = s.Start(context.Background())

	mic.current().Send([]byte{1, 1, 1, 1})
	mic.current().Send([]byte{2, 2, 2, 2})
	waitUntil(t, time.Second, func() bool { return len(r.resultList()) == 1 }, "expected newer final")
	close(release)
	waitUntil(t, time.Second, func() bool { return testutil.ToFloat64(m.StaleResults) == 1 }, "expected stale final to be dropped")

	if got := r.resultList(); len(got) != 1 || got[0] != "second" {
		t.Fatalf("unexpected results: %v", got)
	}
}

func TestResultAfterStopIsIgnored(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	rec := &mockRecognizer{recognize: func(_ context.Context, _ []byte) (recognizer.Result, error) {
		defer close(done)
		<-release
		return recognizer.Final("late"), nil
	}}
	s, mic, r := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())
	mic.current().Send([]byte{1, 1, 1, 1})
	waitUntil(t, time.Second, func() bool { return rec.callCount() == 1 }, "expected recognition call")

	_ = s.Stop()
	close(release)
	<-done
	time.Sleep(30 * time.Millisecond)
	if got := r.resultList(); len(got) != 0 {
		t.Fatalf("expected no results after stop, got %v", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	rec := &mockRecognizer{recognize: func(_ context.Context, _ []byte) (recognizer.Result, error) {
		return recognizer.Final("text"), nil
	}}
	s, mic, r := newTestSession(t, rec, newFakeClock())
	other := &recorder{}
	unsubscribe := s.Subscribe(other.listener())
	unsubscribe()
	_ = s.Start(context.Background())

	mic.current().Send([]byte{1, 1, 1, 1})
	waitUntil(t, time.Second, func() bool { return rec.callCount() == 1 }, "expected recognition call")
	time.Sleep(30 * time.Millisecond)
	if len(other.resultList()) != 0 || len(r.resultList()) != 0 {
		t.Fatal("expected no delivery after unsubscribe")
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(message)
}

func TestResultTouchesMonitorWhileListenerIsBusy(t *testing.T) {
	clock := newFakeClock()
	releasePartial := make(chan struct{})
	rec := &mockRecognizer{recognize: func(_ context.Context, pcm []byte) (recognizer.Result, error) {
		if pcm[0] == 1 {
			return recognizer.Final("uzun çeviri"), nil
		}
		<-releasePartial
		return recognizer.Partial("devam"), nil
	}}
	mic := &mockMicrophone{}
	s := New(Config{
		WindowBytes:      4,
		SilenceTimeout:   3 * time.Second,
		CheckInterval:    10 * time.Millisecond,
		RecognizeTimeout: time.Second,
		Now:              clock.Now,
	}, mic, rec)

	listenerEntered := make(chan struct{})
	unblockListener := make(chan struct{})
	var enterOnce sync.Once
	s.Subscribe(Listener{OnResult: func(string) {
		enterOnce.Do(func() { close(listenerEntered) })
		<-unblockListener
	}})
	t.Cleanup(func() {
		select {
		case <-unblockListener:
		default:
			close(unblockListener)
		}
		_ = s.Stop()
	})
	_ = s.Start(context.Background())

	mic.current().Send([]byte{1, 1, 1, 1})
	<-listenerEntered
	mic.current().Send([]byte{2, 2, 2, 2})
	waitUntil(t, time.Second, func() bool { return rec.callCount() == 2 }, "expected second recognition call")

	clock.Advance(2 * time.Second)
	close(releasePartial)
	waitUntil(t, time.Second, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.monitor.LastActivity().Equal(clock.Now())
	}, "expected partial to touch the monitor while the listener is busy")

	clock.Advance(1500 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if s.Stopping() || s.State() != StateListening {
		t.Fatal("expected session to keep listening after a recent result")
	}
}

func TestStoppingDuringFlush(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	rec := &mockRecognizer{recognize: func(_ context.Context, _ []byte) (recognizer.Result, error) {
		close(entered)
		<-release
		return recognizer.Final(""), nil
	}}
	s, mic, _ := newTestSession(t, rec, newFakeClock())
	_ = s.Start(context.Background())
	mic.current().Send([]byte{5})
	waitUntil(t, time.Second, func() bool { return bufferedBytes(s) == 1 }, "expected chunk to be buffered")

	stopped := make(chan struct{})
	go func() {
		_ = s.Stop()
		close(stopped)
	}()
	<-entered
	if !s.Stopping() || s.State() != StateListening {
		t.Fatalf("expected stopping while flushing, got stopping=%v state=%s", s.Stopping(), s.State())
	}
	close(release)
	<-stopped
	if s.Stopping() || s.State() != StateIdle {
		t.Fatalf("expected idle after stop, got stopping=%v state=%s", s.Stopping(), s.State())
	}
}
