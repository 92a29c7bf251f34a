package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/vox/internal/audio"
	"github.com/foxseedlab/vox/internal/metrics"
	"github.com/foxseedlab/vox/internal/recognizer"
)

const (
	DefaultCheckInterval    = 250 * time.Millisecond
	DefaultRecognizeTimeout = 10 * time.Second

	StopReasonManual  = "manual"
	StopReasonSilence = "silence_timeout"
)

var ErrNoMicrophone = errors.New("session has no microphone")

type State int

const (
	StateIdle State = iota
	StateListening
)

func (s State) String() string {
	if s == StateListening {
		return "listening"
	}
	return "idle"
}

// Listener receives session events. Callbacks run one at a time in delivery
// order and must not call Start or Stop on the same session.
type Listener struct {
	OnResult func(text string)
	OnError  func(err error)
	// OnStop runs once listening has ended, with the stop reason.
	OnStop func(reason string)
}

type Config struct {
	Format           audio.Format
	WindowBytes      int
	SilenceTimeout   time.Duration
	CheckInterval    time.Duration
	RecognizeTimeout time.Duration
	Now              func() time.Time
	Metrics          *metrics.Metrics
}

func (c Config) withDefaults() Config {
	if c.Format == (audio.Format{}) {
		c.Format = audio.DefaultFormat()
	}
	if c.WindowBytes <= 0 {
		c.WindowBytes = c.Format.BytesPerSecond()
	}
	if c.SilenceTimeout <= 0 {
		c.SilenceTimeout = audio.DefaultSilenceTimeout
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = DefaultCheckInterval
	}
	if c.RecognizeTimeout <= 0 {
		c.RecognizeTimeout = DefaultRecognizeTimeout
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Session turns a microphone stream into recognized final texts. Audio is cut
// into fixed windows, each recognized independently, and listening ends on
// Stop or after a period with neither new audio nor new results.
type Session struct {
	cfg Config
	mic audio.Microphone
	rec recognizer.Recognizer

	// opMu serializes Start and Stop.
	opMu sync.Mutex
	// deliverMu is taken before mu and keeps listener calls in order.
	deliverMu sync.Mutex

	mu           sync.Mutex
	state        State
	stopping     bool
	generation   uint64
	acc          *audio.Accumulator
	monitor      *audio.SilenceMonitor
	capture      audio.Capture
	cancel       context.CancelFunc
	baseCtx      context.Context
	nextSeq      uint64
	lastFinalSeq uint64
	listener     *Listener
	listenerID   uint64
}

func New(cfg Config, mic audio.Microphone, rec recognizer.Recognizer) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		cfg:     cfg,
		mic:     mic,
		rec:     rec,
		acc:     audio.NewAccumulator(cfg.WindowBytes),
		monitor: audio.NewSilenceMonitor(cfg.Now),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stopping reports whether a stop is in progress. State still reads
// StateListening until the last window has been recognized.
func (s *Session) Stopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// Subscribe replaces the current listener. The returned func removes it
// again unless another listener has subscribed in the meantime.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.listenerID++
	id := s.listenerID
	s.listener = &l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.listenerID == id {
			s.listener = nil
		}
	}
}

// Start opens the microphone and begins listening. It is a no-op while
// already listening.
func (s *Session) Start(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if s.State() == StateListening {
		return nil
	}
	if s.mic == nil {
		return ErrNoMicrophone
	}

	baseCtx := context.WithoutCancel(ctx)
	runCtx, cancel := context.WithCancel(baseCtx)
	capture, err := s.mic.Open(runCtx, s.cfg.Format)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open microphone: %w", err)
	}

	s.mu.Lock()
	s.acc.Reset()
	s.monitor.Touch()
	s.state = StateListening
	s.stopping = false
	s.generation++
	gen := s.generation
	s.nextSeq = 0
	s.lastFinalSeq = 0
	s.capture = capture
	s.cancel = cancel
	s.baseCtx = baseCtx
	s.mu.Unlock()

	s.cfg.Metrics.RecordSessionStarted()
	slog.Info("recognition session started", "generation", gen, "window_bytes", s.cfg.WindowBytes, "silence_timeout", s.cfg.SilenceTimeout.String())
	go s.run(runCtx, gen, capture)
	return nil
}

// Stop ends listening. Buffered audio shorter than a window is recognized in
// one last call and its result delivered before Stop returns.
func (s *Session) Stop() error {
	return s.stop(StopReasonManual)
}

func (s *Session) stop(reason string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.state != StateListening || s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	gen := s.generation
	remainder := s.acc.DrainAll()
	var seq uint64
	if len(remainder) > 0 {
		s.nextSeq++
		seq = s.nextSeq
	}
	capture, cancel, baseCtx := s.capture, s.cancel, s.baseCtx
	s.mu.Unlock()

	cancel()
	var closeErr error
	if err := capture.Close(); err != nil {
		closeErr = fmt.Errorf("failed to close microphone: %w", err)
		slog.Warn("failed to close microphone", "error", err, "generation", gen)
	}

	if len(remainder) > 0 {
		slog.Debug("flushing remaining audio", "generation", gen, "seq", seq, "pcm_bytes", len(remainder))
		s.cfg.Metrics.RecordWindowSent()
		s.recognizeWindow(baseCtx, gen, seq, remainder)
	}

	s.deliverMu.Lock()
	s.mu.Lock()
	s.state = StateIdle
	s.stopping = false
	s.generation++
	s.acc.Reset()
	s.capture = nil
	s.cancel = nil
	l := s.listener
	s.mu.Unlock()
	if l != nil && l.OnStop != nil {
		l.OnStop(reason)
	}
	s.deliverMu.Unlock()

	s.cfg.Metrics.RecordSessionStopped(reason)
	slog.Info("recognition session stopped", "generation", gen, "reason", reason)
	return closeErr
}

func (s *Session) run(ctx context.Context, gen uint64, capture audio.Capture) {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	chunks := capture.Chunks()
	errs := capture.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-chunks:
			if !ok {
				slog.Info("microphone stream ended", "generation", gen)
				chunks = nil
				continue
			}
			s.handleChunk(ctx, gen, chunk)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.deliverError(gen, fmt.Errorf("microphone capture failed: %w", err))
		case <-ticker.C:
			s.checkSilence(gen)
		}
	}
}

type window struct {
	seq uint64
	pcm []byte
}

func (s *Session) handleChunk(ctx context.Context, gen uint64, chunk []byte) {
	s.mu.Lock()
	if !s.activeLocked(gen) {
		s.mu.Unlock()
		return
	}
	s.acc.Append(chunk)
	s.monitor.Touch()
	var windows []window
	for {
		pcm, ok := s.acc.DrainWindow()
		if !ok {
			break
		}
		s.nextSeq++
		windows = append(windows, window{seq: s.nextSeq, pcm: pcm})
	}
	baseCtx := s.baseCtx
	s.mu.Unlock()

	for _, w := range windows {
		s.cfg.Metrics.RecordWindowSent()
		go s.recognizeWindow(baseCtx, gen, w.seq, w.pcm)
	}
	if ctx.Err() == nil {
		s.checkSilence(gen)
	}
}

func (s *Session) checkSilence(gen uint64) {
	s.mu.Lock()
	timedOut := s.activeLocked(gen) && s.monitor.IsTimedOut(s.cfg.Now(), s.cfg.SilenceTimeout)
	s.mu.Unlock()
	if !timedOut {
		return
	}
	slog.Info("silence timeout reached", "generation", gen, "timeout", s.cfg.SilenceTimeout.String())
	if err := s.stop(StopReasonSilence); err != nil {
		slog.Warn("failed to stop session after silence", "error", err)
	}
}

// activeLocked reports whether gen is the current listening generation and
// no stop is in progress.
func (s *Session) activeLocked(gen uint64) bool {
	return s.state == StateListening && !s.stopping && s.generation == gen
}

func (s *Session) recognizeWindow(ctx context.Context, gen, seq uint64, pcm []byte) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.RecognizeTimeout)
	defer cancel()

	started := time.Now()
	res, err := s.rec.Recognize(callCtx, pcm)
	s.cfg.Metrics.RecordRecognition(string(res.Kind), err, time.Since(started).Seconds())
	if err != nil {
		slog.Warn("recognition request failed", "error", err, "generation", gen, "seq", seq, "pcm_bytes", len(pcm))
		s.deliverError(gen, fmt.Errorf("recognition of window %d failed: %w", seq, err))
		return
	}
	s.deliverResult(gen, seq, res)
}

func (s *Session) deliverResult(gen, seq uint64, res recognizer.Result) {
	if res.IsEmpty() {
		return
	}

	// Activity counts on arrival, even while an earlier result is still
	// being handled by the listener.
	s.mu.Lock()
	if s.state == StateListening && s.generation == gen {
		s.monitor.Touch()
	}
	s.mu.Unlock()
	if res.Kind != recognizer.KindFinal {
		return
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.state != StateListening || s.generation != gen {
		s.mu.Unlock()
		slog.Debug("ignoring result for inactive session", "generation", gen, "seq", seq)
		return
	}
	if seq <= s.lastFinalSeq {
		last := s.lastFinalSeq
		s.mu.Unlock()
		s.cfg.Metrics.RecordStaleResult()
		slog.Debug("dropping out-of-order final result", "seq", seq, "last_final_seq", last)
		return
	}
	s.lastFinalSeq = seq
	l := s.listener
	s.mu.Unlock()

	if l != nil && l.OnResult != nil {
		l.OnResult(res.Text)
	}
}

func (s *Session) deliverError(gen uint64, err error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.state != StateListening || s.generation != gen {
		s.mu.Unlock()
		return
	}
	l := s.listener
	s.mu.Unlock()

	if l != nil && l.OnError != nil {
		l.OnError(err)
	}
}
