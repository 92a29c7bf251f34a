package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/vox/internal/gating"
	"github.com/foxseedlab/vox/internal/notify"
	"github.com/foxseedlab/vox/internal/output"
	"github.com/foxseedlab/vox/internal/repository"
	"github.com/foxseedlab/vox/internal/session"
)

const (
	stopReasonOrphan = "orphaned"

	errorNoticeInterval = 30 * time.Second
)

// Recognition is the listening session driving the pipeline.
type Recognition interface {
	Start(ctx context.Context) error
	Stop() error
	State() session.State
	Stopping() bool
	Subscribe(l session.Listener) (unsubscribe func())
}

type Translator interface {
	Translate(ctx context.Context, text string) string
	WarmUp(ctx context.Context)
}

// Status is a snapshot for health endpoints.
type Status struct {
	SessionState     string `json:"session_state"`
	Active           bool   `json:"active"`
	HistorySessionID string `json:"history_session_id,omitempty"`
	Emitted          int    `json:"emitted"`
}

// Pipeline gates recognized text on the activation phrases, translates it
// and hands new translations to the sink.
type Pipeline struct {
	recognition Recognition
	translator  Translator
	gate        *gating.Gate
	sink        output.Sink
	repo        repository.Repository
	notifier    notify.Notifier

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	warmups     sync.WaitGroup

	mu              sync.Mutex
	lastTranslation string
	lastErrorNotice time.Time
	history         *repository.Session
	nextIndex       int
}

func New(rec Recognition, tr Translator, gate *gating.Gate, sink output.Sink, repo repository.Repository, notifier notify.Notifier) *Pipeline {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		recognition: rec,
		translator:  tr,
		gate:        gate,
		sink:        sink,
		repo:        repo,
		notifier:    notifier,
		ctx:         ctx,
		cancel:      cancel,
	}
	p.unsubscribe = rec.Subscribe(session.Listener{
		OnResult: p.handleResult,
		OnError:  p.handleError,
		OnStop:   p.handleStop,
	})
	return p
}

// Start begins listening with translation already switched on, as if the
// activation phrase had been spoken.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.recognition.State() == session.StateListening && !p.recognition.Stopping() {
		p.gate.SetActive(true)
		return nil
	}
	// A stop still flushing finishes inside recognition.Start, so its OnStop
	// closes the previous history before the new one is opened.
	if err := p.recognition.Start(ctx); err != nil {
		return fmt.Errorf("failed to start recognition: %w", err)
	}
	if err := p.openHistory(ctx); err != nil {
		slog.Error("failed to open history session; continuing without history", "error", err)
	}
	p.gate.SetActive(true)
	p.notify(listeningMessage(p.gate.DeactivationPhrase()))
	p.startWarmup()
	return nil
}

// Stop ends listening, switches translation off and forgets the last
// emitted translation.
func (p *Pipeline) Stop(_ context.Context) error {
	err := p.recognition.Stop()
	p.gate.SetActive(false)
	p.mu.Lock()
	p.lastTranslation = ""
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to stop recognition: %w", err)
	}
	return nil
}

// Close stops listening, detaches from the session and waits for pending warmups.
func (p *Pipeline) Close(ctx context.Context) error {
	err := p.Stop(ctx)
	p.unsubscribe()
	p.cancel()
	p.warmups.Wait()
	return err
}

func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Status{
		SessionState: p.recognition.State().String(),
		Active:       p.gate.Active(),
		Emitted:      p.nextIndex,
	}
	if p.history != nil {
		st.HistorySessionID = p.history.ID
	}
	return st
}

// RecoverHistory completes a history session left running by a previous process.
func (p *Pipeline) RecoverHistory(ctx context.Context) error {
	if p.repo == nil {
		return nil
	}
	orphan, err := p.repo.GetRunningSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to query running session: %w", err)
	}
	if orphan == nil {
		return nil
	}
	slog.Warn("found orphan running session in repository; closing", "session_id", orphan.ID)
	return p.repo.UpdateSessionCompleted(ctx, repository.CompleteSessionInput{
		SessionID:  orphan.ID,
		EndedAt:    time.Now(),
		StopReason: stopReasonOrphan,
	})
}

func (p *Pipeline) handleResult(text string) {
	slog.Info("speech recognition result", "text", text)

	switch p.gate.Inspect(text) {
	case gating.EventActivated:
		slog.Info("activation phrase detected")
		p.notify(listeningMessage(p.gate.DeactivationPhrase()))
		p.startWarmup()
		return
	case gating.EventDeactivated:
		slog.Info("deactivation phrase detected")
		p.notify(pausedMessage(p.gate.ActivationPhrase()))
		return
	}
	if !p.gate.Active() {
		return
	}

	translated := p.translator.Translate(p.ctx, text)
	if strings.TrimSpace(translated) == "" {
		return
	}

	p.mu.Lock()
	if translated == p.lastTranslation {
		p.mu.Unlock()
		slog.Debug("skipping repeated translation", "text", translated)
		return
	}
	p.lastTranslation = translated
	idx := p.nextIndex
	p.nextIndex++
	var sessionID string
	if p.history != nil {
		sessionID = p.history.ID
	}
	p.mu.Unlock()

	now := time.Now()
	if err := p.sink.Emit(p.ctx, output.Output{
		SessionID:    sessionID,
		SegmentIndex: idx,
		Source:       text,
		Text:         translated,
		EmittedAt:    now,
	}); err != nil {
		slog.Error("failed to emit translation", "error", err, "session_id", sessionID)
	}

	if sessionID == "" || p.repo == nil {
		return
	}
	if err := p.repo.InsertSegment(p.ctx, repository.InsertSegmentInput{
		SessionID:      sessionID,
		SourceText:     text,
		TranslatedText: translated,
		SegmentIndex:   idx,
		SpokenAt:       now,
	}); err != nil {
		slog.Error("failed to insert segment", "error", err, "session_id", sessionID)
	}
}

func (p *Pipeline) handleError(err error) {
	if errors.Is(err, context.Canceled) {
		slog.Info("recognition canceled", "error", err)
		return
	}
	slog.Error("speech recognition error", "error", err)

	p.mu.Lock()
	now := time.Now()
	quiet := now.Sub(p.lastErrorNotice) < errorNoticeInterval
	if !quiet {
		p.lastErrorNotice = now
	}
	p.mu.Unlock()
	if !quiet {
		p.notify(messageRecognitionFailed)
	}
}

func (p *Pipeline) handleStop(reason string) {
	slog.Info("listening stopped", "reason", reason)
	p.closeHistory(p.ctx, reason)
	if reason == session.StopReasonSilence {
		p.notify(messageSilenceStopped)
	}
}

func (p *Pipeline) startWarmup() {
	p.warmups.Add(1)
	go func() {
		defer p.warmups.Done()
		p.translator.WarmUp(p.ctx)
	}()
}

func (p *Pipeline) openHistory(ctx context.Context) error {
	if p.repo == nil {
		return nil
	}
	created, err := p.repo.CreateSession(ctx, repository.CreateSessionInput{StartedAt: time.Now()})
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.history = created
	p.nextIndex = 0
	p.mu.Unlock()
	slog.Info("created history session", "session_id", created.ID)
	return nil
}

func (p *Pipeline) closeHistory(ctx context.Context, reason string) {
	p.mu.Lock()
	hist := p.history
	p.history = nil
	p.mu.Unlock()
	if hist == nil || p.repo == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if err := p.repo.UpdateSessionCompleted(ctx, repository.CompleteSessionInput{
		SessionID:  hist.ID,
		EndedAt:    time.Now(),
		StopReason: reason,
	}); err != nil {
		slog.Error("failed to complete history session", "error", err, "session_id", hist.ID)
	}
	p.publishTranscript(ctx, hist)
}

func (p *Pipeline) publishTranscript(ctx context.Context, hist *repository.Session) {
	sessionID := hist.ID
	publisher, ok := p.sink.(output.TranscriptPublisher)
	if !ok {
		return
	}
	segments, err := p.repo.ListSegmentsBySessionID(ctx, sessionID)
	if err != nil {
		slog.Error("failed to list segments", "error", err, "session_id", sessionID)
		return
	}
	if len(segments) == 0 {
		return
	}
	if err := publisher.PublishTranscript(ctx, output.Transcript{
		SessionID: sessionID,
		Filename:  fmt.Sprintf("transcript-%s.txt", sessionID),
		Body:      []byte(FormatTranscript(hist.StartedAt, segments)),
	}); err != nil {
		slog.Error("failed to publish transcript", "error", err, "session_id", sessionID)
	}
}

func (p *Pipeline) notify(message string) {
	if err := p.notifier.Notify(notificationTitle, message); err != nil {
		slog.Warn("failed to show notification", "error", err)
	}
}
