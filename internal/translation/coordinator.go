package translation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/foxseedlab/vox/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const warmupText = "merhaba"

type State int

const (
	StateNotLoaded State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "not_loaded"
	}
}

type Mode string

const (
	ModeUnknown   Mode = ""
	ModeSimulated Mode = "simulated"
	ModeRemote    Mode = "remote"
)

type Request struct {
	Model  string `json:"model"`
	Inputs string `json:"inputs"`
}

type Response struct {
	TranslationText string `json:"translation_text"`
}

// Client is a remote translation backend.
type Client interface {
	Translate(ctx context.Context, req Request) (Response, error)
}

// ClientFactory builds the remote client from the configured credential.
type ClientFactory func(ctx context.Context, credential string) (Client, error)

type CoordinatorConfig struct {
	Model      string
	Credential string
	NewClient  ClientFactory
	Cache      *Cache
	Phrases    *PhraseTable
	Metrics    *metrics.Metrics
}

// Coordinator initializes the translation client exactly once and serves
// translations through the cache.
type Coordinator struct {
	model      string
	credential string
	newClient  ClientFactory
	cache      *Cache
	phrases    *PhraseTable
	metrics    *metrics.Metrics

	mu     sync.Mutex
	state  State
	mode   Mode
	client Client
	loaded chan struct{}

	group singleflight.Group
}

func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	phrases := cfg.Phrases
	if phrases == nil {
		phrases = DefaultPhrases()
	}
	return &Coordinator{
		model:      cfg.Model,
		credential: cfg.Credential,
		newClient:  cfg.NewClient,
		cache:      cache,
		phrases:    phrases,
		metrics:    cfg.Metrics,
		loaded:     make(chan struct{}),
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode reports ModeUnknown until loading has finished.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Coordinator) ClearCache() {
	c.cache.Clear()
}

// EnsureLoaded returns once the coordinator is Loaded. Only the first caller
// initializes; everyone else waits for it. The only error is ctx expiring
// while waiting.
func (c *Coordinator) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateLoaded:
		c.mu.Unlock()
		return nil
	case StateLoading:
		loaded := c.loaded
		c.mu.Unlock()
		select {
		case <-loaded:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.state = StateLoading
	c.mu.Unlock()

	client, mode := c.initialize(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.client = client
	c.mode = mode
	c.state = StateLoaded
	close(c.loaded)
	c.mu.Unlock()
	slog.Info("translation model loaded", "mode", string(mode), "model", c.model)
	return nil
}

func (c *Coordinator) initialize(ctx context.Context) (Client, Mode) {
	if c.credential == "" || c.newClient == nil {
		slog.Info("no translation credential configured; using simulated translation")
		return nil, ModeSimulated
	}
	client, err := c.newClient(ctx, c.credential)
	if err != nil {
		slog.Error("failed to initialize translation client; falling back to simulated translation", "error", err)
		return nil, ModeSimulated
	}
	return client, ModeRemote
}

// WarmUp loads the model and, in remote mode, sends one throwaway request.
func (c *Coordinator) WarmUp(ctx context.Context) {
	if err := c.EnsureLoaded(ctx); err != nil {
		slog.Warn("translation warmup aborted", "error", err)
		return
	}
	c.mu.Lock()
	client, mode := c.client, c.mode
	c.mu.Unlock()
	if mode != ModeRemote {
		return
	}
	if _, err := client.Translate(ctx, Request{Model: c.model, Inputs: warmupText}); err != nil {
		slog.Warn("translation warmup request failed", "error", err)
		return
	}
	slog.Info("translation model warmed up", "model", c.model)
}

// Translate never fails: any backend error yields text unchanged.
func (c *Coordinator) Translate(ctx context.Context, text string) string {
	if err := c.EnsureLoaded(ctx); err != nil {
		return text
	}
	if v, ok := c.cache.Get(text); ok {
		c.metrics.RecordCacheLookup(true)
		return v
	}
	c.metrics.RecordCacheLookup(false)

	// Callers that joined the flight must not lose the result when the
	// first caller's context ends.
	v, _, _ := c.group.Do(text, func() (any, error) {
		if cached, ok := c.cache.Get(text); ok {
			return cached, nil
		}
		return c.compute(context.WithoutCancel(ctx), text), nil
	})
	return v.(string)
}

func (c *Coordinator) compute(ctx context.Context, text string) string {
	c.mu.Lock()
	client, mode := c.client, c.mode
	c.mu.Unlock()

	if mode != ModeRemote {
		translated, ok := c.phrases.Lookup(text)
		if !ok {
			translated = text
		}
		c.metrics.RecordTranslation(string(ModeSimulated))
		c.cache.Put(text, translated)
		return translated
	}

	resp, err := client.Translate(ctx, Request{Model: c.model, Inputs: text})
	if err != nil {
		slog.Error("translation request failed; passing text through", "error", err)
		c.metrics.RecordTranslationFailure()
		return text
	}
	translated := resp.TranslationText
	if translated == "" {
		translated = text
	}
	c.metrics.RecordTranslation(string(ModeRemote))
	c.cache.Put(text, translated)
	return translated
}
