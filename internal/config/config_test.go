package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:                     "development",
		RecognizerProvider:      RecognizerVosk,
		VoskServerURL:           "http://localhost:2700",
		RecognizeTimeout:        10 * time.Second,
		SilenceTimeout:          3 * time.Second,
		SilenceCheckInterval:    250 * time.Millisecond,
		MicrophoneSource:        MicrophonePortAudio,
		MicrophoneChunkDuration: 100 * time.Millisecond,
		TranslatorProvider:      TranslatorHuggingFace,
		TranslationModel:        "Helsinki-NLP/opus-mt-tr-en",
		TranslationCacheSize:    100,
		ActivationPhrase:        "vox başla",
		DeactivationPhrase:      "vox dur",
		OutputSinks:             []string{SinkConsole},
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_UnknownRecognizer(t *testing.T) {
	cfg := validConfig()
	cfg.RecognizerProvider = "whisper"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown recognizer provider")
	}
}

func TestValidate_GoogleRequiresCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.RecognizerProvider = RecognizerGoogle
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when google credentials are missing")
	}
	cfg.GoogleCloudProjectID = "project-id"
	cfg.GoogleCloudCredentialsJSON = `{"type":"service_account"}`
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_WAVRequiresPath(t *testing.T) {
	cfg := validConfig()
	cfg.MicrophoneSource = MicrophoneWAV
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when wav path is missing")
	}
}

func TestValidate_InvalidSilenceTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.SilenceTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive silence timeout")
	}
}

func TestValidate_SinkRequirements(t *testing.T) {
	cases := []struct {
		name string
		sink string
	}{
		{name: "webhook", sink: SinkWebhook},
		{name: "discord", sink: SinkDiscord},
		{name: "kafka", sink: SinkKafka},
		{name: "unknown", sink: "printer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.OutputSinks = []string{SinkConsole, tc.sink}
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for sink %q without its settings", tc.sink)
			}
		})
	}
}

func TestValidate_MissingSinks(t *testing.T) {
	cfg := validConfig()
	cfg.OutputSinks = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when no sinks are configured")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}

func TestTranslatorCredential(t *testing.T) {
	cfg := validConfig()
	cfg.HuggingFaceAPIKey = "hf-key"
	cfg.OpenAIAPIKey = "openai-key"
	if got := cfg.TranslatorCredential(); got != "hf-key" {
		t.Fatalf("expected hf-key, got %q", got)
	}
	if got := cfg.TranslatorModel(); got != "Helsinki-NLP/opus-mt-tr-en" {
		t.Fatalf("unexpected model %q", got)
	}
	cfg.TranslatorProvider = TranslatorOpenAI
	cfg.OpenAIModel = "gpt-4o-mini"
	if got := cfg.TranslatorCredential(); got != "openai-key" {
		t.Fatalf("expected openai-key, got %q", got)
	}
	if got := cfg.TranslatorModel(); got != "gpt-4o-mini" {
		t.Fatalf("unexpected model %q", got)
	}
}

func TestUsesDiscord(t *testing.T) {
	cfg := validConfig()
	if cfg.UsesDiscord() {
		t.Fatal("expected discord to be unused")
	}
	cfg.OutputSinks = append(cfg.OutputSinks, SinkDiscord)
	if !cfg.UsesDiscord() {
		t.Fatal("expected discord sink to require discord")
	}
}
