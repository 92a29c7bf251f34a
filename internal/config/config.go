package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	RecognizerVosk   = "vosk"
	RecognizerGoogle = "google"

	MicrophonePortAudio = "portaudio"
	MicrophoneWAV       = "wav"
	MicrophoneDiscord   = "discord"

	TranslatorHuggingFace = "huggingface"
	TranslatorOpenAI      = "openai"

	SinkConsole   = "console"
	SinkClipboard = "clipboard"
	SinkWebhook   = "webhook"
	SinkDiscord   = "discord"
	SinkKafka     = "kafka"
)

type Config struct {
	Env string

	RecognizerProvider         string
	VoskServerURL              string
	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string
	RecognizeLanguage          string
	RecognizeTimeout           time.Duration
	SilenceTimeout             time.Duration
	SilenceCheckInterval       time.Duration

	MicrophoneSource        string
	MicrophoneWAVPath       string
	MicrophoneChunkDuration time.Duration

	TranslatorProvider   string
	TranslationModel     string
	HuggingFaceAPIKey    string
	HuggingFaceAPIURL    string
	OpenAIAPIKey         string
	OpenAIModel          string
	TranslationCacheSize int
	PhraseTablePath      string

	ActivationPhrase   string
	DeactivationPhrase string

	OutputSinks          []string
	OutputWebhookURL     string
	DiscordToken         string
	DiscordGuildID       string
	DiscordTextChannelID string
	DiscordVoiceChannel  string
	KafkaBrokers         []string
	KafkaTopic           string

	DatabaseURL          string
	MetricsAddr          string
	DesktopNotifications bool
}

func (c *Config) Validate() error {
	switch c.RecognizerProvider {
	case RecognizerVosk:
		if c.VoskServerURL == "" {
			return fmt.Errorf("VOSK_SERVER_URL is required when RECOGNIZER_PROVIDER=%s", RecognizerVosk)
		}
	case RecognizerGoogle:
		if c.GoogleCloudProjectID == "" || c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID and GOOGLE_CLOUD_CREDENTIALS_JSON are required when RECOGNIZER_PROVIDER=%s", RecognizerGoogle)
		}
	default:
		return fmt.Errorf("RECOGNIZER_PROVIDER is invalid: %q", c.RecognizerProvider)
	}

	switch c.MicrophoneSource {
	case MicrophonePortAudio:
	case MicrophoneWAV:
		if c.MicrophoneWAVPath == "" {
			return fmt.Errorf("MICROPHONE_WAV_PATH is required when MICROPHONE_SOURCE=%s", MicrophoneWAV)
		}
	case MicrophoneDiscord:
		if c.DiscordToken == "" || c.DiscordGuildID == "" || c.DiscordVoiceChannel == "" {
			return fmt.Errorf("DISCORD_TOKEN, DISCORD_GUILD_ID and DISCORD_VOICE_CHANNEL_ID are required when MICROPHONE_SOURCE=%s", MicrophoneDiscord)
		}
	default:
		return fmt.Errorf("MICROPHONE_SOURCE is invalid: %q", c.MicrophoneSource)
	}

	switch c.TranslatorProvider {
	case TranslatorHuggingFace, TranslatorOpenAI:
	default:
		return fmt.Errorf("TRANSLATOR_PROVIDER is invalid: %q", c.TranslatorProvider)
	}

	if c.SilenceTimeout <= 0 {
		return fmt.Errorf("SILENCE_TIMEOUT must be positive, got %s", c.SilenceTimeout)
	}
	if c.SilenceCheckInterval <= 0 {
		return fmt.Errorf("SILENCE_CHECK_INTERVAL must be positive, got %s", c.SilenceCheckInterval)
	}
	if c.MicrophoneChunkDuration <= 0 {
		return fmt.Errorf("MICROPHONE_CHUNK_DURATION must be positive, got %s", c.MicrophoneChunkDuration)
	}
	if c.TranslationCacheSize <= 0 {
		return fmt.Errorf("TRANSLATION_CACHE_SIZE must be positive, got %d", c.TranslationCacheSize)
	}
	if strings.TrimSpace(c.ActivationPhrase) == "" || strings.TrimSpace(c.DeactivationPhrase) == "" {
		return fmt.Errorf("ACTIVATION_PHRASE and DEACTIVATION_PHRASE must not be empty")
	}
	if len(c.OutputSinks) == 0 {
		return fmt.Errorf("OUTPUT_SINKS must list at least one sink")
	}
	for _, sink := range c.OutputSinks {
		if err := c.validateSink(sink); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSink(sink string) error {
	switch sink {
	case SinkConsole, SinkClipboard:
		return nil
	case SinkWebhook:
		if c.OutputWebhookURL == "" {
			return fmt.Errorf("OUTPUT_WEBHOOK_URL is required for the %s sink", SinkWebhook)
		}
	case SinkDiscord:
		if c.DiscordToken == "" || c.DiscordTextChannelID == "" {
			return fmt.Errorf("DISCORD_TOKEN and DISCORD_TEXT_CHANNEL_ID are required for the %s sink", SinkDiscord)
		}
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required for the %s sink", SinkKafka)
		}
	default:
		return fmt.Errorf("OUTPUT_SINKS contains unknown sink %q", sink)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// TranslatorCredential returns the API key of the selected translator; empty means simulated mode.
func (c *Config) TranslatorCredential() string {
	if c.TranslatorProvider == TranslatorOpenAI {
		return c.OpenAIAPIKey
	}
	return c.HuggingFaceAPIKey
}

// TranslatorModel returns the model name sent with each translation request.
func (c *Config) TranslatorModel() string {
	if c.TranslatorProvider == TranslatorOpenAI {
		return c.OpenAIModel
	}
	return c.TranslationModel
}

func (c *Config) UsesDiscord() bool {
	if c.MicrophoneSource == MicrophoneDiscord {
		return true
	}
	for _, sink := range c.OutputSinks {
		if sink == SinkDiscord {
			return true
		}
	}
	return false
}
