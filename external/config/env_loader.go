package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/vox/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env string `env:"ENV" envDefault:"production"`

	RecognizerProvider         string        `env:"RECOGNIZER_PROVIDER" envDefault:"vosk"`
	VoskServerURL              string        `env:"VOSK_SERVER_URL" envDefault:"http://localhost:2700"`
	GoogleCloudProjectID       string        `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string        `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string        `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string        `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"long"`
	RecognizeLanguage          string        `env:"RECOGNIZE_LANGUAGE" envDefault:"tr-TR"`
	RecognizeTimeout           time.Duration `env:"RECOGNIZE_TIMEOUT" envDefault:"10s"`
	SilenceTimeout             time.Duration `env:"SILENCE_TIMEOUT" envDefault:"3s"`
	SilenceCheckInterval       time.Duration `env:"SILENCE_CHECK_INTERVAL" envDefault:"250ms"`

	MicrophoneSource        string        `env:"MICROPHONE_SOURCE" envDefault:"portaudio"`
	MicrophoneWAVPath       string        `env:"MICROPHONE_WAV_PATH"`
	MicrophoneChunkDuration time.Duration `env:"MICROPHONE_CHUNK_DURATION" envDefault:"100ms"`

	TranslatorProvider   string `env:"TRANSLATOR_PROVIDER" envDefault:"huggingface"`
	TranslationModel     string `env:"TRANSLATION_MODEL" envDefault:"Helsinki-NLP/opus-mt-tr-en"`
	HuggingFaceAPIKey    string `env:"HUGGINGFACE_API_KEY"`
	HuggingFaceAPIURL    string `env:"HUGGINGFACE_API_URL" envDefault:"https://api-inference.huggingface.co/models"`
	OpenAIAPIKey         string `env:"OPENAI_API_KEY"`
	OpenAIModel          string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	TranslationCacheSize int    `env:"TRANSLATION_CACHE_SIZE" envDefault:"100"`
	PhraseTablePath      string `env:"PHRASE_TABLE_PATH"`

	ActivationPhrase   string `env:"ACTIVATION_PHRASE" envDefault:"vox başla"`
	DeactivationPhrase string `env:"DEACTIVATION_PHRASE" envDefault:"vox dur"`

	OutputSinks          []string `env:"OUTPUT_SINKS" envDefault:"console" envSeparator:","`
	OutputWebhookURL     string   `env:"OUTPUT_WEBHOOK_URL"`
	DiscordToken         string   `env:"DISCORD_TOKEN"`
	DiscordGuildID       string   `env:"DISCORD_GUILD_ID"`
	DiscordTextChannelID string   `env:"DISCORD_TEXT_CHANNEL_ID"`
	DiscordVoiceChannel  string   `env:"DISCORD_VOICE_CHANNEL_ID"`
	KafkaBrokers         []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic           string   `env:"KAFKA_TOPIC" envDefault:"vox.translations"`

	DatabaseURL          string `env:"DATABASE_URL"`
	MetricsAddr          string `env:"METRICS_ADDR"`
	DesktopNotifications bool   `env:"DESKTOP_NOTIFICATIONS" envDefault:"false"`
}

// Load reads an optional .env file, then the process environment.
func Load(dotenvPaths ...string) (*internalconfig.Config, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		RecognizerProvider:         raw.RecognizerProvider,
		VoskServerURL:              raw.VoskServerURL,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		RecognizeLanguage:          raw.RecognizeLanguage,
		RecognizeTimeout:           raw.RecognizeTimeout,
		SilenceTimeout:             raw.SilenceTimeout,
		SilenceCheckInterval:       raw.SilenceCheckInterval,
		MicrophoneSource:           raw.MicrophoneSource,
		MicrophoneWAVPath:          raw.MicrophoneWAVPath,
		MicrophoneChunkDuration:    raw.MicrophoneChunkDuration,
		TranslatorProvider:         raw.TranslatorProvider,
		TranslationModel:           raw.TranslationModel,
		HuggingFaceAPIKey:          raw.HuggingFaceAPIKey,
		HuggingFaceAPIURL:          raw.HuggingFaceAPIURL,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAIModel:                raw.OpenAIModel,
		TranslationCacheSize:       raw.TranslationCacheSize,
		PhraseTablePath:            raw.PhraseTablePath,
		ActivationPhrase:           raw.ActivationPhrase,
		DeactivationPhrase:         raw.DeactivationPhrase,
		OutputSinks:                raw.OutputSinks,
		OutputWebhookURL:           raw.OutputWebhookURL,
		DiscordToken:               raw.DiscordToken,
		DiscordGuildID:             raw.DiscordGuildID,
		DiscordTextChannelID:       raw.DiscordTextChannelID,
		DiscordVoiceChannel:        raw.DiscordVoiceChannel,
		KafkaBrokers:               raw.KafkaBrokers,
		KafkaTopic:                 raw.KafkaTopic,
		DatabaseURL:                raw.DatabaseURL,
		MetricsAddr:                raw.MetricsAddr,
		DesktopNotifications:       raw.DesktopNotifications,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
