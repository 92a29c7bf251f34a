package translator

import (
	"context"
	"net/http"
	"time"

	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/translation"
	"github.com/samber/do/v2"
)

const translationRequestTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (translation.ClientFactory, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewClientFactory(c), nil
	})
}

// NewClientFactory returns the factory for the configured provider.
func NewClientFactory(c *config.Config) translation.ClientFactory {
	return func(_ context.Context, credential string) (translation.Client, error) {
		if c.TranslatorProvider == config.TranslatorOpenAI {
			return NewOpenAIClient(credential, c.OpenAIModel, "")
		}
		return NewHuggingFaceClient(c.HuggingFaceAPIURL, credential, &http.Client{Timeout: translationRequestTimeout})
	}
}
