package recognizer

import (
	"net/http"

	"github.com/foxseedlab/vox/internal/config"
	"github.com/foxseedlab/vox/internal/recognizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (recognizer.Recognizer, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.RecognizerProvider == config.RecognizerGoogle {
			return NewCloudSpeechRecognizer(CloudSpeechConfig{
				ProjectID:       c.GoogleCloudProjectID,
				CredentialsJSON: c.GoogleCloudCredentialsJSON,
				Language:        c.RecognizeLanguage,
				Location:        c.GoogleCloudSpeechLocation,
				Model:           c.GoogleCloudSpeechModel,
			}), nil
		}
		return NewVoskHTTPRecognizer(c.VoskServerURL, &http.Client{}), nil
	})
}
