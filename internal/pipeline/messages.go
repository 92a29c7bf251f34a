package pipeline

import "fmt"

const (
	notificationTitle = "Vox"

	messageSilenceStopped    = "Stopped listening after silence."
	messageRecognitionFailed = "Speech recognition failed."

	messageListeningFormat = "Listening. Say %q to pause."
	messagePausedFormat    = "Paused. Say %q to resume."
)

func listeningMessage(deactivation string) string {
	return fmt.Sprintf(messageListeningFormat, deactivation)
}

func pausedMessage(activation string) string {
	return fmt.Sprintf(messagePausedFormat, activation)
}
