package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// DesktopNotifier shows messages as desktop notifications.
type DesktopNotifier struct {
	icon string
}

func NewDesktopNotifier(icon string) *DesktopNotifier {
	return &DesktopNotifier{icon: icon}
}

func (n *DesktopNotifier) Notify(title, message string) error {
	if err := beeep.Notify(title, message, n.icon); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}
