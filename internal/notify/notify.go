package notify

// Notifier shows short status messages to the user.
type Notifier interface {
	Notify(title, message string) error
}

type Nop struct{}

func (Nop) Notify(string, string) error { return nil }
