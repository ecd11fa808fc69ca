package alert

// Notifier delivers short operational alerts to an administrator. It decouples
// the automation services from the specific messaging library.
type Notifier interface {
	Notify(text string) error
}
