package events

import "github.com/rs/zerolog"

// LoggingObserver logs all events.
type LoggingObserver struct {
	name    string
	logger  zerolog.Logger
	verbose bool
}

// NewLoggingObserver creates a new observer that logs events. Verbose includes
// the payload.
func NewLoggingObserver(logger zerolog.Logger, verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		logger:  logger,
		verbose: verbose,
	}
}

// OnEvent logs the event, with the change counts of processing runs.
func (o *LoggingObserver) OnEvent(event Event) error {
	e := o.logger.Info().Str("event", event.Type)
	if id := CollectionOf(event); id != "" {
		e = e.Str("collection", id)
	}
	if p, ok := GetTypedData[CollectionProcessedEvent](event); ok {
		e = e.Int("new", p.Changes.NewCards).
			Int("updated", p.Changes.UpdatedCards).
			Int("removed", p.Changes.RemovedCards).
			Bool("saved", p.Saved)
	}
	if o.verbose {
		e = e.Interface("data", event.Data)
	}
	e.Msg("Event dispatched")
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *LoggingObserver) ShouldHandle(string) bool {
	return true
}
