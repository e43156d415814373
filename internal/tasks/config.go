package tasks

import "time"

// Config sizes the worker pool that runs queued imports and cleanups.
type Config struct {
	Workers         int           // concurrent workers
	ReleaseAfter    time.Duration // a claimed task not finished within this is handed out again
	CleanupInterval time.Duration // how often finished tasks are purged from the queue database
}

func DefaultConfig() Config {
	return Config{
		Workers:         2,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

// withDefaults replaces unset or negative values with DefaultConfig's. The
// release window never drops below the import task timeout, or a slow import
// would be handed to a second worker while the first still runs.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = d.ReleaseAfter
	}
	if timeout := (ImportDocumentTask{}).Config().Timeout; c.ReleaseAfter < timeout {
		c.ReleaseAfter = timeout
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	return c
}
