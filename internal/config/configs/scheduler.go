package configs

import "time"

// Scheduler configures the background campaign poller. The Interval
// bounds how late a due campaign can start; 30 seconds matches the
// upstream rate budget of one due-campaign query per tick.
type Scheduler struct {
	// Enabled allows disabling the poller entirely, e.g. for one-off
	// maintenance runs against the same database.
	Enabled bool `env:"ENABLED" envDefault:"true"`
	// Interval is the pause between ticks. Defaults to 30s.
	Interval time.Duration `env:"INTERVAL" envDefault:"30s"`
}
