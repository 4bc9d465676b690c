package config

import "time"

type Sweeper struct {
	Interval   time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	StaleAfter time.Duration `env:"DEAL_STALE_AFTER" envDefault:"720h"`
	Queue      string        `env:"SWEEP_QUEUE" envDefault:"default"`
}
