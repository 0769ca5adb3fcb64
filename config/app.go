package config

import "time"

type App struct {
	Port        string        `env:"APP_PORT" default:"8080"`
	DatabaseURL string        `env:"DATABASE_URL,required"`
	Env         string        `env:"APP_ENV" default:"dev"`
	OverdueScan time.Duration `env:"OVERDUE_SCAN_INTERVAL" default:"1h"`
}
