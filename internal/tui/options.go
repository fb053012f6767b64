package tui

import (
	"desktop-messenger/internal/notify"
	"desktop-messenger/internal/session"
)

// EnvConfig defines fields used for parsing from environment variables
type EnvConfig struct {
	Notify     bool `env:"MESSENGER_NOTIFY" envDefault:"true"`
	BcryptCost int  `env:"MESSENGER_BCRYPT_COST" envDefault:"10"`
}

type Option interface {
	apply(*config)
}

type optionFunc func(c *config)

func (f optionFunc) apply(c *config) { f(c) }

// config defines fields used for configuring Model instance
type config struct {
	notifier   *notify.Notifier
	bcryptCost int
}

// WithEnvConfig enables processing exported EnvConfig struct to act as a source of config parameters
func WithEnvConfig(cfg EnvConfig) Option {
	return optionFunc(func(c *config) {
		c.bcryptCost = session.ValidCost(cfg.BcryptCost)
	})
}

// WithNotifier enables desktop notifications about contacts presence
func WithNotifier(n *notify.Notifier) Option {
	return optionFunc(func(c *config) {
		c.notifier = n
	})
}

// WithBcryptCost sets bcrypt cost for new passwords
func WithBcryptCost(cost int) Option {
	return optionFunc(func(c *config) {
		c.bcryptCost = session.ValidCost(cost)
	})
}
