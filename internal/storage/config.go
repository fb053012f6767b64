package storage

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config defines connection parameters parsed from environment variables
type Config struct {
	Driver   string `env:"MESSENGER_DB_DRIVER" envDefault:"sqlite"`
	Path     string `env:"MESSENGER_DB_PATH" envDefault:"messaging_app.db"`
	User     string `env:"MESSENGER_DB_USER" envDefault:"postgres"`
	Password string `env:"MESSENGER_DB_PASSWORD" envDefault:"postgres"`
	Host     string `env:"MESSENGER_DB_HOST" envDefault:"localhost"`
	Port     uint16 `env:"MESSENGER_DB_PORT" envDefault:"5432"`
	DBName   string `env:"MESSENGER_DB_NAME" envDefault:"messenger"`

	// memory keeps the sqlite database in process memory, used by tests
	memory bool
}

// Memory returns Config for a private in-memory sqlite database identified by name
func Memory(name string) Config {
	return Config{
		Driver: DriverSQLite,
		Path:   name,
		memory: true,
	}
}

// DSN builds a data source name for the configured driver
func (c Config) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s sslmode=disable",
			dsnValue(c.User), dsnValue(c.Password), dsnValue(c.Host), c.Port, dsnValue(c.DBName))
	default:
		q := url.Values{}
		q.Set("_foreign_keys", "on")
		if c.memory {
			q.Set("mode", "memory")
			q.Set("cache", "shared")
		}
		return "file:" + c.Path + "?" + q.Encode()
	}
}

// settings collects values altered by Option during new Store construction
type settings struct {
	connTimeout time.Duration
	now         func() time.Time
}

func defaultSettings() settings {
	return settings{
		connTimeout: 5 * time.Second,
		now:         time.Now,
	}
}

// Option alters the default configuration used during new Store construction
type Option interface {
	apply(*settings)
}

type optionFunc func(s *settings)

func (f optionFunc) apply(s *settings) { f(s) }

// ConnectionTimeout sets how long a statement waits for a locked database (sqlite)
// or for the connection to be established (postgres)
func ConnectionTimeout(d time.Duration) Option {
	return optionFunc(func(s *settings) {
		s.connTimeout = d
	})
}

// WithClock replaces the time source used for store-assigned timestamps
func WithClock(now func() time.Time) Option {
	return optionFunc(func(s *settings) {
		s.now = now
	})
}

// dsnValue single-quotes a keyword/value DSN value when it is empty or holds spaces, quotes or backslashes
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + dsnEscaper.Replace(v) + "'"
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func (c Config) dsnWithTimeout(d time.Duration) string {
	if c.Driver == DriverPostgres {
		// zero means wait forever for libpq, so round up to whole seconds
		secs := int64(math.Ceil(d.Seconds()))
		if secs < 1 {
			secs = 1
		}
		return c.DSN() + " connect_timeout=" + strconv.FormatInt(secs, 10)
	}
	return c.DSN() + "&_busy_timeout=" + strconv.FormatInt(d.Milliseconds(), 10)
}
