package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ovenline/bakery-api/internal/schedule"
)

// Config holds the complete application configuration, loadable from
// environment variables (BAKERY_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (BAKERY_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Pickup      PickupConfig
	Fees        FeesConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// PickupConfig controls the pickup calendar and slot capacity.
type PickupConfig struct {
	Open           string        `default:"09:00" usage:"First pickup slot of the day" flag:"pickup-open"`
	Close          string        `default:"17:30" usage:"Last pickup slot of the day" flag:"pickup-close"`
	SlotMinutes    int           `default:"30" usage:"Slot grid spacing in minutes" flag:"slot-minutes"`
	Cutoff         string        `default:"12:00" usage:"Same-day ordering cutoff" flag:"pickup-cutoff"`
	LookaheadDays  int           `default:"7" usage:"Bookable window length in days" flag:"lookahead-days"`
	ClosedWeekdays []string      `default:"Sunday" usage:"Weekdays with no pickups" flag:"closed-weekdays"`
	SlotCapacity   int           `default:"5" usage:"Max active orders per pickup slot" flag:"slot-capacity"`
	Timezone       string        `default:"Europe/London" usage:"Store timezone for calendar rules"`
	StoreTimeout   time.Duration `default:"5s" usage:"Deadline for the capacity check plus order insert" flag:"store-timeout"`
	FilterRefresh  time.Duration `default:"5m" usage:"Product id filter rebuild interval" flag:"filter-refresh"`
}

// FeesConfig provides fallback fee values used when the configurable_fees
// table has no matching active row.
type FeesConfig struct {
	BagFeePence int64  `default:"70" usage:"Default bag fee in pence" flag:"bag-fee-pence"`
	TaxRate     string `default:"0.06" usage:"Default GST rate, e.g. 0.06" flag:"tax-rate"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BAKERY",
		Files:     []string{"config.yaml", "/etc/bakery/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set BAKERY_DATABASE_URL or DATABASE_URL")
	}
	if _, err := cfg.Pickup.Schedule(); err != nil {
		return nil, err
	}
	if _, err := cfg.Fees.Rate(); err != nil {
		return nil, err
	}
	if _, err := cfg.Pickup.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's BAKERY_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}

// Schedule builds the pickup calendar from the configuration.
func (p *PickupConfig) Schedule() (*schedule.Schedule, error) {
	closed := make(map[time.Weekday]bool, len(p.ClosedWeekdays))
	for _, name := range p.ClosedWeekdays {
		wd, err := parseWeekday(name)
		if err != nil {
			return nil, err
		}
		closed[wd] = true
	}
	return &schedule.Schedule{
		Open:          p.Open,
		Close:         p.Close,
		Step:          time.Duration(p.SlotMinutes) * time.Minute,
		Cutoff:        p.Cutoff,
		LookaheadDays: p.LookaheadDays,
		Closed:        closed,
	}, nil
}

// Location resolves the store timezone.
func (p *PickupConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", p.Timezone)
	}
	return loc, nil
}

// Rate parses the configured default tax rate.
func (f *FeesConfig) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(f.TaxRate)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse tax rate %q", f.TaxRate)
	}
	return rate, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.EqualFold(wd.String(), name) {
			return wd, nil
		}
	}
	return 0, errors.Errorf("unknown weekday %q", name)
}
