package jsv

import (
	"log/slog"

	"go.uber.org/atomic"
)

// DateFormat selects the wire form used when writing time.Time values.
// Reading always accepts every supported form.
type DateFormat uint8

const (
	// DateFormatISO8601 writes the shortest ISO-8601 form that keeps the value.
	DateFormatISO8601 DateFormat = iota
	// DateFormatLegacy writes /Date(ms+HHMM)/ epoch literals.
	DateFormatLegacy
)

// String returns the date format name.
func (d DateFormat) String() string {
	switch d {
	case DateFormatISO8601:
		return "iso8601"
	case DateFormatLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Config holds the flags consumed by plans at call time. Plans are compiled
// once per type and never capture a Config, so changing it takes effect on
// the next call.
type Config struct {
	// IncludeNullValues writes nil members instead of omitting them.
	IncludeNullValues bool

	// ThrowOnError returns member assignment failures instead of logging them.
	ThrowOnError bool

	// AllowType gates type hint resolution. Nil means AllowRegistered().
	AllowType TypeFilter

	// DateFormat selects the time.Time wire form.
	DateFormat DateFormat

	// CaseInsensitive matches member names ignoring case.
	CaseInsensitive bool

	// ExcludeTypeInfo suppresses "__type" hints on write.
	ExcludeTypeInfo bool

	// InferDynamicTypes decodes untyped (any) values into map[string]any,
	// []any, int64, float64, bool and nil instead of raw strings.
	InferDynamicTypes bool

	// NestedObjectBags parses map-looking values of map[string]any entries
	// into nested map[string]any instead of leaving them as strings.
	NestedObjectBags bool

	// MaxDepth bounds value nesting on both read and write (0 = 256).
	MaxDepth int

	// Logger receives warnings for tolerated input. Nil means slog.Default().
	Logger *slog.Logger
}

const defaultMaxDepth = 256

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DateFormat: DateFormatISO8601,
		MaxDepth:   defaultMaxDepth,
	}
}

var globalConfig = atomic.NewPointer(func() *Config {
	cfg := DefaultConfig()
	return &cfg
}())

// SetConfig replaces the process-wide configuration used by the package-level
// functions.
func SetConfig(cfg Config) {
	globalConfig.Store(&cfg)
}

// CurrentConfig returns a copy of the process-wide configuration.
func CurrentConfig() Config {
	return *globalConfig.Load()
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return c.MaxDepth
}

func (c *Config) allowType() TypeFilter {
	if c.AllowType != nil {
		return c.AllowType
	}
	return AllowRegistered()
}
