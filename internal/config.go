package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tuannm99/verticareader/internal/native"
	"github.com/tuannm99/verticareader/internal/render"
)

const (
	EnvPrefix   = "VERTICAREADER"
	maxTZOffset = 23
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Types        string `mapstructure:"types"`
	Output       string `mapstructure:"output"`
	Format       string `mapstructure:"format"`
	Compression  string `mapstructure:"compression"`
	Delimiter    string `mapstructure:"delimiter"`
	NoHeader     bool   `mapstructure:"no_header"`
	SingleQuotes bool   `mapstructure:"single_quotes"`
	TZOffset     int    `mapstructure:"tz_offset"`
	Limit        int64  `mapstructure:"limit"`
	HexPrefix    bool   `mapstructure:"hex_prefix"`
	MaxGroupSize int    `mapstructure:"max_group_size"`
	MetricsFile  string `mapstructure:"metrics_file"`
	LogLevel     string `mapstructure:"log_level"`

	// Shorthand switches; they override Format and Compression.
	JSON      bool `mapstructure:"json"`
	JSONLines bool `mapstructure:"json_lines"`
	Gzip      bool `mapstructure:"gzip"`
	LZ4       bool `mapstructure:"lz4"`
}

// NewFlagSet declares every command line option. Flag names map to config
// keys with '-' replaced by '_'.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.StringP("output", "o", "", "output file, - for stdout (default: derived from the input name)")
	fs.StringP("types", "t", "", "file with column types, names and conversions")
	fs.IntP("tz-offset", "z", 0, "+/- hours applied to timestamptz and timetz values")
	fs.StringP("delimiter", "d", ",", "CSV field delimiter")
	fs.BoolP("no-header", "n", false, "don't write the CSV header row")
	fs.BoolP("single-quotes", "s", false, "quote CSV fields with '")
	fs.BoolP("json", "j", false, "write a JSON array")
	fs.BoolP("json-lines", "J", false, "write JSON lines")
	fs.String("format", "csv", "output format: csv, json or jsonl")
	fs.BoolP("gzip", "g", false, "gzip the output")
	fs.Bool("lz4", false, "lz4 compress the output")
	fs.String("compression", "none", "output compression: none, gzip or lz4")
	fs.Int64P("limit", "l", 0, "only decode the first N rows (0 = all)")
	fs.BoolP("hex-prefix", "H", false, "prefix hex strings with 0x")
	fs.Int("max-group-size", native.DefaultMaxGroupSize, "largest accepted row group in bytes")
	fs.String("metrics-file", "", "write run metrics to this node exporter textfile")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("config", "", "YAML config file")
	return fs
}

// LoadConfig merges, lowest first: defaults, the YAML file at path (if any),
// VERTICAREADER_* environment variables, and flags that were set on fs.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if fs != nil {
		var bindErr error
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(configKey(f.Name), f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("types", "")
	v.SetDefault("output", "")
	v.SetDefault("format", "csv")
	v.SetDefault("compression", "none")
	v.SetDefault("delimiter", ",")
	v.SetDefault("no_header", false)
	v.SetDefault("single_quotes", false)
	v.SetDefault("tz_offset", 0)
	v.SetDefault("limit", 0)
	v.SetDefault("hex_prefix", false)
	v.SetDefault("max_group_size", native.DefaultMaxGroupSize)
	v.SetDefault("metrics_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("json", false)
	v.SetDefault("json_lines", false)
	v.SetDefault("gzip", false)
	v.SetDefault("lz4", false)
}

func configKey(flag string) string { return strings.ReplaceAll(flag, "-", "_") }

func (c *Config) normalize() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case c.JSON && c.JSONLines:
		return invalid("json and json-lines are mutually exclusive")
	case c.JSON:
		c.Format = render.FormatJSON.String()
	case c.JSONLines:
		c.Format = render.FormatJSONLines.String()
	}
	switch {
	case c.Gzip && c.LZ4:
		return invalid("gzip and lz4 are mutually exclusive")
	case c.Gzip:
		c.Compression = render.CompressGzip.String()
	case c.LZ4:
		c.Compression = render.CompressLZ4.String()
	}

	if _, err := render.ParseFormat(c.Format); err != nil {
		return invalid("%v", err)
	}
	if _, err := render.ParseCompression(c.Compression); err != nil {
		return invalid("%v", err)
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return invalid("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.TZOffset < -maxTZOffset || c.TZOffset > maxTZOffset {
		return invalid("tz offset %d out of range -%d..%d", c.TZOffset, maxTZOffset, maxTZOffset)
	}
	if c.Limit < 0 {
		return invalid("limit must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return invalid("%v", err)
	}
	return nil
}

// RenderOptions translates the output settings. It assumes LoadConfig
// already validated them.
func (c *Config) RenderOptions() render.Options {
	format, _ := render.ParseFormat(c.Format)
	delim, _ := utf8.DecodeRuneInString(c.Delimiter)
	return render.Options{
		Format:      format,
		Delimiter:   delim,
		SingleQuote: c.SingleQuotes,
		NoHeader:    c.NoHeader,
		Render: native.RenderOptions{
			TZOffset:  c.TZOffset,
			HexPrefix: c.HexPrefix,
		},
	}
}

func (c *Config) OutputCompression() render.Compression {
	comp, _ := render.ParseCompression(c.Compression)
	return comp
}

func (c *Config) DecodeOptions() native.Options {
	return native.Options{Limit: c.Limit, MaxGroupSize: c.MaxGroupSize}
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return lvl, nil
}
