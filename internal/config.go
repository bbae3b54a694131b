package internal

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/tuannm99/plyfile/internal/ply"
)

type PlyConfig struct {
	Decode struct {
		MaxListCount    int    `mapstructure:"max_list_count"`
		MaxElementCount int    `mapstructure:"max_element_count"`
		Conversion      string `mapstructure:"conversion"`
	} `mapstructure:"decode"`

	Encode struct {
		Format   string   `mapstructure:"format"`
		Strict   bool     `mapstructure:"strict"`
		Comments []string `mapstructure:"comments"`
	} `mapstructure:"encode"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LoadConfig reads a YAML config; an empty path yields the defaults.
// PLYFILE_* environment variables (PLYFILE_DECODE_MAX_LIST_COUNT, ...)
// override both.
func LoadConfig(path string) (*PlyConfig, error) {
	v := viper.New()
	v.SetDefault("decode.max_list_count", ply.DefaultMaxListCount)
	v.SetDefault("decode.max_element_count", 0)
	v.SetDefault("decode.conversion", ply.ConvertTruncate.String())
	v.SetDefault("encode.format", ply.FormatBinaryLittleEndian.String())
	v.SetDefault("encode.strict", false)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("PLYFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg PlyConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Options converts the decode/encode sections into codec options.
func (c *PlyConfig) Options(logger *slog.Logger) (ply.Options, error) {
	conv, err := ply.ParseConversion(c.Decode.Conversion)
	if err != nil {
		return ply.Options{}, fmt.Errorf("decode.conversion: %w", err)
	}
	if c.Decode.MaxListCount < 0 {
		return ply.Options{}, fmt.Errorf("decode.max_list_count: must not be negative, got %d", c.Decode.MaxListCount)
	}
	if c.Decode.MaxElementCount < 0 {
		return ply.Options{}, fmt.Errorf("decode.max_element_count: must not be negative, got %d", c.Decode.MaxElementCount)
	}
	return ply.Options{
		MaxListCount:    c.Decode.MaxListCount,
		MaxElementCount: c.Decode.MaxElementCount,
		Conversion:      conv,
		Strict:          c.Encode.Strict,
		Logger:          logger,
	}, nil
}

func (c *PlyConfig) Format() (ply.Format, error) {
	f, err := ply.ParseFormat(c.Encode.Format)
	if err != nil {
		return 0, fmt.Errorf("encode.format: %w", err)
	}
	return f, nil
}

func (c *PlyConfig) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// NewLogger builds the text logger the command-line tools install as the
// slog default.
func (c *PlyConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := c.LogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
