package main

import (
	"errors"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/milk9111/overworld/logging"
)

var ErrBadConfig = errors.New("invalid configuration")

// Config is the runner configuration: defaults, then the optional YAML
// file, then flags the user set.
type Config struct {
	Level string    `koanf:"level"`
	TPS   int       `koanf:"tps"`
	Scale float64   `koanf:"scale"`
	Debug bool      `koanf:"debug"`
	Save  string    `koanf:"save"`
	Watch bool      `koanf:"watch"`
	Log   LogConfig `koanf:"log"`
}

type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// AddFlags registers every config key as a flag; the flag defaults are the
// config defaults.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML config file")
	fs.String("level", "village", "level to start on (basename in levels/, .yaml optional)")
	fs.Int("tps", 60, "simulation ticks per second")
	fs.Float64("scale", 2, "world zoom")
	fs.Bool("debug", false, "draw physics shapes, tile events and movement flags")
	fs.String("save", "", "save file; empty disables saving")
	fs.Bool("watch", false, "reload levels, prefabs and scripts when they change on disk")
	fs.String("log-format", "text", "log format: text or json")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
}

// LoadConfig merges the config file named by the --config flag over the
// flag defaults, then applies flags that were set explicitly.
func LoadConfig(fs *pflag.FlagSet) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	path, _ := fs.GetString("config")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, oops.In("config").With("path", path).Wrapf(err, "load config file")
		}
	}

	flags := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if f.Name == "config" || f.Name == "help" {
			return "", nil
		}
		return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(fs, f)
	})
	if err := k.Load(flags, nil); err != nil {
		return cfg, oops.In("config").Wrapf(err, "load flags")
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.In("config").Wrapf(err, "decode config")
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	errb := oops.In("config")
	switch {
	case strings.TrimSpace(c.Level) == "":
		return errb.With("key", "level").Wrap(ErrBadConfig)
	case c.TPS <= 0:
		return errb.With("key", "tps").With("value", c.TPS).Wrap(ErrBadConfig)
	case c.Scale <= 0:
		return errb.With("key", "scale").With("value", c.Scale).Wrap(ErrBadConfig)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return errb.With("key", "log.format").With("value", c.Log.Format).Wrap(ErrBadConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errb.With("key", "log.level").Wrap(errors.Join(ErrBadConfig, err))
	}
	return nil
}
