package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"gregoryjjb/cups/cups"
)

// ExampleLabels is the arrangement from the puzzle description, selected
// with -labels example.
const ExampleLabels = "389125467"

const (
	defaultLabels        = "487912365"
	defaultDataDir       = "~/.cups"
	defaultHost          = "127.0.0.1"
	defaultPort          = "1223"
	defaultProgressEvery = 100_000
	defaultConfigFile    = ".config/cups.toml"
)

// Flags are the command line options that feed into the config.
type Flags struct {
	ConfigPath string
	Labels     string
	Serve      bool
	Version    bool
	Systemd    bool
	NoProgress bool
}

type GameTOML struct {
	Name        string   `toml:"name"`
	ExtendTo    int      `toml:"extend_to"`
	Checkpoints []uint64 `toml:"checkpoints"`
}

type TOMLConfig struct {
	Labels        string     `toml:"labels"`
	DataDir       string     `toml:"data_dir"`
	LogLevel      string     `toml:"log_level"`
	NoColor       bool       `toml:"no_color"`
	Host          string     `toml:"host"`
	Port          string     `toml:"port"`
	Cache         *bool      `toml:"cache"`
	ProgressEvery uint64     `toml:"progress_every"`
	Games         []GameTOML `toml:"games"`
}

type Config struct {
	flags   Flags
	getenv  func(string) string
	toml    TOMLConfig
	path    string
	dataDir string
	labels  []int
	games   []Game
}

func defaultGames() []GameTOML {
	return []GameTOML{
		{Name: "crab-hundred", Checkpoints: []uint64{10, 100}},
		{Name: "crab-million", ExtendTo: cups.MaxCapacity, Checkpoints: []uint64{10_000_000}},
	}
}

// NewConfig merges defaults, the TOML file, environment variables and
// flags, in increasing order of precedence.
func NewConfig(fsys CupsFS, flags Flags, getenv func(string) string) (*Config, error) {
	c := &Config{
		flags:  flags,
		getenv: getenv,
		toml: TOMLConfig{
			Labels:        defaultLabels,
			DataDir:       defaultDataDir,
			LogLevel:      "info",
			Host:          defaultHost,
			Port:          defaultPort,
			ProgressEvery: defaultProgressEvery,
		},
	}

	path, err := c.findConfigFile(fsys)
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := toml.Unmarshal(data, &c.toml); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
		c.path = path
	}

	if len(c.toml.Games) == 0 {
		c.toml.Games = defaultGames()
	}

	c.applyEnv()

	if flags.Labels != "" {
		c.toml.Labels = flags.Labels
	}
	if c.toml.Labels == "example" {
		c.toml.Labels = ExampleLabels
	}

	c.labels, err = ParseLabels(c.toml.Labels)
	if err != nil {
		return nil, fmt.Errorf("config labels: %w", err)
	}

	seen := make(map[string]bool)
	for _, g := range c.toml.Games {
		game := Game{Name: g.Name, ExtendTo: g.ExtendTo, Checkpoints: g.Checkpoints}
		if err := game.Validate(); err != nil {
			return nil, fmt.Errorf("config game %q: %w", g.Name, err)
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("%w: game %q configured twice", ErrValidation, g.Name)
		}
		seen[g.Name] = true
		c.games = append(c.games, game)
	}

	if c.toml.ProgressEvery == 0 {
		return nil, fmt.Errorf("%w: progress_every must be positive", ErrValidation)
	}

	c.dataDir, err = ResolvePath(fsys, c.toml.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	return c, nil
}

func (c *Config) findConfigFile(fsys CupsFS) (string, error) {
	explicit := c.flags.ConfigPath
	if explicit == "" {
		explicit = c.getenv("CUPS_CONFIG")
	}
	if explicit != "" {
		path, err := ResolvePath(fsys, explicit)
		if err != nil {
			return "", err
		}
		if _, err := fsys.Stat(path); err != nil {
			return "", fmt.Errorf("config file %q: %w", path, err)
		}
		return path, nil
	}

	home, err := fsys.HomeDir()
	if err != nil {
		return "", nil
	}
	path := filepath.Join(home, defaultConfigFile)
	if _, err := fsys.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

func (c *Config) applyEnv() {
	if v := c.getenv("HOST"); v != "" {
		c.toml.Host = v
	}
	if v := c.getenv("PORT"); v != "" {
		c.toml.Port = v
	}
	if v := c.getenv("DATA_DIR"); v != "" {
		c.toml.DataDir = v
	}
	if v := c.getenv("LOG_LEVEL"); v != "" {
		c.toml.LogLevel = v
	}
	if c.getenv("NO_COLOR") != "" {
		c.toml.NoColor = true
	}
}

func (c *Config) Flags() Flags {
	return c.flags
}

// Path is the config file that was loaded, or empty when running on defaults.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.toml.Host, c.toml.Port)
}

func (c *Config) DataDir() string {
	return c.dataDir
}

// Labels returns a copy of the configured starting arrangement.
func (c *Config) Labels() []int {
	return append([]int(nil), c.labels...)
}

func (c *Config) Games() []Game {
	return c.games
}

// Game looks up a configured game by name.
func (c *Config) Game(name string) (Game, error) {
	for _, g := range c.games {
		if g.Name == name {
			return g, nil
		}
	}
	return Game{}, fmt.Errorf("game %q %w", name, ErrNotExist)
}

func (c *Config) CacheEnabled() bool {
	return c.toml.Cache == nil || *c.toml.Cache
}

func (c *Config) ProgressEvery() uint64 {
	return c.toml.ProgressEvery
}

func (c *Config) NoColor() bool {
	return c.toml.NoColor
}

func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.toml.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
