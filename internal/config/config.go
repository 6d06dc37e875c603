package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

var ErrInvalid = errors.New("invalid config")

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty picks the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type Strip struct {
	Length     int    `yaml:"length"`
	Driver     string `yaml:"driver"` // "pwm" | "spi" | "console" | "sim"
	GPIO       int    `yaml:"gpio"`
	ColorOrder string `yaml:"color_order"`
	Brightness int    `yaml:"brightness"`
	SPI        SPI    `yaml:"spi,omitempty"`
}

type Bus struct {
	Kind     string `yaml:"kind"` // "mqtt" | "redis"
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	RedisDB  int    `yaml:"redis_db"`
}

type Letters struct {
	Map         string `yaml:"map"`
	Placeholder string `yaml:"placeholder"`
}

type Timing struct {
	BlinkOn  time.Duration `yaml:"blink_on"`
	BlinkOff time.Duration `yaml:"blink_off"`
}

type Preview struct {
	Addr string `yaml:"addr"` // e.g. :8080, empty disables
}

type Config struct {
	Strip           Strip   `yaml:"strip"`
	Bus             Bus     `yaml:"bus"`
	Letters         Letters `yaml:"letters"`
	Timing          Timing  `yaml:"timing"`
	Ambient         string  `yaml:"ambient"`
	MaxMessageRunes int     `yaml:"max_message_runes"` // 0 spells every rune
	Preview         Preview `yaml:"preview"`
	LogLevel        string  `yaml:"log_level"`
}

// Default is the porch setup: 50 bulbs on GPIO 18 listening on the house broker.
func Default() *Config {
	return &Config{
		Strip: Strip{
			Length:     50,
			Driver:     "pwm",
			GPIO:       18,
			ColorOrder: "RGB",
			Brightness: 255,
		},
		Bus: Bus{
			Kind:   "mqtt",
			Broker: "mqtt://10.0.1.216/",
			Topic:  "control/strangerlights",
		},
		Letters: Letters{
			Map:         model.DefaultLetters,
			Placeholder: string(model.DefaultPlaceholder),
		},
		Timing: Timing{
			BlinkOn:  time.Second,
			BlinkOff: 500 * time.Millisecond,
		},
		Ambient:         "fairy",
		LogLevel:        "debug",
	}
}

// Load reads path over the defaults. When the file does not exist the
// defaults are returned together with an error matching os.ErrNotExist.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Strip.Length <= 0 {
		bad("strip.length must be positive, got %d", c.Strip.Length)
	}
	switch c.Strip.Driver {
	case "pwm", "spi", "console", "sim":
	default:
		bad("strip.driver %q", c.Strip.Driver)
	}
	switch c.Strip.ColorOrder {
	case "RGB", "RBG", "GRB", "GBR", "BRG", "BGR":
	default:
		bad("strip.color_order %q", c.Strip.ColorOrder)
	}
	if c.Strip.Brightness < 0 || c.Strip.Brightness > 255 {
		bad("strip.brightness %d outside 0..255", c.Strip.Brightness)
	}
	switch c.Bus.Kind {
	case "mqtt", "redis":
	default:
		bad("bus.kind %q", c.Bus.Kind)
	}
	if c.Bus.Topic == "" {
		bad("bus.topic is empty")
	}
	if utf8.RuneCountInString(c.Letters.Placeholder) != 1 {
		bad("letters.placeholder must be one character, got %q", c.Letters.Placeholder)
	} else if c.Strip.Length > 0 {
		if err := c.LetterMap().Validate(c.Strip.Length); err != nil {
			bad("letters.map: %v", err)
		}
	}
	if c.Timing.BlinkOn <= 0 || c.Timing.BlinkOff <= 0 {
		bad("timing must be positive, got on=%s off=%s", c.Timing.BlinkOn, c.Timing.BlinkOff)
	}
	switch c.Ambient {
	case "fairy", "rainbow", "off":
	default:
		bad("ambient %q", c.Ambient)
	}
	if c.MaxMessageRunes < 0 {
		bad("max_message_runes must not be negative")
	}
	return errors.Join(errs...)
}

func (c *Config) LetterMap() model.LetterMap {
	p, _ := utf8.DecodeRuneInString(c.Letters.Placeholder)
	if p == utf8.RuneError {
		p = model.DefaultPlaceholder
	}
	return model.NewLetterMap(c.Letters.Map, p)
}
