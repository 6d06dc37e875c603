package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 50, c.Strip.Length)
	assert.Equal(t, 18, c.Strip.GPIO)
	assert.Equal(t, "mqtt://10.0.1.216/", c.Bus.Broker)
	assert.Equal(t, "control/strangerlights", c.Bus.Topic)
	assert.Equal(t, time.Second, c.Timing.BlinkOn)
	assert.Equal(t, 500*time.Millisecond, c.Timing.BlinkOff)
	assert.Zero(t, c.MaxMessageRunes, "messages are not capped unless configured")

	m := c.LetterMap()
	assert.Equal(t, 44, m.Len())
	i, ok := m.Index('a')
	assert.True(t, ok)
	assert.Equal(t, 10, i)
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NotNil(t, c)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
strip:
  length: 60
  driver: spi
  spi: { dev: /dev/spidev0.0, speed_hz: 2500000 }
bus:
  kind: redis
  broker: redis://localhost:6379/
timing:
  blink_on: 750ms
ambient: rainbow
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, c.Strip.Length)
	assert.Equal(t, "spi", c.Strip.Driver)
	assert.Equal(t, "/dev/spidev0.0", c.Strip.SPI.Dev)
	assert.Equal(t, 2500000, c.Strip.SPI.SpeedHz)
	assert.Equal(t, 18, c.Strip.GPIO, "untouched keys keep defaults")
	assert.Equal(t, "redis", c.Bus.Kind)
	assert.Equal(t, "control/strangerlights", c.Bus.Topic)
	assert.Equal(t, 750*time.Millisecond, c.Timing.BlinkOn)
	assert.Equal(t, 500*time.Millisecond, c.Timing.BlinkOff)
	assert.Equal(t, "rainbow", c.Ambient)
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"garbage":     "strip: [",
		"length":      "strip: { length: 0 }",
		"short strip": "strip: { length: 20 }",
		"driver":      "strip: { driver: dmx }",
		"bus":         "bus: { kind: carrier-pigeon }",
		"timing":      "timing: { blink_off: 0s }",
		"placeholder": "letters: { placeholder: '--' }",
		"ambient":     "ambient: strobe",
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
			c, err := Load(path)
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	c := Default()
	c.Strip.Length = -1
	c.Bus.Kind = "smoke"
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "strip.length")
	assert.Contains(t, err.Error(), "bus.kind")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	want := Default()
	want.Strip.Driver = "sim"
	want.Preview.Addr = ":8080"
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
