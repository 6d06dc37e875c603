//go:build linux && ws281x

package led

import (
	"fmt"
	"sync"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// PWM drives a WS281x strip from a GPIO pin through rpi_ws281x.
type PWM struct {
	mu    sync.Mutex
	dev   *ws2811.WS2811
	count int
}

func NewPWM(gpio int, count int, colorOrder string, brightness int) (*PWM, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	opt := ws2811.DefaultOptions
	opt.Channels = append([]ws2811.ChannelOption(nil), ws2811.DefaultOptions.Channels...)
	opt.Channels[0].GpioPin = gpio
	opt.Channels[0].LedCount = count
	opt.Channels[0].Brightness = brightness
	opt.Channels[0].StripeType = stripType(colorOrder)

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, fmt.Errorf("ws2811: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("ws2811 init: %w", err)
	}
	return &PWM{dev: dev, count: count}, nil
}

func stripType(colorOrder string) int {
	switch colorOrder {
	case "RBG":
		return ws2811.WS2811StripRBG
	case "GRB":
		return ws2811.WS2811StripGRB
	case "GBR":
		return ws2811.WS2811StripGBR
	case "BRG":
		return ws2811.WS2811StripBRG
	case "BGR":
		return ws2811.WS2811StripBGR
	default:
		return ws2811.WS2811StripRGB
	}
}

func (p *PWM) Write(frame []model.Color) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev == nil {
		return fmt.Errorf("pwm not initialized")
	}
	leds := p.dev.Leds(0)
	for i := 0; i < p.count && i < len(frame) && i < len(leds); i++ {
		leds[i] = uint32(frame[i])
	}
	if err := p.dev.Render(); err != nil {
		return fmt.Errorf("ws2811 render: %w", err)
	}
	return nil
}

func (p *PWM) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dev != nil {
		p.dev.Fini()
		p.dev = nil
	}
	return nil
}
