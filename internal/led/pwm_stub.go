//go:build !linux || !ws281x

package led

import (
	"fmt"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

type PWM struct{}

func NewPWM(gpio int, count int, colorOrder string, brightness int) (*PWM, error) {
	return nil, fmt.Errorf("pwm: %w (build on linux with -tags ws281x)", ErrUnsupported)
}

func (p *PWM) Write(frame []model.Color) error { return ErrUnsupported }
func (p *PWM) Close() error                    { return nil }
