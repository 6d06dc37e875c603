package led

import (
	"errors"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// ErrUnsupported is returned by drivers not compiled into this build.
var ErrUnsupported = errors.New("led driver not supported in this build")

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes a full frame to hardware. len(frame) is the strip length.
	Write(frame []model.Color) error
	// Close releases resources.
	Close() error
}

// Tee fans every frame out to several drivers, e.g. hardware plus preview.
type Tee []Driver

func (t Tee) Write(frame []model.Color) error {
	var errs []error
	for _, d := range t {
		if err := d.Write(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t Tee) Close() error {
	var errs []error
	for _, d := range t {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
