package led

import (
	"fmt"
	"image"
	"io"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-strangerlights/model"
)

// DefaultSPIFreq clocks the NRZ encoding for 800kHz WS281x LEDs.
const DefaultSPIFreq = 2500 * physic.KiloHertz

// Drawer writes frames to a periph display.Drawer: a WS281x strip driven
// over SPI by nrzled, or the console when no SPI port exists.
type Drawer struct {
	mu      sync.Mutex
	drawer  display.Drawer
	port    io.Closer
	count   int
	console bool
}

// NewSPI opens the SPI port dev ("" picks the first one) and drives count
// WS281x LEDs on it.
func NewSPI(dev string, count int, freq physic.Frequency) (*Drawer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", dev, err)
	}
	d, err := newNRZ(p, count, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	d.port = p
	return d, nil
}

func newNRZ(p spi.Port, count int, freq physic.Frequency) (*Drawer, error) {
	if freq <= 0 {
		freq = DefaultSPIFreq
	}
	opts := nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	}
	d, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return &Drawer{drawer: d, count: count}, nil
}

// NewConsole prints frames as coloured blocks on stdout.
func NewConsole(count int) *Drawer {
	return &Drawer{drawer: screen.New(count), count: count, console: true}
}

func (d *Drawer) Console() bool { return d.console }

func (d *Drawer) String() string { return d.drawer.String() }

func (d *Drawer) Write(frame []model.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.drawer == nil {
		return fmt.Errorf("drawer closed")
	}
	if len(frame) != d.count {
		return fmt.Errorf("frame length %d does not match count %d", len(frame), d.count)
	}
	if err := d.drawer.Draw(d.drawer.Bounds(), frameImage(frame), image.Point{}); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if d.console {
		fmt.Printf("\n")
	}
	return nil
}

func (d *Drawer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.drawer == nil {
		return nil
	}
	err := d.drawer.Halt()
	if d.port != nil {
		if cerr := d.port.Close(); err == nil {
			err = cerr
		}
	}
	d.drawer = nil
	return err
}

func frameImage(frame []model.Color) *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, len(frame), 1))
	for x := 0; x < im.Rect.Max.X; x++ {
		im.SetNRGBA(x, 0, frame[x].NRGBA())
	}
	return im
}
