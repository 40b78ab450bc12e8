//go:build tinygo && ili9341

package hal

import (
	"machine"

	"tinygo.org/x/drivers/ili9341"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	fb     *ili9341Framebuffer
	kbd    Keyboard
	t      *tinyGoTime
}

// New returns a baremetal HAL with an ILI9341 SPI panel.
//
// SPI1 on GP10 (SCK) / GP11 (SDO) / GP12 (SDI), panel control on
// GP13 (CS) / GP14 (DC) / GP15 (RST). UART0 on GP0/GP1, 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.GP10,
		SDO:       machine.GP11,
		SDI:       machine.GP12,
		Frequency: 40_000_000,
	})
	display := ili9341.NewSPI(machine.SPI1, machine.GP14, machine.GP13, machine.GP15)
	display.Configure(ili9341.Config{})
	display.SetRotation(ili9341.Rotation270)

	return &tinyGoHAL{
		logger: &uartLogger{uart: uart},
		led:    &pinLED{pin: ledPin},
		fb:     newILI9341Framebuffer(display, 320, 240),
		kbd:    newStubKeyboard(),
		t:      newTinyGoTime(),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Input() Input     { return tinyGoInput{kbd: h.kbd} }
func (h *tinyGoHAL) Time() Time       { return h.t }

// ili9341Framebuffer renders to memory and pushes the whole frame over SPI
// on Present.
type ili9341Framebuffer struct {
	d       *ili9341.Device
	w, h    int
	buf     []byte // little-endian RGB565
	scratch []byte // big-endian RGB565 for the panel
}

func newILI9341Framebuffer(d *ili9341.Device, w, h int) *ili9341Framebuffer {
	return &ili9341Framebuffer{
		d:       d,
		w:       w,
		h:       h,
		buf:     make([]byte, w*h*2),
		scratch: make([]byte, w*h*2),
	}
}

func (f *ili9341Framebuffer) Width() int          { return f.w }
func (f *ili9341Framebuffer) Height() int         { return f.h }
func (f *ili9341Framebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *ili9341Framebuffer) StrideBytes() int    { return f.w * 2 }
func (f *ili9341Framebuffer) Buffer() []byte      { return f.buf }

func (f *ili9341Framebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *ili9341Framebuffer) Present() error {
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.scratch[i] = f.buf[i+1]
		f.scratch[i+1] = f.buf[i]
	}
	return f.d.DrawRGBBitmap8(0, 0, f.scratch, int16(f.w), int16(f.h))
}
