package app

import (
	"fmt"
	"image/color"
	"strings"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"ember/emberos/kernel"
	"ember/hal"
)

// installPanicHandler routes the first process panic to the HAL logger and
// paints a white panic screen. The handler never returns: panic mode halts
// the machine.
func installPanicHandler(h hal.HAL) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		if l := h.Logger(); l != nil {
			l.WriteLineString(fmt.Sprintf("Ember Panic: pid=%d panic=%v", info.PID, info.Value))
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line == "" {
					continue
				}
				l.WriteLineString(line)
			}
		}

		disp := h.Display()
		if disp == nil {
			select {}
		}
		fb := disp.Framebuffer()
		if fb == nil {
			select {}
		}

		fb.ClearRGB(255, 255, 255)

		d := panicDisplay{fb: fb}
		font := &proggy.TinySZ8pt7b
		fg := color.RGBA{A: 255}

		const lineHeight = 10
		y := int16(lineHeight)
		write := func(s string) {
			if int(y) >= fb.Height() {
				return
			}
			tinyfont.WriteLine(&d, font, 0, y, s, fg)
			y += lineHeight
		}

		write("Ember Panic:")
		write(fmt.Sprintf("pid: %d", info.PID))
		write(fmt.Sprintf("panic: %v", info.Value))
		if len(info.Stack) > 0 {
			write("stack:")
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line == "" {
					continue
				}
				write(line)
			}
		} else {
			write("stack: unavailable")
		}

		fb.Present()
		select {}
	})
}

type panicDisplay struct {
	fb hal.Framebuffer
}

func (d *panicDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *panicDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}

	w := d.fb.Width()
	h := d.fb.Height()
	ix := int(x)
	iy := int(y)
	if ix < 0 || ix >= w || iy < 0 || iy >= h {
		return
	}

	pixel := uint16((uint16(c.R>>3)&0x1F)<<11 | (uint16(c.G>>2)&0x3F)<<5 | (uint16(c.B>>3) & 0x1F))
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *panicDisplay) Display() error { return nil }
