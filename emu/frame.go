package emu

// Frame is a finished picture in RGBA, one row per display line.
// Rows are drawn at their native width (256 in H32, 320 in H40);
// LineWidths records the width of each row, since the mode may change
// mid-frame. Pixels past a row's width are stale.
type Frame struct {
	Pix        []byte
	Stride     int
	Width      int
	Height     int
	LineWidths []uint16
}

// Clone returns a copy that does not alias emulator memory.
func (f Frame) Clone() Frame {
	c := f
	c.Pix = append([]byte(nil), f.Pix...)
	c.LineWidths = append([]uint16(nil), f.LineWidths...)
	return c
}

// At returns the RGBA bytes of pixel (x, y).
func (f Frame) At(x, y int) [4]byte {
	p := y*f.Stride + x*4
	return [4]byte{f.Pix[p], f.Pix[p+1], f.Pix[p+2], f.Pix[p+3]}
}

// FrameSink receives each completed frame. The frame is only valid for
// the duration of the call; keep a Clone to retain it.
type FrameSink interface {
	PresentFrame(f Frame)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(f Frame)

// PresentFrame calls fn(f).
func (fn FrameSinkFunc) PresentFrame(f Frame) { fn(f) }

// StretchTo writes f into dst scaled horizontally to ScreenWidth, the
// way a monitor shows H32 pixels wider. dst must hold Height rows of
// dstStride bytes.
func (f Frame) StretchTo(dst []byte, dstStride int) {
	for y := 0; y < f.Height; y++ {
		w := f.Width
		if y < len(f.LineWidths) && f.LineWidths[y] != 0 {
			w = int(f.LineWidths[y])
		}
		src := f.Pix[y*f.Stride:]
		out := dst[y*dstStride:]
		if w == ScreenWidth {
			copy(out[:ScreenWidth*4], src[:ScreenWidth*4])
			continue
		}
		for dx := 0; dx < ScreenWidth; dx++ {
			sx := dx * w / ScreenWidth
			copy(out[dx*4:dx*4+4], src[sx*4:sx*4+4])
		}
	}
}
