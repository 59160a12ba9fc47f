package reel

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/draw"
)

// Surface is a raster target sized in physical pixels.
type Surface interface {
	// Resize sets the backing buffer size. Contents are undefined afterwards.
	Resize(width, height int)
	// Size returns the backing buffer size.
	Size() (width, height int)
	// Fill paints the whole buffer with c.
	Fill(c color.Color)
	// DrawScaled draws src scaled uniformly by scale with its top-left
	// corner at (dx, dy). Anything outside the buffer is cropped.
	DrawScaled(src image.Image, dx, dy, scale float64)
	// Snapshot copies the buffer into a straight-alpha image.
	Snapshot() *image.NRGBA
}

// --- GPU surface ---

// EbitenSurface is a Surface backed by an offscreen ebiten.Image. It also
// implements FramePreparer so frames are uploaded once, when they load.
type EbitenSurface struct {
	image *ebiten.Image
	w, h  int

	// textures caches uploads for frames that were not prepared.
	textures map[image.Image]*ebiten.Image
}

// NewEbitenSurface returns a surface with no backing buffer; call Resize.
func NewEbitenSurface() *EbitenSurface {
	return &EbitenSurface{}
}

// Image returns the backing image, or nil before the first Resize.
func (s *EbitenSurface) Image() *ebiten.Image {
	return s.image
}

// Resize implements Surface.
func (s *EbitenSurface) Resize(width, height int) {
	if s.image != nil && width == s.w && height == s.h {
		return
	}
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
	s.w, s.h = width, height
	if width > 0 && height > 0 {
		s.image = ebiten.NewImage(width, height)
	}
}

// Size implements Surface.
func (s *EbitenSurface) Size() (int, int) {
	return s.w, s.h
}

// Fill implements Surface.
func (s *EbitenSurface) Fill(c color.Color) {
	if s.image == nil {
		return
	}
	s.image.Fill(c)
}

// DrawScaled implements Surface.
func (s *EbitenSurface) DrawScaled(src image.Image, dx, dy, scale float64) {
	if s.image == nil || src == nil {
		return
	}
	tex, ok := src.(*ebiten.Image)
	if !ok {
		tex = s.texture(src)
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(dx, dy)
	op.Filter = ebiten.FilterLinear
	s.image.DrawImage(tex, &op)
}

// PrepareFrame implements FramePreparer by uploading img to the GPU.
func (s *EbitenSurface) PrepareFrame(img image.Image) image.Image {
	if _, ok := img.(*ebiten.Image); ok {
		return img
	}
	return ebiten.NewImageFromImage(img)
}

func (s *EbitenSurface) texture(src image.Image) *ebiten.Image {
	if tex, ok := s.textures[src]; ok {
		return tex
	}
	if s.textures == nil {
		s.textures = make(map[image.Image]*ebiten.Image)
	}
	tex := ebiten.NewImageFromImage(src)
	s.textures[src] = tex
	return tex
}

// Snapshot implements Surface. Must be called from the game loop.
func (s *EbitenSurface) Snapshot() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.w, s.h))
	if s.image == nil {
		return img
	}
	pixels := make([]byte, 4*s.w*s.h)
	s.image.ReadPixels(pixels)

	// Convert premultiplied RGBA to straight-alpha NRGBA.
	for i := 0; i < len(pixels); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// --- CPU surface ---

// RasterSurface is a Surface backed by an in-memory RGBA image. It needs no
// GPU and is what headless renders and tests use.
type RasterSurface struct {
	img *image.RGBA

	// Interpolator scales frames. Defaults to draw.ApproxBiLinear; use
	// draw.CatmullRom for offline renders.
	Interpolator draw.Interpolator
}

// NewRasterSurface returns an empty surface; call Resize.
func NewRasterSurface() *RasterSurface {
	return &RasterSurface{
		img:          image.NewRGBA(image.Rectangle{}),
		Interpolator: draw.ApproxBiLinear,
	}
}

// Image returns the backing image.
func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

// Resize implements Surface.
func (s *RasterSurface) Resize(width, height int) {
	if width == s.img.Rect.Dx() && height == s.img.Rect.Dy() {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}

// Size implements Surface.
func (s *RasterSurface) Size() (int, int) {
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Fill implements Surface.
func (s *RasterSurface) Fill(c color.Color) {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

// DrawScaled implements Surface.
func (s *RasterSurface) DrawScaled(src image.Image, dx, dy, scale float64) {
	if src == nil || !(scale > 0) {
		return
	}
	sr := src.Bounds()
	dr := image.Rect(
		int(math.Round(dx)),
		int(math.Round(dy)),
		int(math.Round(dx+float64(sr.Dx())*scale)),
		int(math.Round(dy+float64(sr.Dy())*scale)),
	)
	interp := s.Interpolator
	if interp == nil {
		interp = draw.ApproxBiLinear
	}
	interp.Scale(s.img, dr, src, sr, draw.Over, nil)
}

// Snapshot implements Surface.
func (s *RasterSurface) Snapshot() *image.NRGBA {
	out := image.NewNRGBA(s.img.Rect)
	draw.Draw(out, out.Rect, s.img, s.img.Rect.Min, draw.Src)
	return out
}
