package game

import (
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/nexus/internal/render"
)

// ImageSurface is a render.Surface backed by an offscreen ebiten image of
// viewport * scale device pixels. Callers paint in viewport units.
type ImageSurface struct {
	mu    sync.Mutex
	w, h  int
	scale float64
	img   *ebiten.Image
	gone  bool
}

func NewImageSurface(w, h int, scale float64) *ImageSurface {
	s := &ImageSurface{}
	s.Resize(w, h, scale)
	return s
}

// Resize drops the backing image; the next paint allocates one at the new
// size.
func (s *ImageSurface) Resize(w, h int, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == w && s.h == h && s.scale == scale {
		return
	}
	s.w, s.h, s.scale = max(w, 0), max(h, 0), scale
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}

func (s *ImageSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *ImageSurface) Scale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

func (s *ImageSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := s.image()
	if err != nil || img == nil {
		return err
	}
	img.Clear()
	return nil
}

func (s *ImageSurface) FillCircle(x, y, r float64, c color.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, err := s.image()
	if err != nil || img == nil {
		return err
	}
	k := s.scale
	vector.DrawFilledCircle(img, float32(x*k), float32(y*k), float32(r*k), c, true)
	return nil
}

// image returns the backing image, allocating it on first use. A zero sized
// surface has no image and paints nothing.
func (s *ImageSurface) image() (*ebiten.Image, error) {
	if s.gone {
		return nil, render.ErrSurfaceGone
	}
	if s.img == nil {
		pw, ph := s.devicePixels()
		if pw == 0 || ph == 0 {
			return nil, nil
		}
		s.img = ebiten.NewImage(pw, ph)
	}
	return s.img, nil
}

func (s *ImageSurface) devicePixels() (int, int) {
	return int(math.Ceil(float64(s.w) * s.scale)), int(math.Ceil(float64(s.h) * s.scale))
}

// DrawTo composites the canvas onto dst at viewport scale.
func (s *ImageSurface) DrawTo(dst *ebiten.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1/s.scale, 1/s.scale)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(s.img, op)
}

// Release frees the image; the render loop stops on its next frame.
func (s *ImageSurface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gone = true
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
}
