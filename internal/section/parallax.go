package section

// ParallaxObject is a decorative body that drifts slower than the content.
type ParallaxObject struct {
	ID      string  `yaml:"id"`
	Size    float64 `yaml:"size"`
	Color   string  `yaml:"color"`
	Opacity float64 `yaml:"opacity"`
	X       float64 `yaml:"x"` // percent of section width
	Y       float64 `yaml:"y"` // percent of section height
	Speed   float64 `yaml:"speed"`
	Glyph   string  `yaml:"glyph"`
}

// Offset is the vertical drift for a page scroll position.
func (o ParallaxObject) Offset(scrollY float64) float64 {
	return scrollY * o.Speed
}

// Position places the object inside a section box of w x h whose top is at
// top, given the current page scroll.
func (o ParallaxObject) Position(top, w, h, scrollY float64) (x, y float64) {
	return o.X / 100 * w, top + o.Y/100*h + o.Offset(scrollY)
}
