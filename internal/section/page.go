package section

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed page.yaml
var defaultPage []byte

// Item is one entry inside a section: a constellation node, a timeline
// milestone, a card.
type Item struct {
	ID    string   `yaml:"id"`
	Tag   string   `yaml:"tag"`
	Title string   `yaml:"title"`
	Text  string   `yaml:"text"`
	Color string   `yaml:"color"`
	X     float64  `yaml:"x"` // percent of section width
	Y     float64  `yaml:"y"` // percent of section height
	Size  float64  `yaml:"size"`
	Links []string `yaml:"links"`
}

type Section struct {
	ID       string  `yaml:"id"`
	Kind     string  `yaml:"kind"`
	Title    string  `yaml:"title"`
	Subtitle string  `yaml:"subtitle"`
	Height   float64 `yaml:"height"` // in viewport heights
	Next     string  `yaml:"next"`   // target of the transition control
	Items    []Item  `yaml:"items"`
}

// Page is the full content document.
type Page struct {
	Sections []Section        `yaml:"sections"`
	Parallax []ParallaxObject `yaml:"parallax"`
}

var ErrEmptyPage = errors.New("section: page has no sections")

// DefaultPage parses the embedded page content.
func DefaultPage() (*Page, error) {
	return ParsePage(defaultPage)
}

// ParsePage decodes and checks a page document. Section ids must be unique
// and transition targets must exist.
func ParsePage(data []byte) (*Page, error) {
	var p Page
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	if len(p.Sections) == 0 {
		return nil, ErrEmptyPage
	}
	seen := make(map[string]bool, len(p.Sections))
	for i, s := range p.Sections {
		if s.ID == "" {
			return nil, fmt.Errorf("parse page: section %d has no id", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("parse page: duplicate section id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Height <= 0 {
			p.Sections[i].Height = 1
		}
	}
	for _, s := range p.Sections {
		if s.Next != "" && !seen[s.Next] {
			return nil, fmt.Errorf("parse page: section %q links to unknown %q", s.ID, s.Next)
		}
	}
	for i := range p.Parallax {
		if p.Parallax[i].Opacity == 0 {
			p.Parallax[i].Opacity = 1
		}
	}
	return &p, nil
}

// Section returns the section with id.
func (p *Page) Section(id string) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}
