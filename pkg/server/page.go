package server

import (
	"bytes"
	_ "embed"
	"os"

	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/dom"
)

//go:embed default_page.html
var defaultPage []byte

// Page is the markup every request starts from.
type Page struct {
	markup []byte
	source string
}

// LoadPage reads the page template at path. An empty path selects the
// built-in page. The markup is parsed once so errors surface at startup.
func LoadPage(path string) (*Page, error) {
	if path == "" {
		return &Page{markup: defaultPage, source: "builtin"}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("T104").
			WithDetail("Could not read " + path).
			WithSuggestion("Check page.template in toastd.json or TOASTD_TEMPLATE").
			Wrap(err)
	}

	p := &Page{markup: data, source: path}
	if _, err := p.Document(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPage uses markup as the page template.
func NewPage(markup string) *Page {
	return &Page{markup: []byte(markup), source: "inline"}
}

// Document parses a fresh document from the template.
func (p *Page) Document() (*dom.Document, error) {
	return dom.Parse(bytes.NewReader(p.markup))
}

// Source describes where the template came from.
func (p *Page) Source() string {
	return p.source
}
