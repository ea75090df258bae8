package dashboard

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// ContainerID is the id of the host element the dashboard mounts into.
const ContainerID = "financial-dashboard"

// Page is a fully loaded host document that may contain a dashboard
// container.
//
// A Page owns at most one render [Root]. Page is safe for concurrent use.
type Page struct {
	mu    sync.Mutex
	doc   *goquery.Document
	cards CardRenderer
	root  *Root
}

// PageOption configures a [Page].
type PageOption func(*Page)

// WithCardRenderer makes the page's dashboard render cards with r.
func WithCardRenderer(r CardRenderer) PageOption {
	return func(p *Page) {
		p.cards = r
	}
}

// ParsePage reads and parses a host HTML document.
func ParsePage(r io.Reader, opts ...PageOption) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return NewPage(doc, opts...), nil
}

// NewPage wraps an already parsed document.
func NewPage(doc *goquery.Document, opts ...PageOption) *Page {
	p := &Page{doc: doc}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mount renders the dashboard for metrics into the page's
// #financial-dashboard element.
//
// The first successful Mount creates the page's render root; later calls
// reuse it and re-render with the new metrics. When the page has no
// container, Mount returns a nil root and a nil error and leaves the
// document untouched.
func (p *Page) Mount(metrics *Metrics) (*Root, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.root == nil {
		container := p.doc.Find("#" + ContainerID).First()
		if container.Length() == 0 {
			return nil, nil
		}
		p.root = &Root{container: container, cards: p.cards, mu: &p.mu}
	}

	if err := p.root.render(metrics); err != nil {
		return nil, err
	}
	return p.root, nil
}

// HTML returns the serialized document.
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Html()
}

// WriteTo writes the serialized document to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	s, err := p.HTML()
	if err != nil {
		return 0, fmt.Errorf("failed to serialize page: %w", err)
	}
	return io.Copy(w, strings.NewReader(s))
}

// Root is the render root bound to a page's dashboard container.
type Root struct {
	mu        *sync.Mutex
	container *goquery.Selection
	cards     CardRenderer
}

// Render replaces the container's contents with the dashboard for metrics.
func (r *Root) Render(metrics *Metrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.render(metrics)
}

func (r *Root) render(metrics *Metrics) error {
	markup, err := Dashboard{Metrics: metrics, Cards: r.cards}.HTML()
	if err != nil {
		return err
	}
	r.container.SetHtml(markup)
	return nil
}

// RenderPage parses a host document, mounts the dashboard for metrics and
// writes the result to w. Documents without a container are copied through
// unchanged apart from serialization.
func RenderPage(w io.Writer, host io.Reader, metrics *Metrics, opts ...PageOption) error {
	page, err := ParsePage(host, opts...)
	if err != nil {
		return err
	}
	if _, err := page.Mount(metrics); err != nil {
		return fmt.Errorf("failed to mount dashboard: %w", err)
	}
	_, err = page.WriteTo(w)
	return err
}
