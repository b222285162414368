package embed

import (
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Container is a mount point on a page: the streams a widget reads keys from
// and renders to, and the area it may occupy.
type Container struct {
	ID     string
	In     io.Reader
	Out    io.Writer
	Width  int
	Height int
}

// Page owns the containers of a host surface.
type Page struct {
	mu         sync.Mutex
	containers map[string]*Container

	in     io.Reader
	out    io.Writer
	width  int
	height int
}

type PageOption func(*Page)

// WithSize sets the size given to newly created containers.
func WithSize(width, height int) PageOption {
	return func(p *Page) {
		p.width = width
		p.height = height
	}
}

// NewPage creates a page whose new containers use in and out. A nil in gives
// containers without keyboard input.
func NewPage(in io.Reader, out io.Writer, opts ...PageOption) *Page {
	if out == nil {
		out = io.Discard
	}
	p := &Page{
		containers: map[string]*Container{},
		in:         in,
		out:        out,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Page) Lookup(id string) (*Container, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.containers[id]
	return c, ok
}

// Create adds a container with the page's streams and size.
func (p *Page) Create(id string) (*Container, error) {
	return p.Add(&Container{ID: id, In: p.in, Out: p.out, Width: p.width, Height: p.height})
}

// Add registers an existing container. IDs are unique.
func (p *Page) Add(c *Container) (*Container, error) {
	if c == nil || c.ID == "" {
		return nil, errors.New("container id is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.containers[c.ID]; ok {
		return nil, errors.Errorf("container %q already exists", c.ID)
	}
	if c.Out == nil {
		c.Out = io.Discard
	}
	p.containers[c.ID] = c
	return c, nil
}

// Remove detaches the container. It reports whether it was present.
func (p *Page) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.containers[id]; !ok {
		return false
	}
	delete(p.containers, id)
	return true
}

func (p *Page) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.containers))
	for id := range p.containers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
