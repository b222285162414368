package widget

import (
	"strings"

	"github.com/pkg/errors"
)

// Position is the page corner the widget is anchored to.
type Position string

const (
	BottomRight Position = "bottom-right"
	BottomLeft  Position = "bottom-left"
	TopRight    Position = "top-right"
	TopLeft     Position = "top-left"
)

const (
	DefaultTitle          = "Chat"
	DefaultWelcomeMessage = "Hi! How can I help you today?"
	DefaultPrimaryColor   = "#059669"
	DefaultPosition       = BottomRight
)

// ErrNoAPIBase is returned when neither the init options nor the build-time
// default provide a backend URL.
var ErrNoAPIBase = errors.New("no backend URL: pass apiUrl in init options or build with a default API URL")

// Valid reports whether p is one of the four supported corners.
func (p Position) Valid() bool {
	switch p {
	case BottomRight, BottomLeft, TopRight, TopLeft:
		return true
	}
	return false
}

func (p Position) Top() bool  { return p == TopRight || p == TopLeft }
func (p Position) Left() bool { return p == BottomLeft || p == TopLeft }

// ParsePosition accepts the host-facing spelling of a corner.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.Errorf("unknown position %q (want bottom-right, bottom-left, top-right or top-left)", s)
	}
	return p, nil
}

// Options are the values a host page passes to init. Zero values mean
// "use the default".
type Options struct {
	APIURL         string `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty"`
	Title          string `json:"title,omitempty" yaml:"title,omitempty"`
	WelcomeMessage string `json:"welcomeMessage,omitempty" yaml:"welcomeMessage,omitempty"`
	Position       string `json:"position,omitempty" yaml:"position,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty"`
	RenderMarkdown bool   `json:"markdown,omitempty" yaml:"markdown,omitempty"`
}

// Config is the per-mount configuration. It is built once by Resolve and not
// mutated afterwards; components receive it by value.
type Config struct {
	Title          string
	WelcomeMessage string
	PrimaryColor   string
	Position       Position
	APIBase        string
	RenderMarkdown bool
}

// ResolveAPIBase picks the backend URL: explicit option first, then the
// build-time default. Trailing slashes are dropped.
func ResolveAPIBase(explicit, buildDefault string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(explicit), "/")
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(buildDefault), "/")
	}
	if base == "" {
		return "", ErrNoAPIBase
	}
	return base, nil
}

// Resolve applies defaults to opts and resolves the API base. A position
// that does not parse falls back to DefaultPosition; callers that want to
// report it run ParsePosition themselves.
func Resolve(opts Options, buildDefault string) (Config, error) {
	base, err := ResolveAPIBase(opts.APIURL, buildDefault)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Title:          firstNonEmpty(opts.Title, DefaultTitle),
		WelcomeMessage: firstNonEmpty(opts.WelcomeMessage, DefaultWelcomeMessage),
		PrimaryColor:   firstNonEmpty(opts.PrimaryColor, DefaultPrimaryColor),
		Position:       DefaultPosition,
		APIBase:        base,
		RenderMarkdown: opts.RenderMarkdown,
	}
	if p, err := ParsePosition(opts.Position); err == nil {
		cfg.Position = p
	}
	return cfg, nil
}

func firstNonEmpty(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
