package widget

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIBase_Order(t *testing.T) {
	base, err := ResolveAPIBase("https://explicit.example/", "https://build.example")
	require.NoError(t, err)
	require.Equal(t, "https://explicit.example", base)

	base, err = ResolveAPIBase("   ", "https://build.example//")
	require.NoError(t, err)
	require.Equal(t, "https://build.example", base)

	_, err = ResolveAPIBase("", "")
	require.True(t, errors.Is(err, ErrNoAPIBase))
}

func TestResolveAPIBase_SlashesOnly(t *testing.T) {
	_, err := ResolveAPIBase("/", "")
	require.True(t, errors.Is(err, ErrNoAPIBase))

	_, err = ResolveAPIBase(" // ", "///")
	require.True(t, errors.Is(err, ErrNoAPIBase))

	base, err := ResolveAPIBase("/", "https://build.example/")
	require.NoError(t, err)
	require.Equal(t, "https://build.example", base)
}

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(Options{APIURL: "https://x"}, "")
	require.NoError(t, err)
	require.Equal(t, Config{
		Title:          DefaultTitle,
		WelcomeMessage: DefaultWelcomeMessage,
		PrimaryColor:   DefaultPrimaryColor,
		Position:       BottomRight,
		APIBase:        "https://x",
	}, cfg)
}

func TestResolve_Overrides(t *testing.T) {
	cfg, err := Resolve(Options{
		APIURL:         "https://x",
		Title:          "Support",
		WelcomeMessage: "Hello!",
		Position:       "Top-Left",
		PrimaryColor:   "#ff0000",
		RenderMarkdown: true,
	}, "")
	require.NoError(t, err)
	require.Equal(t, "Support", cfg.Title)
	require.Equal(t, "Hello!", cfg.WelcomeMessage)
	require.Equal(t, TopLeft, cfg.Position)
	require.Equal(t, "#ff0000", cfg.PrimaryColor)
	require.True(t, cfg.RenderMarkdown)
}

func TestResolve_UnknownPositionFallsBack(t *testing.T) {
	cfg, err := Resolve(Options{APIURL: "https://x", Position: "middle"}, "")
	require.NoError(t, err)
	require.Equal(t, DefaultPosition, cfg.Position)

	_, err = ParsePosition("middle")
	require.Error(t, err)
}

func TestResolve_MissingBase(t *testing.T) {
	_, err := Resolve(Options{Title: "x"}, "")
	require.ErrorIs(t, err, ErrNoAPIBase)
}

func TestPosition_Corners(t *testing.T) {
	require.True(t, TopLeft.Top())
	require.True(t, TopLeft.Left())
	require.False(t, BottomRight.Top())
	require.False(t, BottomRight.Left())
	require.True(t, BottomLeft.Left())
	require.True(t, TopRight.Top())
}
