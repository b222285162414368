package runtime

import (
	"testing"

	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/stretchr/testify/require"
)

func TestWidgetBuilder_RequiresConfig(t *testing.T) {
	_, err := NewWidgetBuilder().BuildModel()
	require.Error(t, err)
}

func TestWidgetBuilder_RequiresAPIBase(t *testing.T) {
	_, err := NewWidgetBuilder().WithConfig(widget.Config{}).BuildModel()
	require.ErrorIs(t, err, widget.ErrNoAPIBase)
}

func TestWidgetBuilder_BuildsClosedShell(t *testing.T) {
	cfg, err := widget.Resolve(widget.Options{APIURL: "https://bot.example.com/"}, "")
	require.NoError(t, err)

	m, err := NewWidgetBuilder().WithConfig(cfg).BuildModel()
	require.NoError(t, err)
	require.False(t, m.IsOpen())
	require.True(t, m.Panel().Conversation().ShowWelcome())

	p, err := NewWidgetBuilder().WithConfig(cfg).BuildProgram()
	require.NoError(t, err)
	require.NotNil(t, p)
}
