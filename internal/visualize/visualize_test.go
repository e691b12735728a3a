package visualize

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/credex/internal/extract"
	"github.com/MeKo-Tech/credex/internal/testutil"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nrgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func TestRenderOverlay_SampleCard(t *testing.T) {
	tokens := testutil.SampleCard()
	res := extract.New(extract.DefaultOptions()).Extract(tokens)
	style := DefaultStyle()

	img := RenderOverlay(tokens, res, style)
	require.NotNil(t, img)

	// Layout spans x 10..300 and y 0..110, plus a 16px margin on each side.
	assert.Equal(t, 322, img.Bounds().Dx())
	assert.Equal(t, 142, img.Bounds().Dy())

	// Token (x, y) lands on pixel (x-10+16, y+16).
	assert.Equal(t, nrgba(style.Token), img.NRGBAAt(306, 16), "header corner")
	assert.Equal(t, nrgba(style.Label), img.NRGBAAt(66, 86), "name label corner")
	assert.Equal(t, nrgba(style.Value), img.NRGBAAt(266, 86), "name value corner")
	assert.Equal(t, nrgba(style.Background), img.NRGBAAt(1, 1))
}

func TestRenderOverlay_NoResult(t *testing.T) {
	tokens := testutil.SampleCard()
	style := DefaultStyle()

	img := RenderOverlay(tokens, nil, style)
	assert.Equal(t, nrgba(style.Token), img.NRGBAAt(266, 86))
}

func TestRenderOverlay_EmptyLayout(t *testing.T) {
	style := DefaultStyle()
	img := RenderOverlay(nil, nil, style)
	assert.Equal(t, 2*style.Margin, img.Bounds().Dx())
	assert.Equal(t, 2*style.Margin, img.Bounds().Dy())

	// Tokens without vertices are skipped rather than failing the render.
	img = RenderOverlay([]extract.Token{{Text: "ghost", Confidence: 0.9}}, nil, style)
	assert.Equal(t, 2*style.Margin, img.Bounds().Dx())
}

func TestSavePNG(t *testing.T) {
	img := RenderOverlay(testutil.SampleCard(), nil, DefaultStyle())
	path := filepath.Join(t.TempDir(), "overlay.png")

	require.NoError(t, SavePNG(img, path))

	loaded, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Size(), loaded.Bounds().Size())
}

func TestSavePNG_BadPath(t *testing.T) {
	img := RenderOverlay(nil, nil, DefaultStyle())
	assert.Error(t, SavePNG(img, filepath.Join(t.TempDir(), "missing", "overlay.png")))
}
