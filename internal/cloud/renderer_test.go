package cloud

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnechkaShv/freqcloud/internal/config"
	"github.com/AnechkaShv/freqcloud/internal/frequency"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	r := NewRenderer(logger)
	r.Viewer = func(string) error {
		t.Fatal("viewer should not be called")
		return nil
	}
	return r
}

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "word.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T, csv string) config.Config {
	t.Helper()
	dir := t.TempDir()
	font, err := WriteDefaultFont(dir)
	require.NoError(t, err)

	return config.Config{
		InputPath:   writeCSV(t, dir, csv),
		LabelColumn: "word",
		FreqColumn:  "freq",
		FontPath:    font,
		OutputPath:  filepath.Join(dir, "out.png"),
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRender(t *testing.T) {
	cfg := testConfig(t, "word,freq\nhello,10\nworld,5\n")
	r := newTestRenderer(t)

	require.NoError(t, r.Render(context.Background(), cfg))

	img := decodePNG(t, cfg.OutputPath)
	assert.Equal(t, Width, img.Bounds().Dx())
	assert.Equal(t, Height, img.Bounds().Dy())

	// Corners stay background.
	cr, cg, cb, _ := img.At(0, 0).RGBA()
	wr, wg, wb, _ := color.White.RGBA()
	assert.Equal(t, []uint32{wr, wg, wb}, []uint32{cr, cg, cb})
}

func TestRenderOverwrites(t *testing.T) {
	cfg := testConfig(t, "word,freq\nhello,10\nworld,5\n")
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte("stale"), 0644))

	require.NoError(t, newTestRenderer(t).Render(context.Background(), cfg))
	decodePNG(t, cfg.OutputPath)

	entries, err := os.ReadDir(filepath.Dir(cfg.OutputPath))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".out.png.", "temporary file left behind")
	}
}

func TestRenderShow(t *testing.T) {
	cfg := testConfig(t, "word,freq\nhello,10\nworld,5\n")
	cfg.Show = true

	var shown string
	r := newTestRenderer(t)
	r.Viewer = func(path string) error {
		shown = path
		return nil
	}

	require.NoError(t, r.Render(context.Background(), cfg))
	assert.Equal(t, cfg.OutputPath, shown)
}

func TestRenderFailures(t *testing.T) {
	tests := []struct {
		name      string
		csv       string
		modify    func(cfg *config.Config)
		wantStage Stage
	}{
		{
			name:      "missing input file",
			csv:       "word,freq\nhello,10\n",
			modify:    func(cfg *config.Config) { cfg.InputPath += ".missing" },
			wantStage: StageDataAccess,
		},
		{
			name:      "missing label column",
			csv:       "english_word,freq\nhello,10\n",
			wantStage: StageDataAccess,
		},
		{
			name:      "missing freq column",
			csv:       "word,count\nhello,10\n",
			wantStage: StageDataAccess,
		},
		{
			name:      "nonexistent font",
			csv:       "word,freq\nhello,10\nworld,5\n",
			modify:    func(cfg *config.Config) { cfg.FontPath = filepath.Join(filepath.Dir(cfg.FontPath), "nope.ttf") },
			wantStage: StageResourceLoad,
		},
		{
			name: "invalid font",
			csv:  "word,freq\nhello,10\nworld,5\n",
			modify: func(cfg *config.Config) {
				cfg.FontPath = cfg.InputPath
			},
			wantStage: StageResourceLoad,
		},
		{
			name:      "header only",
			csv:       "word,freq\n",
			wantStage: StageLayout,
		},
		{
			name:      "all frequencies zero",
			csv:       "word,freq\na,0\n",
			wantStage: StageLayout,
		},
		{
			name: "unwritable output directory",
			csv:  "word,freq\nhello,10\nworld,5\n",
			modify: func(cfg *config.Config) {
				cfg.OutputPath = filepath.Join(filepath.Dir(cfg.OutputPath), "missing", "out.png")
			},
			wantStage: StageWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.csv)
			if tt.modify != nil {
				tt.modify(&cfg)
			}

			err := newTestRenderer(t).Render(context.Background(), cfg)
			require.Error(t, err)
			assert.Equal(t, tt.wantStage, StageOf(err), "error: %v", err)

			_, statErr := os.Stat(cfg.OutputPath)
			assert.True(t, os.IsNotExist(statErr), "output must not be written")
		})
	}
}

func TestRenderEmptyMapping(t *testing.T) {
	cfg := testConfig(t, "word,freq\n")

	err := newTestRenderer(t).Render(context.Background(), cfg)
	assert.True(t, errors.Is(err, ErrEmptyMapping))
}

func TestRenderCancelled(t *testing.T) {
	cfg := testConfig(t, "word,freq\nhello,10\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestRenderer(t).Render(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(cfg.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRenderLogs(t *testing.T) {
	cfg := testConfig(t, "word,freq\nhello,10\nworld,5\n")
	logger, hook := test.NewNullLogger()
	r := NewRenderer(logger)

	require.NoError(t, r.Render(context.Background(), cfg))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, cfg.OutputPath, entry.Data["output"])
}

func TestComposite(t *testing.T) {
	r := newTestRenderer(t)
	raster := image.NewRGBA(image.Rect(0, 0, 2*Width, 2*Height))

	img := r.composite(raster)
	assert.Equal(t, image.Rect(0, 0, Width, Height), img.Bounds())
}

func TestDrawFractionalFrequencies(t *testing.T) {
	font, err := WriteDefaultFont(t.TempDir())
	require.NoError(t, err)

	img, err := newTestRenderer(t).Draw(frequency.Mapping{"alpha": 0.75, "beta": 0.25}, font)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, Width, Height), img.Bounds())
}

func TestLoadFont(t *testing.T) {
	font, err := WriteDefaultFont(t.TempDir())
	require.NoError(t, err)

	f, err := LoadFont(font)
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = LoadFont(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Stage: StageWrite, Path: "/tmp/out.png", Err: errors.New("boom")}
	assert.Equal(t, "write failed for /tmp/out.png: boom", err.Error())

	err = &Error{Stage: StageLayout, Err: ErrEmptyMapping}
	assert.Equal(t, "layout failed: frequency mapping is empty", err.Error())
	assert.Equal(t, Stage(0), StageOf(errors.New("plain")))
}

func TestDrawSignedFrequencies(t *testing.T) {
	font, err := WriteDefaultFont(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name    string
		mapping frequency.Mapping
	}{
		{name: "negative", mapping: frequency.Mapping{"a": -1, "b": -2}},
		{name: "mixed sign", mapping: frequency.Mapping{"a": 5, "b": -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := newTestRenderer(t).Draw(tt.mapping, font)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, Width, Height), img.Bounds())
		})
	}
}

func TestDrawZeroFrequencyIsLayoutError(t *testing.T) {
	font, err := WriteDefaultFont(t.TempDir())
	require.NoError(t, err)

	_, err = newTestRenderer(t).Draw(frequency.Mapping{"a": 0}, font)
	require.Error(t, err)
	assert.Equal(t, StageLayout, StageOf(err))
	assert.Contains(t, err.Error(), "panicked")
}

func TestLayoutBackgroundMatchesPixels(t *testing.T) {
	font, err := WriteDefaultFont(t.TempDir())
	require.NoError(t, err)

	r := newTestRenderer(t)
	raster, err := r.layout(map[string]int{"hello": 10, "world": 5}, font)
	require.NoError(t, err)

	// The engine compares pixels to the background as color.Color values.
	var bg color.Color = r.Background
	assert.True(t, raster.At(0, 0) == bg, "corner pixel %#v is not the background %#v", raster.At(0, 0), bg)
}
