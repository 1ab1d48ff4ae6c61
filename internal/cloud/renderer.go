// Package cloud renders frequency mappings as word-cloud PNG images.
//
// Placement and font sizing are delegated to github.com/psykhi/wordclouds;
// this package validates inputs, composites the result onto a fixed-size
// white canvas and persists it.
package cloud

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"github.com/psykhi/wordclouds"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"github.com/AnechkaShv/freqcloud/internal/config"
	"github.com/AnechkaShv/freqcloud/internal/frequency"
)

// Canvas size of every rendered cloud.
const (
	Width  = 800
	Height = 400
)

// DefaultPalette is the set of colours words are drawn in.
var DefaultPalette = []color.Color{
	color.RGBA{255, 0, 0, 255},     // Red
	color.RGBA{0, 0, 255, 255},     // Blue
	color.RGBA{0, 128, 0, 255},     // Green
	color.RGBA{128, 0, 128, 255},   // Purple
	color.RGBA{255, 165, 0, 255},   // Orange
	color.RGBA{0, 0, 0, 255},       // Black
	color.RGBA{255, 192, 203, 255}, // Pink
	color.RGBA{165, 42, 42, 255},   // Brown
}

// Renderer turns frequency mappings into word-cloud images.
type Renderer struct {
	Width  int
	Height int
	// Background must be an RGBA value: the layout engine finds word
	// boundaries by comparing canvas pixels to it with ==.
	Background  color.RGBA
	Palette     []color.Color
	MinFontSize int
	MaxFontSize int
	// Viewer is called with the output path when a run asks to show the image.
	Viewer func(path string) error

	log logrus.FieldLogger
}

// NewRenderer returns a Renderer for the standard 800x400 white canvas.
func NewRenderer(log logrus.FieldLogger) *Renderer {
	return &Renderer{
		Width:       Width,
		Height:      Height,
		Background:  color.RGBA{0xff, 0xff, 0xff, 0xff},
		Palette:     DefaultPalette,
		MinFontSize: 10,
		MaxFontSize: Height / 3,
		Viewer:      Show,
		log:         log,
	}
}

// Render runs the whole pipeline for cfg: load the csv, build the mapping,
// lay it out, save the PNG and optionally show it. Any failure aborts the
// run; nothing is written unless the image was drawn successfully.
func (r *Renderer) Render(ctx context.Context, cfg config.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := r.log.WithFields(logrus.Fields{
		"input":  cfg.InputPath,
		"output": cfg.OutputPath,
	})

	table, err := frequency.Load(cfg.InputPath, cfg.LabelColumn, cfg.FreqColumn)
	if err != nil {
		return &Error{Stage: StageDataAccess, Path: cfg.InputPath, Err: err}
	}

	mapping := frequency.BuildMapping(table)
	log.WithFields(logrus.Fields{
		"rows":   len(table.Rows),
		"labels": len(mapping),
	}).Debug("Frequency mapping built")

	img, err := r.Draw(mapping, cfg.FontPath)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.Save(img, cfg.OutputPath); err != nil {
		return err
	}
	log.Info("Word cloud saved")

	if cfg.Show && r.Viewer != nil {
		if err := r.Viewer(cfg.OutputPath); err != nil {
			return err
		}
	}
	return nil
}

// Draw lays out the mapping with the font at fontPath and returns the
// finished canvas.
func (r *Renderer) Draw(m frequency.Mapping, fontPath string) (image.Image, error) {
	if _, err := LoadFont(fontPath); err != nil {
		return nil, &Error{Stage: StageResourceLoad, Path: fontPath, Err: err}
	}

	if len(m) == 0 {
		return nil, &Error{Stage: StageLayout, Err: ErrEmptyMapping}
	}

	raster, err := r.layout(m.Weights(), fontPath)
	if err != nil {
		return nil, &Error{Stage: StageLayout, Err: err}
	}

	return r.composite(raster), nil
}

func (r *Renderer) layout(weights map[string]int, fontPath string) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("word cloud engine panicked: %v", p)
		}
	}()

	wc := wordclouds.NewWordcloud(
		weights,
		wordclouds.FontFile(fontPath),
		wordclouds.Width(r.Width),
		wordclouds.Height(r.Height),
		wordclouds.BackgroundColor(r.Background),
		wordclouds.Colors(r.Palette),
		wordclouds.FontMinSize(r.MinFontSize),
		wordclouds.FontMaxSize(r.MaxFontSize),
		wordclouds.RandomPlacement(false),
	)
	img = wc.Draw()
	if img == nil {
		return nil, errors.New("word cloud engine returned no image")
	}
	return img, nil
}

// composite places the raster on a canvas of exactly Width x Height, with no
// decorations. Rasters of another size are scaled bilinearly.
func (r *Renderer) composite(raster image.Image) image.Image {
	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(r.Background)
	dc.Clear()

	b := raster.Bounds()
	if b.Dx() != r.Width || b.Dy() != r.Height {
		scaled := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
		xdraw.BiLinear.Scale(scaled, scaled.Bounds(), raster, b, xdraw.Over, nil)
		raster = scaled
	}

	dc.DrawImage(raster, 0, 0)
	return dc.Image()
}

// Encode returns img as PNG bytes.
func (r *Renderer) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "encoding png failed")
	}
	return buf.Bytes(), nil
}

// Save writes img to path as PNG. The file is written next to its final
// location and renamed into place, so a failed save leaves no partial file.
// An existing file at path is replaced.
func (r *Renderer) Save(img image.Image, path string) error {
	data, err := r.Encode(img)
	if err != nil {
		return &Error{Stage: StageWrite, Path: path, Err: err}
	}

	if err := writeFileAtomic(path, data); err != nil {
		return &Error{Stage: StageWrite, Path: path, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temporary file failed")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temporary file failed")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temporary file failed")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrap(err, "setting file mode failed")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "renaming into place failed")
}
