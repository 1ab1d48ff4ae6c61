package cloud

import (
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontName is the file name WriteDefaultFont uses.
const DefaultFontName = "goregular.ttf"

// LoadFont reads and parses a TrueType font.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading font failed")
	}

	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing font failed")
	}
	return f, nil
}

// WriteDefaultFont stores the bundled Go Regular font in dir and returns
// its path. The layout engine only accepts fonts by path.
func WriteDefaultFont(dir string) (string, error) {
	path := filepath.Join(dir, DefaultFontName)
	if err := os.WriteFile(path, goregular.TTF, 0644); err != nil {
		return "", errors.Wrapf(err, "writing default font to %s failed", path)
	}
	return path, nil
}
