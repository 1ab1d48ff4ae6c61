package cloud

import (
	"github.com/pkg/browser"
	"github.com/pkg/errors"
)

// Show opens the image at path with the system's default viewer.
func Show(path string) error {
	if err := browser.OpenFile(path); err != nil {
		return errors.Wrapf(err, "opening %s failed", path)
	}
	return nil
}
