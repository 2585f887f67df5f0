package atlas

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"math"
)

const (
	MinTier = 1
	MaxTier = 4
)

// ErrMissingTier is returned when the sheet for the selected tier cannot
// be loaded. It is fatal: there is nothing sensible to draw without it.
var ErrMissingTier = errors.New("asset sheet missing")

// SelectTier picks the sheet resolution for a dp scale: one tier above
// the scale so assets are always downsampled, clamped to the tiers that
// ship.
func SelectTier(scale float64) int {
	tier := int(math.Ceil(scale)) + 1
	if tier < MinTier {
		tier = MinTier
	}
	if tier > MaxTier {
		tier = MaxTier
	}
	return tier
}

// SheetName returns the file name of a tier's sheet.
func SheetName(tier int) string {
	return fmt.Sprintf("assets@%dx.png", tier)
}

// Source loads the sprite sheet for a tier.
type Source interface {
	Open(tier int) (image.Image, error)
}

// FSSource reads PNG sheets named by SheetName from a file system.
type FSSource struct {
	FS fs.FS
}

// Open implements Source.
func (s FSSource) Open(tier int) (image.Image, error) {
	name := SheetName(tier)
	f, err := s.FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingTier, name, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrMissingTier, name, err)
	}
	return img, nil
}
