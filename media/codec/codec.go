// Package codec re-encodes uploaded images into size-bounded JPEG payloads.
//
// The compressor bounds the worst-case storage cost per image: oversized
// dimensions are scaled down proportionally, then the JPEG quality is walked
// downward in fixed decrements until the payload fits under the configured
// ceiling. The quality walk is a bounded linear search, not a bisection; at
// most eight steps happen between the default start quality and the floor.
package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/agrovista/mediavault/bytesize"
	"github.com/agrovista/mediavault/media"
)

const (
	// DefaultMaxDimension is the long-side pixel bound applied when the
	// configuration does not override it.
	DefaultMaxDimension = 1920

	// DefaultInitialQuality is the JPEG quality the search starts from.
	DefaultInitialQuality = 80

	// qualityStep is how far each iteration lowers the JPEG quality.
	qualityStep = 10

	// minQuality is the floor below which quality is never lowered.
	minQuality = 10

	// fallbackQuality is used for the single extra downscale pass taken when
	// the floor quality still produces an oversized payload.
	fallbackQuality = 50

	// downscalePercent shrinks dimensions to 80% for the fallback pass.
	downscalePercent = 80
)

// Options tune a compression run. Zero values fall back to the defaults.
type Options struct {
	// MaxDimension bounds the longer side of the output image in pixels.
	MaxDimension int

	// InitialQuality is the JPEG quality (1-100) the search starts from.
	InitialQuality int

	// Ceiling is the maximum byte size of the output payload.
	Ceiling int64
}

func (o Options) withDefaults() Options {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.InitialQuality <= 0 {
		o.InitialQuality = DefaultInitialQuality
	}
	return o
}

// Compress decodes an input image, resizes it proportionally when its longer
// side exceeds the configured maximum, and re-encodes it as JPEG under the
// byte ceiling.
//
// It returns media.ErrEncoding when the input cannot be decoded and
// media.ErrSizeExceeded when the ceiling cannot be met even after the
// fallback downscale pass. It never touches the asset store.
func Compress(data []byte, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrEncoding, err)
	}

	img = boundDimensions(img, opts.MaxDimension)

	for quality := opts.InitialQuality; quality >= minQuality; quality -= qualityStep {
		out, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if int64(len(out)) <= opts.Ceiling {
			return out, nil
		}
	}

	// Floor quality was still too large; take one geometric downscale pass
	// and re-encode at a moderate quality.
	bounds := img.Bounds()
	img = imaging.Resize(img, bounds.Dx()*downscalePercent/100, 0, imaging.Lanczos)

	out, err := encodeJPEG(img, fallbackQuality)
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > opts.Ceiling {
		return nil, fmt.Errorf("%w: compressed image is %s, ceiling is %s",
			media.ErrSizeExceeded, bytesize.Format(int64(len(out))), bytesize.Format(opts.Ceiling))
	}

	return out, nil
}

// boundDimensions shrinks the image proportionally so its longer side is at
// most maxDimension. Images already within the bound pass through untouched.
func boundDimensions(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return img
	}

	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
