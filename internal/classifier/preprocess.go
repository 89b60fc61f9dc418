package classifier

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/transform"
	"github.com/gabriel-vasile/mimetype"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultInputSize matches the spatial resolution the model was trained on.
const DefaultInputSize = 384

// Preprocessor turns raw upload bytes into the normalized tensor the model
// expects: size×size RGB pixels in NHWC layout, scaled to [0,1].
type Preprocessor struct {
	size int
}

func NewPreprocessor(size int) *Preprocessor {
	if size <= 0 {
		size = DefaultInputSize
	}

	return &Preprocessor{size: size}
}

// Size returns the square spatial dimension of produced tensors.
func (p *Preprocessor) Size() int {
	return p.size
}

// Prepare decodes, resizes and normalizes one image. The tensor it returns
// is owned by the caller and holds size×size×3 values.
func (p *Preprocessor) Prepare(raw []byte) ([]float32, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrUndecodable)
	}

	if mtype := mimetype.Detect(raw); !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: detected content type %s", ErrUndecodable, mtype.String())
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d %s image", ErrInvalidDimensions, bounds.Dx(), bounds.Dy(), format)
	}

	// Stretch to the model's square input. The training pipeline resizes the
	// same way rather than cropping.
	resized := transform.Resize(img, p.size, p.size, transform.Linear)

	data := make([]float32, p.size*p.size*3)
	i := 0
	for y := 0; y < p.size; y++ {
		for x := 0; x < p.size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data[i] = float32(r) / 65535.0
			data[i+1] = float32(g) / 65535.0
			data[i+2] = float32(b) / 65535.0
			i += 3
		}
	}

	return data, nil
}
