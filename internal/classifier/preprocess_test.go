package classifier

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}

	return buf.Bytes()
}

func TestPrepareProducesNormalizedTensor(t *testing.T) {
	pre := NewPreprocessor(4)
	raw := encodePNG(t, 10, 6, color.White)

	tensor, err := pre.Prepare(raw)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if len(tensor) != 4*4*3 {
		t.Fatalf("expected %d values, got %d", 4*4*3, len(tensor))
	}

	for i, v := range tensor {
		if v < 0 || v > 1 {
			t.Fatalf("value %d out of [0,1]: %v", i, v)
		}
		if math.Abs(float64(v)-1.0) > 0.01 {
			t.Fatalf("expected white pixel value ~1.0 at %d, got %v", i, v)
		}
	}
}

func TestPrepareInterleavesChannels(t *testing.T) {
	pre := NewPreprocessor(2)
	raw := encodePNG(t, 8, 8, color.RGBA{R: 255, A: 255})

	tensor, err := pre.Prepare(raw)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	for i := 0; i < len(tensor); i += 3 {
		r, g, b := tensor[i], tensor[i+1], tensor[i+2]
		if math.Abs(float64(r)-1.0) > 0.01 || g > 0.01 || b > 0.01 {
			t.Fatalf("pixel %d: expected (1,0,0), got (%v,%v,%v)", i/3, r, g, b)
		}
	}
}

func TestPrepareRejectsGarbage(t *testing.T) {
	pre := NewPreprocessor(4)

	if _, err := pre.Prepare([]byte("definitely not an image")); !errors.Is(err, ErrUndecodable) {
		t.Errorf("expected ErrUndecodable, got %v", err)
	}
}

func TestPrepareRejectsEmptyPayload(t *testing.T) {
	pre := NewPreprocessor(4)

	if _, err := pre.Prepare(nil); !errors.Is(err, ErrUndecodable) {
		t.Errorf("expected ErrUndecodable, got %v", err)
	}
}

func TestPrepareRejectsTruncatedImage(t *testing.T) {
	pre := NewPreprocessor(4)
	raw := encodePNG(t, 8, 8, color.White)

	if _, err := pre.Prepare(raw[:len(raw)/2]); !errors.Is(err, ErrUndecodable) {
		t.Errorf("expected ErrUndecodable for truncated payload, got %v", err)
	}
}

func TestPreprocessorDefaultsToModelInputSize(t *testing.T) {
	if got := NewPreprocessor(0).Size(); got != DefaultInputSize {
		t.Errorf("expected default size %d, got %d", DefaultInputSize, got)
	}
}
