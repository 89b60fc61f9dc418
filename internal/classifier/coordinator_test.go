package classifier

import (
	"context"
	"errors"
	"image/color"
	"sync/atomic"
	"testing"
)

// colorKeyedEngine predicts potholes for predominantly red tensors and
// road_normal otherwise, so tests can tell results apart by input image.
func colorKeyedEngine() *fakeEngine {
	return &fakeEngine{out: func(input []float32) []float32 {
		if len(input) > 0 && input[0] > 0.5 {
			return probsFor(2) // potholes
		}
		return probsFor(3) // road_normal
	}}
}

func newTestCoordinator(t *testing.T, engine Engine, loadErr error, loads *atomic.Int32, opts ...CoordinatorOption) *Coordinator {
	t.Helper()

	r := NewResource(fakeLoader(engine, loadErr, loads, 0), nil)
	return NewCoordinator(r, NewPreprocessor(4), nil, opts...)
}

func TestClassifyOne(t *testing.T) {
	engine := colorKeyedEngine()
	c := newTestCoordinator(t, engine, nil, nil)

	result := c.ClassifyOne(context.Background(), encodePNG(t, 8, 8, color.RGBA{R: 255, A: 255}))

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.Class != "potholes" {
		t.Errorf("expected potholes, got %q", result.Class)
	}
	if result.Confidence != 90.00 {
		t.Errorf("expected confidence 90.00, got %v", result.Confidence)
	}
	if result.Priority != PriorityHigh {
		t.Errorf("expected priority HIGH, got %q", result.Priority)
	}
	if engine.inferCount() != 1 {
		t.Errorf("expected 1 inference, got %d", engine.inferCount())
	}
}

func TestClassifyOneUndecodableInputAsData(t *testing.T) {
	c := newTestCoordinator(t, colorKeyedEngine(), nil, nil)

	result := c.ClassifyOne(context.Background(), []byte("corrupt bytes"))

	if result.Success {
		t.Fatal("expected failure for undecodable input")
	}
	if !errors.Is(result.Cause(), ErrUndecodable) {
		t.Errorf("expected ErrUndecodable cause, got %v", result.Cause())
	}
	if result.Error == "" {
		t.Error("expected an error message")
	}
	if result.Class != "" {
		t.Errorf("failed result must not carry a class, got %q", result.Class)
	}
}

func TestClassifyOneModelUnavailableAsData(t *testing.T) {
	c := newTestCoordinator(t, nil, errors.New("no artifact"), nil)

	result := c.ClassifyOne(context.Background(), encodePNG(t, 8, 8, color.White))

	if result.Success {
		t.Fatal("expected failure when the model cannot load")
	}
	if !errors.Is(result.Cause(), ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable cause, got %v", result.Cause())
	}
}

func TestClassifyBatchRejectsOversizedBatchBeforeInference(t *testing.T) {
	var loads atomic.Int32
	engine := colorKeyedEngine()
	c := newTestCoordinator(t, engine, nil, &loads, WithMaxBatch(10))

	items := make([][]byte, 11)
	for i := range items {
		items[i] = encodePNG(t, 4, 4, color.White)
	}

	results, err := c.ClassifyBatch(context.Background(), items)

	if !errors.Is(err, ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
	if results != nil {
		t.Errorf("expected no results for a rejected batch, got %d", len(results))
	}
	if engine.inferCount() != 0 {
		t.Errorf("expected zero inference calls, got %d", engine.inferCount())
	}
	if loads.Load() != 0 {
		t.Errorf("rejected batch must not trigger a model load, got %d", loads.Load())
	}
}

func TestClassifyBatchIsolatesPerItemFailures(t *testing.T) {
	c := newTestCoordinator(t, colorKeyedEngine(), nil, nil)

	items := [][]byte{
		encodePNG(t, 8, 8, color.RGBA{R: 255, A: 255}),
		[]byte("corrupt"),
		encodePNG(t, 8, 8, color.RGBA{B: 255, A: 255}),
	}

	results, err := c.ClassifyBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("ClassifyBatch failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if !results[0].Success || results[0].Class != "potholes" {
		t.Errorf("index 0: expected potholes success, got %+v", results[0])
	}
	if results[1].Success {
		t.Error("index 1: expected decode failure")
	}
	if !errors.Is(results[1].Cause(), ErrUndecodable) {
		t.Errorf("index 1: expected ErrUndecodable, got %v", results[1].Cause())
	}
	if !results[2].Success || results[2].Class != "road_normal" {
		t.Errorf("index 2: expected road_normal success, got %+v", results[2])
	}
}

func TestClassifyBatchPreservesInputOrder(t *testing.T) {
	c := newTestCoordinator(t, colorKeyedEngine(), nil, nil, WithBatchWorkers(3))

	red := encodePNG(t, 8, 8, color.RGBA{R: 255, A: 255})
	blue := encodePNG(t, 8, 8, color.RGBA{B: 255, A: 255})

	var items [][]byte
	for i := 0; i < 8; i++ {
		if i%2 == 0 {
			items = append(items, red)
		} else {
			items = append(items, blue)
		}
	}

	results, err := c.ClassifyBatch(context.Background(), items)
	if err != nil {
		t.Fatalf("ClassifyBatch failed: %v", err)
	}
	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}

	for i, result := range results {
		want := "potholes"
		if i%2 == 1 {
			want = "road_normal"
		}
		if result.Class != want {
			t.Errorf("index %d: expected %s, got %q", i, want, result.Class)
		}
	}
}

func TestClassifyBatchEmpty(t *testing.T) {
	c := newTestCoordinator(t, colorKeyedEngine(), nil, nil)

	results, err := c.ClassifyBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("ClassifyBatch failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestCoordinatorDefaults(t *testing.T) {
	c := newTestCoordinator(t, colorKeyedEngine(), nil, nil)

	if c.MaxBatch() != DefaultMaxBatch {
		t.Errorf("expected default max batch %d, got %d", DefaultMaxBatch, c.MaxBatch())
	}
}
