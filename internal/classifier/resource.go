package classifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State tracks the lifecycle of the loaded model.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "UNLOADED"
	case StateLoading:
		return "LOADING"
	case StateReady:
		return "READY"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Engine is the opaque inference capability behind a Resource. Implementations
// must be safe for concurrent Infer calls once loaded.
type Engine interface {
	Infer(input []float32) ([]float32, error)
	Close() error
}

// EngineInfo carries artifact metadata surfaced by the readiness report.
type EngineInfo struct {
	Path      string
	SizeBytes int64
	InputSize int
}

// EngineLoader performs the expensive one-time load of a model engine.
// Loading a real model can take seconds and substantial memory; the cost is
// paid once per process, not per request.
type EngineLoader func(ctx context.Context) (Engine, EngineInfo, error)

// Readiness is the health signal consumed by the service boundary.
type Readiness struct {
	Loaded    bool   `json:"loaded"`
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
	Path      string `json:"path,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	InputSize int    `json:"input_size,omitempty"`
	Classes   int    `json:"classes,omitempty"`
}

// Resource owns the lifecycle of the loaded classification model. It is a
// process-wide singleton created by the app container and shared by all
// requests.
type Resource struct {
	loader EngineLoader
	logger *zap.Logger

	once sync.Once

	mu     sync.RWMutex
	state  State
	engine Engine
	info   EngineInfo
	err    error
}

func NewResource(loader EngineLoader, logger *zap.Logger) *Resource {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resource{
		loader: loader,
		logger: logger,
		state:  StateUnloaded,
	}
}

// EnsureReady loads the model exactly once. Concurrent callers during the
// load block until the single in-flight load finishes and then share its
// outcome. A failed load is terminal: every later call returns the same
// error until the process restarts.
func (r *Resource) EnsureReady(ctx context.Context) error {
	r.once.Do(func() {
		r.load(ctx)
	})

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != StateReady {
		return r.err
	}

	return nil
}

func (r *Resource) load(ctx context.Context) {
	r.mu.Lock()
	r.state = StateLoading
	r.mu.Unlock()

	start := time.Now()
	engine, info, err := r.loader(ctx)
	if err != nil {
		r.mu.Lock()
		r.state = StateFailed
		r.err = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		r.mu.Unlock()

		r.logger.Error("model load failed", zap.Error(err))
		return
	}

	r.mu.Lock()
	r.state = StateReady
	r.engine = engine
	r.info = info
	r.mu.Unlock()

	r.logger.Info("model loaded",
		zap.String("path", info.Path),
		zap.Int64("size_bytes", info.SizeBytes),
		zap.Int("input_size", info.InputSize),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// Infer runs the model on one normalized tensor and returns the probability
// vector, one value per catalog class. Safe to call concurrently once the
// resource is ready; the model is read-only during inference.
func (r *Resource) Infer(input []float32) ([]float32, error) {
	r.mu.RLock()
	state, engine, err := r.state, r.engine, r.err
	r.mu.RUnlock()

	if state != StateReady {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: model not loaded", ErrModelUnavailable)
	}

	probs, err := engine.Infer(input)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	if len(probs) != NumClasses() {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrBadOutputShape, len(probs), NumClasses())
	}

	return probs, nil
}

// Status reports the current readiness of the resource.
func (r *Resource) Status() Readiness {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep := Readiness{
		Loaded: r.state == StateReady,
		State:  r.state.String(),
	}

	if r.err != nil {
		rep.Error = r.err.Error()
	}

	if r.state == StateReady {
		rep.Path = r.info.Path
		rep.SizeBytes = r.info.SizeBytes
		rep.InputSize = r.info.InputSize
		rep.Classes = NumClasses()
	}

	return rep
}

// Close releases the underlying engine. The resource must not be used after.
func (r *Resource) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		if err := r.engine.Close(); err != nil {
			r.logger.Warn("failed to close model engine", zap.Error(err))
		}
		r.engine = nil
	}
}
