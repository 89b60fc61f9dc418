package classifier

import (
	"context"
	"fmt"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/streetsight/streetsight/internal/utils/hashutil"
)

const (
	DefaultMaxBatch     = 10
	DefaultBatchWorkers = 4
)

// Coordinator orchestrates the classification pipeline: validate, preprocess,
// infer, interpret. Every failure comes back as Result data; the public
// operations never panic past this boundary.
type Coordinator struct {
	model  *Resource
	pre    *Preprocessor
	logger *zap.Logger

	maxBatch int
	workers  int
}

type CoordinatorOption func(*Coordinator)

// WithMaxBatch sets the maximum number of images accepted per batch.
func WithMaxBatch(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxBatch = n
		}
	}
}

// WithBatchWorkers bounds the concurrency used inside one batch.
func WithBatchWorkers(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

func NewCoordinator(model *Resource, pre *Preprocessor, logger *zap.Logger, opts ...CoordinatorOption) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Coordinator{
		model:    model,
		pre:      pre,
		logger:   logger,
		maxBatch: DefaultMaxBatch,
		workers:  DefaultBatchWorkers,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MaxBatch returns the configured batch size limit.
func (c *Coordinator) MaxBatch() int {
	return c.maxBatch
}

// Model exposes the underlying resource for readiness reporting and warmup.
func (c *Coordinator) Model() *Resource {
	return c.model
}

// ClassifyOne runs the full pipeline for a single image. The first call may
// trigger the one-time model load.
func (c *Coordinator) ClassifyOne(ctx context.Context, raw []byte) Result {
	requestID := uuid.NewString()

	if err := c.model.EnsureReady(ctx); err != nil {
		return failure(err)
	}

	tensor, err := c.pre.Prepare(raw)
	if err != nil {
		c.logger.Debug("preprocess failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return failure(err)
	}

	probs, err := c.model.Infer(tensor)
	if err != nil {
		c.logger.Error("inference failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return failure(err)
	}

	result := Interpret(probs)
	c.logger.Debug("image classified",
		zap.String("request_id", requestID),
		zap.String("content_hash", hashutil.Blake3Hash(raw)),
		zap.String("class", result.Class),
		zap.Float64("confidence", result.Confidence),
	)

	return result
}

// ClassifyBatch classifies up to MaxBatch images. Oversized batches are
// rejected before any inference runs. Inside an accepted batch each item
// succeeds or fails on its own; results stay index-aligned with the input
// so clients can correlate them with submitted files.
func (c *Coordinator) ClassifyBatch(ctx context.Context, items [][]byte) ([]Result, error) {
	if len(items) > c.maxBatch {
		return nil, fmt.Errorf("%w: got %d items, maximum is %d", ErrBatchTooLarge, len(items), c.maxBatch)
	}

	results := make([]Result, len(items))

	wp := workerpool.New(c.workers)
	for i := range items {
		i := i
		wp.Submit(func() {
			results[i] = c.ClassifyOne(ctx, items[i])
		})
	}
	wp.StopWait()

	return results, nil
}
