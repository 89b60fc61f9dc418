package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/streetsight/streetsight/internal/classifier"
	"github.com/streetsight/streetsight/internal/config"
	"github.com/streetsight/streetsight/pkg/logger"
)

// App owns the process-wide resources: the config, the logger and the
// single shared model behind the classification coordinator.
type App struct {
	ctx        context.Context
	cancelFunc context.CancelFunc
	config     *config.Config

	Logger *zap.Logger

	model      *classifier.Resource
	classifier *classifier.Coordinator
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

// WithClassifier wires the ONNX-backed classification pipeline from config.
func WithClassifier() OptionFunc {
	return WithClassifierEngine(nil)
}

// WithClassifierEngine is WithClassifier with an explicit engine loader;
// tests use it to substitute fake engines.
func WithClassifierEngine(loader classifier.EngineLoader) OptionFunc {
	return func(app *App) error {
		cfg := app.config
		if loader == nil {
			loader = classifier.NewONNXLoader(cfg.ModelPath(), cfg.ImageSize)
		}

		app.model = classifier.NewResource(loader, app.Logger.Named("model"))
		app.classifier = classifier.NewCoordinator(
			app.model,
			classifier.NewPreprocessor(cfg.ImageSize),
			app.Logger.Named("classifier"),
			classifier.WithMaxBatch(cfg.MaxBatchSize),
			classifier.WithBatchWorkers(cfg.BatchWorkers),
		)

		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	l, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		Logger:     l,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			// Continue even if some options fail
			app.Logger.Error("failed to apply option", zap.Error(err))
		}
	}

	return app, nil
}

func (app *App) Close() {
	app.cancelFunc()

	if app.model != nil {
		app.model.Close()
	}

	app.Logger.Sync()
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) Model() *classifier.Resource {
	return app.model
}

func (app *App) Classifier() *classifier.Coordinator {
	return app.classifier
}
