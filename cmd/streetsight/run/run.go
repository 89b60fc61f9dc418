package cmd

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/streetsight/streetsight/internal/app"
	"github.com/streetsight/streetsight/internal/config"
	"github.com/streetsight/streetsight/internal/server"
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the streetsight classification server",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", 8000, "Port to run the server on")
	flags.String("host", "0.0.0.0", "Host to run the server on")
	flags.String("environment", "dev", "Environment configuration")
	flags.String("public-dir", "", "Path where static dashboard files are served from")
	flags.String("models-dir", "", "Directory containing model artifacts")
	flags.String("model-file", "street_classifier.onnx", "Model artifact filename inside the models directory")
	flags.Int("image-size", 384, "Square input size the model expects")
	flags.Int("max-batch-size", 10, "Maximum number of images accepted per batch request")
	flags.Int("batch-workers", 4, "Concurrent workers used to process one batch")
	flags.Bool("warmup", false, "Load the model on startup instead of on first request")

	viper.BindPFlags(flags)

	bindEnvs()
}

func bindEnvs() {
	// Core settings (will use STREETSIGHT_ prefix)
	// Example: STREETSIGHT_PORT
	viper.BindEnv("port")
	viper.BindEnv("host")
	viper.BindEnv("environment")
	viper.BindEnv("public_dir")
	viper.BindEnv("models_dir")
	viper.BindEnv("model_file")
	viper.BindEnv("image_size")
	viper.BindEnv("max_batch_size")
	viper.BindEnv("batch_workers")
	viper.BindEnv("warmup")
}

func runApp(_ *cobra.Command, _ []string) error {
	a, err := app.NewApp(config.MustGetConfig(), app.WithClassifier())
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config()
	ctx := a.Context()

	srv, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	srv.SetupRoutes(a)

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("server started",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("model_path", cfg.ModelPath()),
		)
		errc <- srv.Start()
	}()

	if cfg.Warmup {
		go func() {
			if err := a.Model().EnsureReady(ctx); err != nil {
				a.Logger.Error("model warmup failed", zap.Error(err))
			}
		}()
	}

	signalc := make(chan os.Signal, 1)
	signal.Notify(signalc, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-signalc:
		a.Logger.Info("shutting down")
		return srv.Stop(ctx)
	}
}
