package classifier

import (
	"context"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

type onnxEngine struct {
	session   *ort.DynamicAdvancedSession
	inputSize int
}

// NewONNXLoader returns an EngineLoader backed by ONNX Runtime. The artifact
// at modelPath must accept float32 input of shape 1×size×size×3 (NHWC, the
// layout produced by exporting the Keras model) and emit one probability per
// catalog class.
func NewONNXLoader(modelPath string, inputSize int) EngineLoader {
	return func(ctx context.Context) (Engine, EngineInfo, error) {
		stat, err := os.Stat(modelPath)
		if err != nil {
			return nil, EngineInfo{}, fmt.Errorf("model artifact %s: %w", modelPath, err)
		}

		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				return nil, EngineInfo{}, fmt.Errorf("failed to initialize ONNX environment: %w", err)
			}
		}

		session, err := ort.NewDynamicAdvancedSession(modelPath,
			[]string{"input"}, []string{"output"}, nil)
		if err != nil {
			return nil, EngineInfo{}, fmt.Errorf("failed to create ONNX session: %w", err)
		}

		info := EngineInfo{
			Path:      modelPath,
			SizeBytes: stat.Size(),
			InputSize: inputSize,
		}

		return &onnxEngine{session: session, inputSize: inputSize}, info, nil
	}
}

// Infer allocates per-call tensors so concurrent requests never share
// buffers; the session itself is safe for concurrent Run calls.
func (e *onnxEngine) Infer(input []float32) ([]float32, error) {
	inputShape := ort.NewShape(1, int64(e.inputSize), int64(e.inputSize), 3)
	inputTensor, err := ort.NewTensor(inputShape, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(NumClasses())))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	err = e.session.Run(
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
	)
	if err != nil {
		return nil, err
	}

	probs := make([]float32, NumClasses())
	copy(probs, outputTensor.GetData())

	return probs, nil
}

func (e *onnxEngine) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}

	return nil
}
