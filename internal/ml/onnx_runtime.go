package ml

import (
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"savewise/pkg/errors"
)

// runtimeEnv guards the process-wide ONNX Runtime initialization
var runtimeEnv struct {
	once sync.Once
	err  error
}

// InitRuntime loads the ONNX Runtime shared library once per process.
// An empty libPath keeps the library's default lookup.
func InitRuntime(libPath string) error {
	runtimeEnv.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		runtimeEnv.err = ort.InitializeEnvironment()
	})
	return runtimeEnv.err
}

// ShutdownRuntime releases the ONNX Runtime environment
func ShutdownRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// ModelOptions configures how a model file is loaded
type ModelOptions struct {
	RuntimeLibPath string
	IntraOpThreads int
	// InputWidth is the expected feature count; 0 skips the check
	InputWidth int
}

// ONNXModel wraps an ONNX Runtime session taking one [1, n] float32 input
// and returning every declared output in declaration order.
type ONNXModel struct {
	name        string
	session     *ort.DynamicAdvancedSession
	inputName   string
	outputNames []string
	mu          sync.RWMutex
}

// LoadONNXModel loads an ONNX model from file
func LoadONNXModel(name, modelPath string, opts ModelOptions) (*ONNXModel, error) {
	if err := InitRuntime(opts.RuntimeLibPath); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read model info %s", modelPath)
	}
	if len(inputs) != 1 {
		return nil, errors.Newf("model %s: expected exactly one input, got %d", name, len(inputs))
	}
	if len(outputs) == 0 {
		return nil, errors.Newf("model %s: no outputs declared", name)
	}
	if opts.InputWidth > 0 {
		dims := inputs[0].Dimensions
		if n := len(dims); n > 0 && dims[n-1] > 0 && dims[n-1] != int64(opts.InputWidth) {
			return nil, errors.Newf("model %s: input width %d, feature spec has %d", name, dims[n-1], opts.InputWidth)
		}
	}

	outputNames := make([]string, len(outputs))
	for i, out := range outputs {
		outputNames[i] = out.Name
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	if opts.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, errors.Wrap(err, "failed to set intra-op threads")
		}
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{inputs[0].Name}, outputNames, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load ONNX model %s", modelPath)
	}

	return &ONNXModel{
		name:        name,
		session:     session,
		inputName:   inputs[0].Name,
		outputNames: outputNames,
	}, nil
}

// Name is the ensemble role of the model
func (m *ONNXModel) Name() string {
	return m.name
}

// Predict runs one row through the model. The result holds one flattened
// slice per declared output.
func (m *ONNXModel) Predict(features []float32) ([][]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, errors.Wrap(errors.ErrClosed, "model session is nil")
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, int64(len(features))), features)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	// nil outputs are allocated by the runtime; we own them afterwards
	outputs := make([]ort.Value, len(m.outputNames))
	if err := m.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	result := make([][]float32, len(outputs))
	for i, out := range outputs {
		data, err := tensorData(out)
		if err != nil {
			return nil, errors.Wrapf(err, "output %s", m.outputNames[i])
		}
		result[i] = data
	}
	return result, nil
}

// tensorData copies an output tensor out before it is destroyed
func tensorData(v ort.Value) ([]float32, error) {
	switch t := v.(type) {
	case *ort.Tensor[float32]:
		src := t.GetData()
		out := make([]float32, len(src))
		copy(out, src)
		return out, nil
	case *ort.Tensor[float64]:
		src := t.GetData()
		out := make([]float32, len(src))
		for i, x := range src {
			out[i] = float32(x)
		}
		return out, nil
	case nil:
		return nil, errors.New("runtime returned no tensor")
	default:
		return nil, errors.Newf("unsupported output type %T", v)
	}
}

// Close releases the session. Safe to call more than once.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}
