package ensemble

import (
	"fmt"
	"path/filepath"

	"savewise/internal/ml"
	"savewise/pkg/errors"
)

// Ensemble member names, also used as metric labels and model file stems
const (
	ModelSavings   = "savings"
	ModelAmount    = "amount"
	ModelMultiTask = "multi_task"
)

// Size is the number of members a complete ensemble has
const Size = 3

// Model is an opaque vector-in, tensors-out function.
// Predict returns one flattened slice per model output, in output order.
type Model interface {
	Predict(features []float32) ([][]float32, error)
	Close() error
}

// Registry holds the three loaded models. It is built once at startup and
// never modified.
type Registry struct {
	Savings   Model
	Amount    Model
	MultiTask Model
}

// NewRegistry validates that every member is present
func NewRegistry(savings, amount, multiTask Model) (*Registry, error) {
	r := &Registry{Savings: savings, Amount: amount, MultiTask: multiTask}
	for name, m := range r.members() {
		if m == nil {
			return nil, errors.Newf("ensemble: %s model is nil", name)
		}
	}
	return r, nil
}

// ModelPath is where the trained artifact of a member lives under dir
func ModelPath(dir, name string) string {
	return filepath.Join(dir, "trained_model", fmt.Sprintf("best_%s_model.onnx", name))
}

// LoadRegistry loads the three ONNX models from dir
func LoadRegistry(dir string, opts ml.ModelOptions) (*Registry, error) {
	var loaded []Model
	load := func(name string) (Model, error) {
		m, err := ml.LoadONNXModel(name, ModelPath(dir, name), opts)
		if err != nil {
			for _, prev := range loaded {
				_ = prev.Close()
			}
			return nil, errors.Wrapf(err, "load %s model", name)
		}
		loaded = append(loaded, m)
		return m, nil
	}

	savings, err := load(ModelSavings)
	if err != nil {
		return nil, err
	}
	amount, err := load(ModelAmount)
	if err != nil {
		return nil, err
	}
	multiTask, err := load(ModelMultiTask)
	if err != nil {
		return nil, err
	}

	return NewRegistry(savings, amount, multiTask)
}

// Len is the number of loaded ensemble members
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, m := range r.members() {
		if m != nil {
			n++
		}
	}
	return n
}

// Close releases every member
func (r *Registry) Close() error {
	var errs errors.MultiError
	for name, m := range r.members() {
		if m == nil {
			continue
		}
		if err := m.Close(); err != nil {
			errs.Add(errors.Wrapf(err, "close %s model", name))
		}
	}
	return errs.ToError()
}

func (r *Registry) members() map[string]Model {
	return map[string]Model{
		ModelSavings:   r.Savings,
		ModelAmount:    r.Amount,
		ModelMultiTask: r.MultiTask,
	}
}
