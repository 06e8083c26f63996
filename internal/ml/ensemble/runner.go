package ensemble

import (
	"math"
	"time"

	"savewise/internal/domain/features"
	"savewise/internal/domain/prediction"
	"savewise/internal/metrics"
	"savewise/pkg/errors"
)

// Threshold turns a probability into a yes/no answer (strictly greater)
const Threshold = 0.5

// Runner runs one feature vector through every ensemble member and
// aggregates the outputs. It holds no mutable state.
type Runner struct {
	registry *Registry
	width    int
}

// NewRunner creates a runner expecting vectors of the given width
func NewRunner(registry *Registry, width int) *Runner {
	return &Runner{registry: registry, width: width}
}

// Run calls the three models in turn. Any member failure aborts the run
// with an *errors.InferenceError; there are no retries.
func (r *Runner) Run(vec features.Vector) (prediction.Result, error) {
	if r.registry == nil {
		return prediction.Result{}, errors.NewInferenceError("ensemble", errors.New("model registry not loaded"))
	}
	if len(vec) != r.width {
		return prediction.Result{}, errors.NewInferenceError("ensemble",
			errors.Newf("feature vector has %d values, models expect %d", len(vec), r.width))
	}

	input := vec.Float32()

	savings, err := r.scalars(ModelSavings, r.registry.Savings, input, 1)
	if err != nil {
		return prediction.Result{}, err
	}
	amount, err := r.scalars(ModelAmount, r.registry.Amount, input, 1)
	if err != nil {
		return prediction.Result{}, err
	}
	// multi-task heads: savings probability, amount, risk probability
	multi, err := r.scalars(ModelMultiTask, r.registry.MultiTask, input, 3)
	if err != nil {
		return prediction.Result{}, err
	}

	return prediction.Result{
		Savings: prediction.SavingsOutput{
			CanAchieveSavings: savings[0] > Threshold,
			Confidence:        savings[0],
		},
		Amount: prediction.AmountOutput{
			RecommendedSavings: amount[0],
		},
		MultiTask: prediction.MultiTaskOutput{
			CanAchieveSavings:        multi[0] > Threshold,
			SavingsConfidence:        multi[0],
			RecommendedSavingsAmount: multi[1],
			FinancialRisk:            multi[2] > Threshold,
			RiskScore:                multi[2],
		},
	}, nil
}

// scalars calls one model and takes the first element of each of its first
// n outputs.
func (r *Runner) scalars(name string, m Model, input []float32, n int) ([]float64, error) {
	if m == nil {
		return nil, errors.NewInferenceError(name, errors.New("model not loaded"))
	}

	start := time.Now()
	outputs, err := m.Predict(input)
	metrics.RecordInference(name, time.Since(start), err)
	if err != nil {
		return nil, errors.NewInferenceError(name, err)
	}

	if len(outputs) < n {
		return nil, errors.NewInferenceError(name, errors.Newf("expected %d outputs, got %d", n, len(outputs)))
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		if len(outputs[i]) == 0 {
			return nil, errors.NewInferenceError(name, errors.Newf("output %d is empty", i))
		}
		v := float64(outputs[i][0])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.NewInferenceError(name, errors.Newf("output %d is not finite", i))
		}
		values[i] = v
	}
	return values, nil
}
