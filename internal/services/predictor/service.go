package predictor

import (
	"context"

	"savewise/internal/domain/features"
	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
	"savewise/internal/metrics"
	"savewise/internal/services/persistence"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// Encoder turns a decoded JSON profile into a feature vector
type Encoder interface {
	EncodeRaw(raw map[string]interface{}) (profile.Profile, features.Vector, error)
	Len() int
}

// Runner evaluates the model ensemble
type Runner interface {
	Run(vec features.Vector) (prediction.Result, error)
}

// Recorder persists a finished prediction
type Recorder interface {
	Record(ctx context.Context, p profile.Profile, r prediction.Result) persistence.Outcome
}

// Service validates a profile, runs the ensemble and records the result
type Service struct {
	encoder  Encoder
	runner   Runner
	recorder Recorder
	log      *logger.Logger
}

// NewService creates a new prediction service
func NewService(encoder Encoder, runner Runner, recorder Recorder, log *logger.Logger) *Service {
	return &Service{
		encoder:  encoder,
		runner:   runner,
		recorder: recorder,
		log:      log.Component("predictor"),
	}
}

// Predict returns the ensemble answer for raw. Validation problems come back
// as *errors.ValidationError and model problems as *errors.InferenceError.
// Persistence never fails the call.
func (s *Service) Predict(ctx context.Context, raw map[string]interface{}) (prediction.Result, error) {
	p, vec, err := s.encoder.EncodeRaw(raw)
	if err != nil {
		metrics.Predictions.WithLabelValues("invalid").Inc()
		return prediction.Result{}, err
	}

	result, err := s.runner.Run(vec)
	if err != nil {
		metrics.Predictions.WithLabelValues("error").Inc()
		s.log.Errorw("Inference failed", err)
		return prediction.Result{}, errors.Wrap(err, "run ensemble")
	}

	out := s.recorder.Record(ctx, p, result)
	s.log.Debugw("Prediction recorded",
		"backend", out.Backend,
		"status", out.Status,
		"can_achieve", result.Savings.CanAchieveSavings,
		"recommended", result.Amount.RecommendedSavings,
	)

	metrics.Predictions.WithLabelValues("success").Inc()
	return result, nil
}

// FeatureCount is the encoded vector width
func (s *Service) FeatureCount() int {
	return s.encoder.Len()
}
