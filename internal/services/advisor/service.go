package advisor

import (
	"context"
	"time"

	"savewise/internal/metrics"
	"savewise/pkg/errors"
	"savewise/pkg/logger"
)

// NoDataReply is returned when no prediction has been stored yet
const NoDataReply = "I don't have any saved financial data yet. Please make a savings prediction first!"

// LLM produces a reply for a prompt
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service answers chat messages about the user's latest prediction
type Service struct {
	resolver *Resolver
	llm      LLM
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates an advisor. llm may be nil when no model is configured;
// chat requests with data then fail with ErrUnavailable.
func NewService(resolver *Resolver, llm LLM, log *logger.Logger) *Service {
	return &Service{
		resolver: resolver,
		llm:      llm,
		log:      log.Component("advisor"),
		now:      time.Now,
	}
}

// Chat answers message. Only an empty message is a validation error;
// whitespace is passed through as typed.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", errors.NewMissingFieldError("message")
	}

	rec, ok := s.resolver.Resolve(ctx)
	if !ok {
		metrics.ChatRequests.WithLabelValues("no_data").Inc()
		return NoDataReply, nil
	}

	if s.llm == nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return "", errors.Wrap(errors.ErrUnavailable, "advisor model is not configured")
	}

	start := time.Now()
	reply, err := s.llm.Generate(ctx, BuildPrompt(rec, message, s.now()))
	metrics.ChatLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		s.log.Errorw("Advisor reply failed", err)
		return "", err
	}

	metrics.ChatRequests.WithLabelValues("success").Inc()
	return reply, nil
}
