package usecases

import (
	"context"
	"errors"
	"fmt"

	"mindcare/internal/entities"
	"mindcare/internal/logging"
	"mindcare/internal/metrics"
)

// Completer is the part of CompletionChain the service depends on.
type Completer interface {
	Complete(ctx context.Context, message string) CompletionResult
}

// ChatService runs validate, crisis scan, completion chain and assembly for one request.
type ChatService struct {
	validator *RequestValidator
	detector  *CrisisDetector
	chain     Completer
	assembler *ResponseAssembler
	metrics   *metrics.Collector
}

func NewChatService(validator *RequestValidator, detector *CrisisDetector, chain Completer, assembler *ResponseAssembler, m *metrics.Collector) *ChatService {
	return &ChatService{
		validator: validator,
		detector:  detector,
		chain:     chain,
		assembler: assembler,
		metrics:   m,
	}
}

// Respond returns a *ValidationError when the request is rejected. Every
// other path, including a panic below this call, yields a response.
func (s *ChatService) Respond(ctx context.Context, auth entities.AuthContext, rawBody []byte) (resp entities.ChatResponse, err error) {
	logger := logging.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Error("chat pipeline fault")
			s.metrics.RecordChat(metrics.OutcomeFault, string(entities.ServiceFallback))
			resp, err = s.assembler.Fault(), nil
		}
	}()

	msg, err := s.validator.Validate(auth, rawBody)
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if errors.Is(err, ErrUnauthenticated) {
			outcome = metrics.OutcomeUnauthenticated
		}
		s.metrics.RecordChat(outcome, "")
		logger.WithField("outcome", outcome).Infof("chat request rejected: %v", err)
		return entities.ChatResponse{}, err
	}

	crisis := s.detector.Detect(msg.Text)
	if crisis {
		s.metrics.RecordCrisis()
		logger.WithField("user_id", auth.UserID).Warn("crisis language detected in chat message")
	}

	result := s.chain.Complete(ctx, msg.Text)
	resp = s.assembler.Assemble(result, crisis)

	s.metrics.RecordChat(metrics.OutcomeServed, string(resp.Service))
	logger.WithField("service", resp.Service).WithField("crisis", crisis).Info("chat request served")
	return resp, nil
}
