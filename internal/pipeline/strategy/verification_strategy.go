package strategy

import (
	"context"

	"golang-market-signal/internal/entity"
	"golang-market-signal/internal/pipeline/service"
)

// VerificationStrategy runs the verification sweep as a job.
type VerificationStrategy struct {
	engine service.VerificationEngine
}

// NewVerificationStrategy creates a new instance of VerificationStrategy.
func NewVerificationStrategy(engine service.VerificationEngine) *VerificationStrategy {
	return &VerificationStrategy{engine: engine}
}

// GetType returns the job type this strategy handles.
func (s *VerificationStrategy) GetType() entity.JobType {
	return entity.JobTypeVerification
}

// Execute runs one verification sweep.
func (s *VerificationStrategy) Execute(ctx context.Context) (service.RunOutput, error) {
	summary, err := s.engine.Run(ctx)
	if summary == nil {
		return service.RunOutput{}, err
	}
	return service.RunOutput{Output: marshalOutput(summary)}, err
}
