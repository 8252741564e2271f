package assessment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/o1-assessor/internal/ai"
	"github.com/spigell/o1-assessor/internal/criteria"
	"github.com/spigell/o1-assessor/internal/logger"
	"github.com/spigell/o1-assessor/internal/utils"
)

const defaultMaxLogLength = 2000

// Evaluator rates one criterion per call by composing prompt, model and parser.
// It never returns an error: every failure becomes an ErrorResult outcome.
type Evaluator struct {
	generator    ai.Generator
	logger       *zap.Logger
	maxLogLength int
	awards       string
}

// NewEvaluator builds an Evaluator around gen. A non-positive maxLogLength
// falls back to the default preview size.
func NewEvaluator(gen ai.Generator, log *zap.Logger, maxLogLength int) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Evaluator{
		generator:    gen,
		logger:       log,
		maxLogLength: maxLogLength,
		awards:       FormatAwardExamples(SuperAwardExamples),
	}
}

// EvaluateCriterion rates documentText against a single criterion.
func (e *Evaluator) EvaluateCriterion(ctx context.Context, documentText string, c criteria.Criterion, generalInstructions []string, comparableEvidence string) Outcome {
	prompt := BuildCriterionPrompt(c.FullText, documentText, joinInstructions(generalInstructions), comparableEvidence)
	return e.evaluate(ctx, c.Name, prompt)
}

// EvaluateSuperCriterion checks documentText for a major internationally
// recognized award.
func (e *Evaluator) EvaluateSuperCriterion(ctx context.Context, documentText string, generalInstructions []string) Outcome {
	prompt := BuildSuperCriterionPrompt(documentText, joinInstructions(generalInstructions), e.awards)
	return e.evaluate(ctx, SuperCriteriaKey, prompt)
}

func (e *Evaluator) evaluate(ctx context.Context, name, prompt string) (outcome Outcome) {
	log := e.logger.With(zap.String(logger.FieldCriterion, name))

	defer func() {
		if r := recover(); r != nil {
			log.Error("criterion evaluation panicked", zap.Any("panic", r))
			outcome = Failed(fmt.Sprintf("evaluation panicked: %v", r))
		}
	}()

	if e.generator == nil {
		return Failed(ai.Unavailable(errors.New("no generator configured")).Error())
	}

	log.Debug("sending criterion prompt",
		zap.Int("prompt_length", len(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLength)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		log.Warn("model call failed", zap.Error(err))
		return Failed(err.Error())
	}

	log.Debug("received model response",
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLength)),
	)

	result, err := ParseResponse(raw)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			log.Warn("model response rejected", zap.String("reason", parseErr.Reason))
			return Outcome{Failure: &ErrorResult{Error: parseErr.Error(), RawResponse: parseErr.Raw}}
		}
		return Failed(err.Error())
	}

	log.Debug("criterion rated", zap.Int("rating", result.Rating))
	return Succeeded(result)
}
