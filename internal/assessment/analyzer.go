package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/o1-assessor/internal/criteria"
	"github.com/spigell/o1-assessor/internal/logger"
)

// ErrDeadlineExceeded is returned when the caller's context ends before every
// criterion has reported.
var ErrDeadlineExceeded = errors.New("assessment deadline exceeded")

// CriteriaEvaluator rates a document against one criterion at a time.
// Implementations report failures as outcomes, not errors.
type CriteriaEvaluator interface {
	EvaluateCriterion(ctx context.Context, documentText string, c criteria.Criterion, generalInstructions []string, comparableEvidence string) Outcome
	EvaluateSuperCriterion(ctx context.Context, documentText string, generalInstructions []string) Outcome
}

// Analyzer fans criteria out concurrently and folds the outcomes into a Run.
type Analyzer struct {
	evaluator CriteriaEvaluator
	policy    Policy
	logger    *zap.Logger
}

// NewAnalyzer wires an Analyzer. A nil logger disables logging.
func NewAnalyzer(evaluator CriteriaEvaluator, policy Policy, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{evaluator: evaluator, policy: policy, logger: log}
}

// Analyze evaluates documentText against every criterion in info. Individual
// criterion failures are recorded in the run; only a done ctx aborts it.
func (a *Analyzer) Analyze(ctx context.Context, documentText string, info *criteria.VisaInfo) (*Run, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: no catalog supplied", criteria.ErrInvalidCatalog)
	}

	runID := uuid.NewString()
	log := a.logger.With(zap.String(logger.FieldRunID, runID))

	if len(info.Criteria) < a.policy.HighCount {
		log.Warn("catalog has fewer criteria than the high tier requires",
			zap.Int("criteria", len(info.Criteria)),
			zap.Int("high_count", a.policy.HighCount),
		)
	}

	withSuper := info.HasSuperCriteria()
	outcomes := make([]Outcome, len(info.Criteria))
	var super Outcome

	log.Info("assessment started",
		zap.Int("criteria", len(info.Criteria)),
		zap.Bool("super_criteria", withSuper),
	)
	started := time.Now()

	// Tasks never return errors so one failing criterion cannot cancel the rest.
	var g errgroup.Group
	for i, c := range info.Criteria {
		g.Go(func() error {
			outcomes[i] = guard(a.logger.With(logger.CriterionFields(runID, c.Name)...), func() Outcome {
				return a.evaluator.EvaluateCriterion(ctx, documentText, c, info.GeneralInstructions, info.ComparableEvidence)
			})
			return nil
		})
	}
	if withSuper {
		g.Go(func() error {
			super = guard(a.logger.With(logger.CriterionFields(runID, SuperCriteriaKey)...), func() Outcome {
				return a.evaluator.EvaluateSuperCriterion(ctx, documentText, info.GeneralInstructions)
			})
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("assessment aborted", zap.Error(ctx.Err()), zap.Duration("elapsed", time.Since(started)))
		return nil, fmt.Errorf("%w: %w", ErrDeadlineExceeded, ctx.Err())
	}

	if err := ctx.Err(); err != nil {
		log.Warn("assessment aborted", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return nil, fmt.Errorf("%w: %w", ErrDeadlineExceeded, err)
	}

	run := &Run{CriteriaResults: make(map[string]Outcome, len(outcomes)+1)}
	failed := 0
	for i, c := range info.Criteria {
		if outcomes[i].Failure != nil {
			failed++
		}
		run.CriteriaResults[c.Name] = outcomes[i]
	}

	positive := a.policy.PositiveCount(outcomes)
	shortCircuit := withSuper && a.policy.ShortCircuits(super)

	if shortCircuit {
		run.CriteriaResults[SuperCriteriaKey] = super
		run.EligibilityRating = EligibilityHigh
	} else {
		run.EligibilityRating = a.policy.Score(positive)
	}

	log.Info("assessment finished",
		zap.String("eligibility_rating", string(run.EligibilityRating)),
		zap.Int("positive_count", positive),
		zap.Int("failed", failed),
		zap.Bool("short_circuit", shortCircuit),
		zap.Duration("elapsed", time.Since(started)),
	)

	return run, nil
}

// guard converts a panic or an empty outcome into a failure.
func guard(log *zap.Logger, evaluate func() Outcome) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("criterion task panicked", zap.Any("panic", r))
			outcome = Failed(fmt.Sprintf("evaluation panicked: %v", r))
		}
	}()

	outcome = evaluate()
	if outcome.Result == nil && outcome.Failure == nil {
		return Failed("evaluation returned no result")
	}
	if outcome.Result != nil && outcome.Failure != nil {
		outcome.Failure = nil
	}
	return outcome
}
