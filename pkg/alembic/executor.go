package alembic

import (
	"context"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/planner"
)

type (
	// Engine is the slice of the migration engine the executor needs.
	// Satisfied by *Runner; faked in tests.
	Engine interface {
		Downgrade(ctx context.Context, rev string) error
		UpgradeHead(ctx context.Context) error
	}

	// Executor realizes a migration plan against the engine. A downgrade
	// always runs before an upgrade: the database must unwind past the
	// divergence point before the target branch's migrations replay.
	Executor struct {
		engine Engine
	}

	// Result reports what the executor did. Execution failures end up
	// here rather than as panics or logs; the caller decides whether a
	// failed migration blocks the branch switch.
	Result struct {
		// Status is the overall outcome.
		Status Status

		// DowngradedTo is the revision the database was unwound to, when
		// a downgrade ran and succeeded.
		DowngradedTo string

		// Upgraded reports whether the upgrade step ran and succeeded.
		Upgraded bool

		// Error carries the failure, including captured engine output.
		Error error
	}

	// Status is the overall outcome of applying a plan.
	Status string
)

const (
	// StatusSuccess means every required step completed.
	StatusSuccess Status = "success"

	// StatusFailed means a step failed; later steps were not attempted.
	StatusFailed Status = "failed"

	// StatusSkipped means the plan required no action.
	StatusSkipped Status = "skipped"
)

// NewExecutor creates an Executor driving the given engine.
func NewExecutor(engine Engine) *Executor {
	return &Executor{engine: engine}
}

// Apply carries out the plan's downgrade and/or upgrade, in that fixed
// order. A downgrade failure aborts the upgrade: upgrading from an
// unknown intermediate state is unsafe. The result is always non-nil.
func (e *Executor) Apply(ctx context.Context, plan *planner.Plan) *Result {
	if plan == nil || (!plan.NeedsDowngrade && !plan.NeedsUpgrade) {
		return &Result{Status: StatusSkipped}
	}

	res := &Result{Status: StatusSuccess}

	if plan.NeedsDowngrade {
		if err := e.engine.Downgrade(ctx, plan.CommonRevision); err != nil {
			res.Status = StatusFailed
			res.Error = errors.Wrapf(err, "downgrade to %s failed; upgrade skipped", plan.CommonRevision)
			return res
		}
		res.DowngradedTo = plan.CommonRevision
	}

	if plan.NeedsUpgrade {
		if err := e.engine.UpgradeHead(ctx); err != nil {
			res.Status = StatusFailed
			res.Error = errors.Wrap(err, "upgrade to head failed")
			return res
		}
		res.Upgraded = true
	}

	return res
}
