package planner

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/revision"
)

type (
	// RevisionSource loads the revision records visible in a branch's
	// revisions directory. Satisfied by *revision.Store.
	RevisionSource interface {
		ForBranch(ctx context.Context, branch, dir string) ([]*revision.Record, error)
	}

	// BranchLister enumerates all known local branches. Used only by the
	// diagnostic search on the unrecoverable-ghost path.
	BranchLister interface {
		Branches(ctx context.Context) ([]string, error)
	}

	// Planner computes migration plans for branch switches. Construct one
	// per invocation; it re-reads branch state on every call and caches
	// nothing.
	Planner struct {
		source   RevisionSource
		branches BranchLister
		dir      string
	}

	// Plan describes the action needed to move the database from the
	// source branch's state to the target branch's head.
	Plan struct {
		// CurrentDBRevision is the revision the database reported as
		// applied when the plan was computed.
		CurrentDBRevision string

		// CommonRevision is the latest revision shared by both chains,
		// the safe rollback point. Empty when no downgrade anchor exists
		// (ghost-in-target, or disjoint histories).
		CommonRevision string

		// TargetHeadRevision is the target branch's head, or empty when
		// the target branch has no revisions.
		TargetHeadRevision string

		// NeedsDowngrade is set when the database sits strictly after the
		// common revision on the source chain and must unwind first.
		NeedsDowngrade bool

		// NeedsUpgrade is set when the target head differs from the
		// database's current revision.
		NeedsUpgrade bool
	}

	// PlanError reports that no migration path could be computed. It is
	// a structured result rather than a failure mode callers should
	// retry; resolving it requires a human.
	PlanError struct {
		// Message is a human-readable description of why planning failed.
		Message string

		// MissingRevision is the database's applied revision id when it
		// was found in neither branch's chain.
		MissingRevision string

		// FoundInBranches lists other branches whose revisions directory
		// defines the missing revision. Empty when no branch does.
		FoundInBranches []string
	}
)

func (e *PlanError) Error() string { return e.Message }

// New creates a Planner reading revisions from dir via source, with
// branches available for the missing-revision diagnostic search.
func New(source RevisionSource, branches BranchLister, dir string) *Planner {
	return &Planner{
		source:   source,
		branches: branches,
		dir:      dir,
	}
}

// Plan decides the migration action for switching from sourceBranch to
// targetBranch while the database reports currentRev as applied.
//
// A nil Plan with a nil error means neither branch carries any revisions
// and there is nothing to do. A *PlanError is returned when the current
// revision is a ghost that appears in neither branch.
func (p *Planner) Plan(ctx context.Context, currentRev, sourceBranch, targetBranch string) (*Plan, error) {
	sourceRecs, err := p.source.ForBranch(ctx, sourceBranch, p.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read revisions on %s", sourceBranch)
	}

	targetRecs, err := p.source.ForBranch(ctx, targetBranch, p.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read revisions on %s", targetBranch)
	}

	if len(sourceRecs) == 0 && len(targetRecs) == 0 {
		return nil, nil
	}

	source := revision.BuildChain(sourceRecs)
	target := revision.BuildChain(targetRecs)

	if !source.Contains(currentRev) {
		return p.planGhost(ctx, currentRev, sourceBranch, targetBranch, target)
	}

	return decide(currentRev, source, target), nil
}

// planGhost handles the case where the applied revision's script is not
// visible on the branch being left (stash or rebase leftovers, typically).
func (p *Planner) planGhost(ctx context.Context, currentRev, sourceBranch, targetBranch string, target revision.Chain) (*Plan, error) {
	if target.Contains(currentRev) {
		// The ghost is reachable once we're on the target branch, so no
		// downgrade is needed; catch up to the target head if behind.
		head := target.Head()
		return &Plan{
			CurrentDBRevision:  currentRev,
			TargetHeadRevision: head,
			NeedsUpgrade:       head != "" && head != currentRev,
		}, nil
	}

	// Neither branch has the script, so there is nothing to drive a
	// downgrade with. Report where (if anywhere) the revision lives.
	return nil, &PlanError{
		Message: fmt.Sprintf(
			"database is at revision %s, which is missing from both %s and %s; cannot calculate a migration path",
			currentRev, sourceBranch, targetBranch,
		),
		MissingRevision: currentRev,
		FoundInBranches: p.searchBranches(ctx, currentRev),
	}
}

// searchBranches scans every known branch's revisions directory for a
// script defining rev. This is the slow diagnostic path; it runs only
// when planning has already failed.
func (p *Planner) searchBranches(ctx context.Context, rev string) []string {
	names, err := p.branches.Branches(ctx)
	if err != nil {
		return []string{}
	}

	found := []string{}
	for _, branch := range names {
		records, err := p.source.ForBranch(ctx, branch, p.dir)
		if err != nil {
			continue
		}

		for _, r := range records {
			if r.ID == rev {
				found = append(found, branch)
				break
			}
		}
	}

	return found
}

// decide computes the plan for the non-ghost case: the current revision
// is known to sit somewhere on the source chain.
func decide(currentRev string, source, target revision.Chain) *Plan {
	common := commonRevision(source, target)
	head := target.Head()

	needsDowngrade := false
	if common != "" && currentRev != common {
		commonIdx := source.IndexOf(common)
		currentIdx := source.IndexOf(currentRev)
		if commonIdx < 0 || currentIdx < 0 {
			// Shouldn't happen for a non-ghost revision, but downgrading
			// to the common point is the safe reading if it does.
			needsDowngrade = true
		} else {
			needsDowngrade = currentIdx > commonIdx
		}
	}

	return &Plan{
		CurrentDBRevision:  currentRev,
		CommonRevision:     common,
		TargetHeadRevision: head,
		NeedsDowngrade:     needsDowngrade,
		NeedsUpgrade:       head != "" && head != currentRev,
	}
}

// commonRevision returns the last revision id present in both chains, or
// "" when the chains share nothing.
func commonRevision(source, target revision.Chain) string {
	common := ""
	for _, id := range source {
		if target.Contains(id) {
			common = id
		}
	}

	return common
}
