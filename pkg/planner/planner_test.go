package planner_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	. "github.com/switchyard-dev/switchyard/pkg/planner"
	"github.com/switchyard-dev/switchyard/pkg/revision"
)

// fakeWorkspace provides records per branch and the branch list for the
// diagnostic search.
type fakeWorkspace struct {
	records map[string][]*revision.Record
}

func (f *fakeWorkspace) ForBranch(_ context.Context, branch, _ string) ([]*revision.Record, error) {
	return f.records[branch], nil
}

func (f *fakeWorkspace) Branches(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(f.records))
	for b := range f.records {
		names = append(names, b)
	}
	return names, nil
}

func rec(id, down string) *revision.Record {
	r := &revision.Record{ID: id, Path: id + ".py"}
	if down != "" {
		r.DownRevision = &down
	}
	return r
}

// linear builds a record set forming the chain ids[0] -> ids[n-1].
func linear(ids ...string) []*revision.Record {
	records := make([]*revision.Record, len(ids))
	for i, id := range ids {
		down := ""
		if i > 0 {
			down = ids[i-1]
		}
		records[i] = rec(id, down)
	}
	return records
}

func newPlanner(ws *fakeWorkspace) *Planner {
	return New(ws, ws, "db/versions")
}

func TestPlanIdenticalBranchesAtHead(t *testing.T) {
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b"),
		"feature": linear("a", "b"),
	}}

	plan, err := newPlanner(ws).Plan(context.Background(), "b", "main", "feature")
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.False(t, plan.NeedsDowngrade)
	require.False(t, plan.NeedsUpgrade)
	require.Equal(t, "b", plan.CommonRevision)
}

func TestPlanDivergedBranches(t *testing.T) {
	// source [a,b,c], target [a,b,d], db at c: unwind to b, replay to d.
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b", "c"),
		"feature": linear("a", "b", "d"),
	}}

	plan, err := newPlanner(ws).Plan(context.Background(), "c", "main", "feature")
	require.NoError(t, err)
	require.Equal(t, &Plan{
		CurrentDBRevision:  "c",
		CommonRevision:     "b",
		TargetHeadRevision: "d",
		NeedsDowngrade:     true,
		NeedsUpgrade:       true,
	}, plan)
}

func TestPlanTargetAhead(t *testing.T) {
	// source [a,b], target [a,b,c], db at b: upgrade only.
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b"),
		"feature": linear("a", "b", "c"),
	}}

	plan, err := newPlanner(ws).Plan(context.Background(), "b", "main", "feature")
	require.NoError(t, err)
	require.Equal(t, "b", plan.CommonRevision)
	require.Equal(t, "c", plan.TargetHeadRevision)
	require.False(t, plan.NeedsDowngrade)
	require.True(t, plan.NeedsUpgrade)
}

func TestPlanDowngradeOnlyWhenAheadOfCommon(t *testing.T) {
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b", "c", "d"),
		"feature": linear("a", "b", "e"),
	}}
	p := newPlanner(ws)

	// At the common revision itself: nothing to unwind.
	plan, err := p.Plan(context.Background(), "b", "main", "feature")
	require.NoError(t, err)
	require.False(t, plan.NeedsDowngrade)

	// Strictly after the common revision: unwind required.
	for _, cur := range []string{"c", "d"} {
		plan, err = p.Plan(context.Background(), cur, "main", "feature")
		require.NoError(t, err)
		require.True(t, plan.NeedsDowngrade, "current=%s", cur)
		require.Equal(t, "b", plan.CommonRevision)
	}
}

func TestPlanGhostPresentInTarget(t *testing.T) {
	// The applied revision only exists on the branch being entered, e.g.
	// after stashing a migration while switching back and forth.
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b"),
		"feature": linear("a", "b", "x", "y"),
	}}

	plan, err := newPlanner(ws).Plan(context.Background(), "x", "main", "feature")
	require.NoError(t, err)
	require.False(t, plan.NeedsDowngrade)
	require.True(t, plan.NeedsUpgrade)
	require.Equal(t, "y", plan.TargetHeadRevision)
	require.Empty(t, plan.CommonRevision)
}

func TestPlanGhostAtTargetHead(t *testing.T) {
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b"),
		"feature": linear("a", "b", "x"),
	}}

	plan, err := newPlanner(ws).Plan(context.Background(), "x", "main", "feature")
	require.NoError(t, err)
	require.False(t, plan.NeedsDowngrade)
	require.False(t, plan.NeedsUpgrade)
}

func TestPlanGhostInNeitherBranch(t *testing.T) {
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b"),
		"feature": linear("a", "c"),
		"stashed": linear("a", "b", "x"),
	}}

	plan, err := newPlanner(ws).Plan(context.Background(), "x", "main", "feature")
	require.Nil(t, plan)

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	require.Equal(t, "x", planErr.MissingRevision)
	require.Equal(t, []string{"stashed"}, planErr.FoundInBranches)
	require.Contains(t, planErr.Error(), "x")
}

func TestPlanGhostInNeitherBranchNowhereFound(t *testing.T) {
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b"),
		"feature": linear("a", "c"),
	}}

	_, err := newPlanner(ws).Plan(context.Background(), "x", "main", "feature")

	var planErr *PlanError
	require.ErrorAs(t, err, &planErr)
	require.Empty(t, planErr.FoundInBranches)
}

func TestPlanNoRevisionsAnywhere(t *testing.T) {
	ws := &fakeWorkspace{records: map[string][]*revision.Record{}}

	plan, err := newPlanner(ws).Plan(context.Background(), "x", "main", "feature")
	require.NoError(t, err)
	require.Nil(t, plan)
}

func TestPlanIsDeterministic(t *testing.T) {
	ws := &fakeWorkspace{records: map[string][]*revision.Record{
		"main":    linear("a", "b", "c"),
		"feature": linear("a", "b", "d"),
	}}
	p := newPlanner(ws)

	first, err := p.Plan(context.Background(), "c", "main", "feature")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		next, err := p.Plan(context.Background(), "c", "main", "feature")
		require.NoError(t, err)
		require.Equal(t, first, next)
	}
}
