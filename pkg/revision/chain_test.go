package revision_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	. "github.com/switchyard-dev/switchyard/pkg/revision"
)

func rec(id string, down string) *Record {
	r := &Record{ID: id, Path: id + ".py"}
	if down != "" {
		r.DownRevision = &down
	}
	return r
}

func TestBuildChain(t *testing.T) {
	tests := []struct {
		name    string
		records []*Record
		want    Chain
	}{
		{
			name:    "empty set",
			records: nil,
			want:    Chain{},
		},
		{
			name:    "single revision",
			records: []*Record{rec("a", "")},
			want:    Chain{"a"},
		},
		{
			name: "linear history out of order",
			records: []*Record{
				rec("c", "b"),
				rec("a", ""),
				rec("b", "a"),
			},
			want: Chain{"a", "b", "c"},
		},
		{
			name: "dangling down revision truncates at root",
			records: []*Record{
				rec("c", "b"),
				rec("b", "missing"),
			},
			want: Chain{"b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildChain(tt.records))
		})
	}
}

// A cycle-free record set always yields a chain covering every distinct id
// with a nil down revision at the root.
func TestBuildChainCoversAcyclicSets(t *testing.T) {
	records := []*Record{
		rec("e", "d"),
		rec("b", "a"),
		rec("d", "c"),
		rec("a", ""),
		rec("c", "b"),
	}

	chain := BuildChain(records)
	require.Len(t, chain, len(records))
	require.Equal(t, Chain{"a", "b", "c", "d", "e"}, chain)
}

// A cyclic record set must terminate with a chain no longer than the
// number of distinct ids.
func TestBuildChainTerminatesOnCycle(t *testing.T) {
	records := []*Record{
		rec("a", "c"),
		rec("b", "a"),
		rec("c", "b"),
	}

	chain := BuildChain(records)
	require.LessOrEqual(t, len(chain), len(records))
	require.NotEmpty(t, chain)

	seen := make(map[string]bool)
	for _, id := range chain {
		require.False(t, seen[id], "chain repeats %s", id)
		seen[id] = true
	}
}

// When every record is referenced as a down revision there is no
// well-defined head. The builder falls back to the first record
// encountered; this is a known weak heuristic inherited from the design,
// so the test only pins termination and cycle-freedom, not a particular
// head choice.
func TestBuildChainCorruptedSetFallsBackToFirstRecord(t *testing.T) {
	records := []*Record{
		rec("a", "b"),
		rec("b", "a"),
	}

	chain := BuildChain(records)
	require.NotEmpty(t, chain)
	require.LessOrEqual(t, len(chain), 2)
	require.Equal(t, "a", chain.Head())
}

func TestChainAccessors(t *testing.T) {
	c := Chain{"a", "b", "c"}

	require.Equal(t, "c", c.Head())
	require.Equal(t, "", Chain{}.Head())
	require.True(t, c.Contains("b"))
	require.False(t, c.Contains("z"))
	require.Equal(t, 1, c.IndexOf("b"))
	require.Equal(t, -1, c.IndexOf("z"))
}
