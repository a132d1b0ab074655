package revision

type (
	// Chain is a branch's revision history ordered root-first, head-last.
	// Every id except the first has its predecessor immediately before it,
	// and no id repeats. A branch with no revisions yields an empty chain.
	Chain []string
)

// Head returns the chain's most recent revision id, or "" for an empty
// chain.
func (c Chain) Head() string {
	if len(c) == 0 {
		return ""
	}

	return c[len(c)-1]
}

// Contains reports whether id is present anywhere in the chain.
func (c Chain) Contains(id string) bool {
	return c.IndexOf(id) >= 0
}

// IndexOf returns the position of id in the chain, or -1 when absent.
func (c Chain) IndexOf(id string) int {
	for i, v := range c {
		if v == id {
			return i
		}
	}

	return -1
}

// BuildChain orders an unordered record set into a single Chain.
//
// The head is the record whose id is never referenced as another record's
// down revision. When every record has a child (corrupted data), the first
// record encountered is used as head; this is a fallback, not a
// correctness guarantee, and a corrupted set may produce a partial chain.
//
// From the head, the chain is walked backward via down-revision links
// until a nil down revision is reached or an id repeats. A repeated id
// indicates a cycle and truncates the walk instead of looping.
//
// BuildChain performs no I/O and always returns a (possibly empty,
// possibly truncated) chain.
func BuildChain(records []*Record) Chain {
	if len(records) == 0 {
		return Chain{}
	}

	lookup := make(map[string]*Record, len(records))
	children := make(map[string]bool)
	for _, r := range records {
		lookup[r.ID] = r
		if r.DownRevision != nil {
			children[*r.DownRevision] = true
		}
	}

	head := ""
	for _, r := range records {
		if !children[r.ID] {
			head = r.ID
			break
		}
	}
	if head == "" {
		head = records[0].ID
	}

	var chain Chain
	visited := make(map[string]bool)

	for cur := head; cur != ""; {
		rec, ok := lookup[cur]
		if !ok || visited[cur] {
			break
		}

		chain = append(Chain{cur}, chain...)
		visited[cur] = true

		if rec.DownRevision == nil {
			break
		}
		cur = *rec.DownRevision
	}

	return chain
}
