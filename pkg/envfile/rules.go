package envfile

import (
	"fmt"
	"sort"
)

type (
	// Rules governs cross-repository env consistency checking. The zero
	// value checks nothing beyond assumed matching with no exemptions.
	Rules struct {
		// Mode selects what a conflict means: "strict" fails the calling
		// operation, "warn" only reports.
		Mode string `yaml:"mode"`

		// MissingEnvFile selects how a repo without its env file is
		// treated: "strict", "warn", or "ignore".
		MissingEnvFile string `yaml:"missing_env_file"`

		// IgnoreKeys are exempt from assumed matching entirely.
		IgnoreKeys []string `yaml:"ignore_keys"`

		// MatchGroups tie differently-named keys together across repos.
		MatchGroups []MatchGroup `yaml:"match_groups"`
	}

	// MatchGroup declares that any of Keys refer to the same logical
	// setting wherever they appear, e.g. DB_HOST in one repo and
	// SQL_SERVER in another.
	MatchGroup struct {
		Name string   `yaml:"name"`
		Keys []string `yaml:"keys"`
	}
)

const (
	ModeStrict = "strict"
	ModeWarn   = "warn"

	// ModeIgnore is valid for MissingEnvFile only.
	ModeIgnore = "ignore"
)

// Validate checks env consistency across repositories. envs maps repo
// name to its parsed (raw) env vars. Two rules apply:
//
//  1. Assumed matching: a non-ignored key present in two or more repos
//     must carry the same normalized value everywhere.
//  2. Match groups: all keys of a group must agree within a repo and
//     across repos.
//
// The returned conflict descriptions are ordered deterministically.
// Enforcement (strict vs warn) is the caller's decision via Rules.Mode.
func Validate(rules Rules, envs map[string]map[string]string) []string {
	normalized := make(map[string]map[string]string, len(envs))
	for repo, vars := range envs {
		n := make(map[string]string, len(vars))
		for k, v := range vars {
			n[k] = Normalize(v)
		}
		normalized[repo] = n
	}

	repos := make([]string, 0, len(normalized))
	for repo := range normalized {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	var conflicts []string
	conflicts = append(conflicts, assumedConflicts(rules, repos, normalized)...)
	conflicts = append(conflicts, groupConflicts(rules, repos, normalized)...)

	return conflicts
}

func assumedConflicts(rules Rules, repos []string, envs map[string]map[string]string) []string {
	ignored := make(map[string]bool, len(rules.IgnoreKeys))
	for _, k := range rules.IgnoreKeys {
		ignored[k] = true
	}

	keySet := make(map[string]bool)
	for _, repo := range repos {
		for k := range envs[repo] {
			if !ignored[k] {
				keySet[k] = true
			}
		}
	}

	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var conflicts []string
	for _, key := range keys {
		firstRepo, firstVal := "", ""
		for _, repo := range repos {
			val, ok := envs[repo][key]
			if !ok {
				continue
			}

			if firstRepo == "" {
				firstRepo, firstVal = repo, val
			} else if val != firstVal {
				conflicts = append(conflicts, fmt.Sprintf(
					"conflict for key %q: %s=%s vs %s=%s", key, firstRepo, firstVal, repo, val,
				))
			}
		}
	}

	return conflicts
}

func groupConflicts(rules Rules, repos []string, envs map[string]map[string]string) []string {
	var conflicts []string

	for _, group := range rules.MatchGroups {
		groupVal, groupSource := "", ""

		for _, repo := range repos {
			var present []string
			for _, k := range group.Keys {
				if _, ok := envs[repo][k]; ok {
					present = append(present, k)
				}
			}
			if len(present) == 0 {
				continue
			}

			repoVal := envs[repo][present[0]]
			for _, k := range present[1:] {
				if envs[repo][k] != repoVal {
					conflicts = append(conflicts, fmt.Sprintf(
						"internal conflict in %s for group %q: %s=%s vs %s=%s",
						repo, group.Name, present[0], repoVal, k, envs[repo][k],
					))
				}
			}

			if groupSource == "" {
				groupVal, groupSource = repoVal, repo+"."+present[0]
			} else if repoVal != groupVal {
				conflicts = append(conflicts, fmt.Sprintf(
					"group %q conflict: %s=%s vs %s.%s=%s",
					group.Name, groupSource, groupVal, repo, present[0], repoVal,
				))
			}
		}
	}

	return conflicts
}
