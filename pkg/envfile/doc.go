// Package envfile reads, edits, and cross-checks the KEY=VALUE env files
// each workspace repository carries. Values shared between repositories
// (directly by key name or through configured match groups) are expected
// to agree; Validate reports where they don't.
package envfile
