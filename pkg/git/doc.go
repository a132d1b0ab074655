// Package git wraps the git CLI for the handful of operations the tool
// needs: reading a branch's committed tree without checking it out,
// enumerating branches, and the usual fetch/pull/checkout/status calls.
//
// Every call shells out to git with a bounded timeout and the repository
// directory as working directory. Nothing is cached; the repository on
// disk is ground truth.
package git
