// Package planner decides which migration action a branch switch requires.
//
// Given the database's currently applied revision and the revision chains
// of the branch being left and the branch being entered, the planner
// produces one of:
//   - a Plan whose NeedsDowngrade/NeedsUpgrade flags describe the action
//     (both false means the branches agree and nothing needs to run)
//   - a PlanError when the database sits on a ghost revision that neither
//     branch can unwind, carrying the missing id and the other branches
//     that define it
//
// Planning is deterministic: the same chains and current revision always
// produce the same result. A Planner holds no state between invocations;
// construct one per call with its collaborators.
package planner
