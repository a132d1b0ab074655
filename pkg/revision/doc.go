// Package revision reads Alembic migration scripts as they exist on a git
// branch and orders them into linear revision chains.
//
// Each migration script declares its own revision id and the id of the
// revision it chains onto (its down revision). The package provides:
//   - Header parsing for the revision/down_revision assignments, covering
//     both the plain and the type-annotated Alembic template styles
//   - A Store that enumerates a branch's revisions directory without
//     checking the branch out
//   - Chain construction from an unordered record set, with head detection
//     and cycle protection
//
// Records and chains are derived freshly on every call. Nothing in this
// package caches or persists state; the branch's committed tree is ground
// truth.
package revision
