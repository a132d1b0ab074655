// Package alembic drives the external Alembic migration engine through
// the repository's virtualenv-local executable.
//
// The package never interprets migration scripts itself; it asks Alembic
// for the database's currently applied revision and tells it to downgrade
// or upgrade between revisions the planner picked. Every invocation is
// bounded by a timeout sized for its job: status queries get a shorter
// bound than actual migrations, which may run DDL.
package alembic
