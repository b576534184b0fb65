// Package database provides SQLite connection management and embedded
// migrations for PowerLift Control.
//
// The equipment and session records are the shared mutable state of the
// whole system; every multi-row mutation goes through a transaction
// started here. SQLite's single-writer model plus the busy timeout
// serialise concurrent checkout attempts.
package database
