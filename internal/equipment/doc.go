// Package equipment implements the equipment state machine for
// PowerLift Control.
//
// An equipment unit is a physical forklift with a bound embedded
// controller and an availability status. The status is a closed
// enumeration (available, in_use, maintenance) whose transitions are
// enforced twice: by the Status transition functions, and by a guarded
// UPDATE in the repository so concurrent checkouts against the same
// unit resolve to exactly one winner. The backing store's
// compare-and-swap is the lock; there is no in-memory mutex.
//
// The repository never mutates status outside TransitionTx, and
// TransitionTx only runs inside the session service's transaction so
// the status can never be observed ahead of the session ledger.
package equipment
