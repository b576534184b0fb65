// Package session owns the usage ledger and the session lifecycle.
//
// A session binds one operator to one equipment unit for a span of
// time. Starting a session flips the unit to in_use and appends an
// open ledger entry in the same transaction; ending it stamps the end
// time and duration and returns the unit to available, again in one
// transaction. Device power commands are dispatched only after the
// transaction commits, so command delivery failures degrade the
// response but never the recorded state.
package session
