// Package dispatch sends power commands to the devices mounted on
// equipment units.
//
// The dispatcher sits between the session lifecycle and the broker:
// when a session starts or ends it is told to activate or deactivate
// the unit's device, builds the command topic from the stored broker
// settings, and reports delivery as a Result rather than an error. A
// command that cannot be delivered leaves the session and equipment
// state exactly as committed; the caller surfaces the degradation to
// the operator instead of rolling anything back.
package dispatch
