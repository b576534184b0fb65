// Package operator provides the operator directory: a keyed lookup of
// people authorised to use equipment. There is no credential handling
// here; identity is a username match, as the surrounding system defines.
package operator
