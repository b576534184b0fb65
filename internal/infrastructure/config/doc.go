// Package config loads and validates PowerLift Control configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides (POWERLIFT_* pattern). Runtime-changeable broker settings
// are not configured here; they are persisted in the database and
// managed by the settings package.
package config
