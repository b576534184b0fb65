// Package settings manages persisted application settings, chiefly the
// broker connection configuration used for device command dispatch.
// Settings live in the app_settings table and are re-read per dispatch,
// so changes apply without a restart.
package settings
