// Package api provides the HTTP REST API for PowerLift Control.
//
// It exposes the operator directory, equipment fleet, session
// lifecycle and broker settings to the floor clients. The server
// follows the same lifecycle pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: all methods are safe for concurrent use from multiple
// goroutines.
package api
