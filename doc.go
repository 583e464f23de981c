// Package gameinteractive implements a client runtime for the bidirectional
// JSON-RPC-over-WebSocket "Interactive" game-integration protocol: host
// discovery, a duplex transport, packet correlation, bandwidth throttling,
// connection state tracking, and the four resource service providers
// (scenes, groups, controls, participants), fanned out through a typed
// event bus.
//
// GameClient is the single entry point. Construct one with New, Connect it
// with a bearer token, use Using to reach a provider, and Subscribe to the
// event bus for server-pushed events.
package gameinteractive
