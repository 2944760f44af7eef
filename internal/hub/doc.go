// Package hub implements the real-time notification hub.
//
// The ConnectionRegistry is the single shared structure: an indexed table of
// live connections (by id, by user, by channel subscription). Around it run
// three independent actors: per-connection reader/writer loops managed by the
// ConnectionHandler, the Broadcaster fanning published events out to bounded
// per-connection send buffers, and the Monitor evicting connections whose
// last inbound activity is older than the liveness timeout. A slow client
// only ever loses its own events; delivery to everyone else proceeds.
package hub
