// Package feed publishes a bearing sensor's state stream over TCP.
//
// Each frame is a 4-byte big-endian length followed by a CBOR-encoded
// Snapshot. A connection receives the sensor's current state first and
// then every later state. Slow readers lose their oldest queued
// snapshots; the sensor is never blocked by the network. Gaps show up as
// jumps in Snapshot.Seq.
//
// Servers can be announced on the local network as _compass._tcp using
// multicast DNS.
package feed
