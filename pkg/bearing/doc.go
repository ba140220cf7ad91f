// Package bearing turns raw device-orientation events into a stable,
// throttled compass bearing with explicit lifecycle states.
//
// A Sensor owns one platform listener. It publishes immutable State
// snapshots through a replaying stream:
//
//	INITIALIZING -> READY | UNSUPPORTED      (first platform event)
//	any          -> PENDING                  (RequestPermission)
//	PENDING      -> READY | UNSUPPORTED      (permission outcome)
//	READY        -> UNSUPPORTED              (no sample before the deadline)
//
// Bearing is only ever set while permission is granted. All transitions run
// on a single event loop goroutine, so observers may call back into the
// Sensor from their callbacks.
package bearing
