// Package replay drives bearing sensors with simulated platforms.
//
// Scenarios are YAML scripts of timed orientation events, permission
// requests and expectations. A Runner plays a scenario on a mock clock, so
// timeouts and throttling are exercised without waiting in real time.
// Recorded trace files can be played back through a TracePlatform.
//
// Example scenario:
//
//	name: grant then sample
//	platform: gated
//	permission: granted
//	sensor:
//	  timeout: 100ms
//	steps:
//	  - at: 0s
//	    request: true
//	  - at: 10ms
//	    event: {compass_heading: 90}
//	  - at: 100ms
//	    expect: {status: READY, permission: GRANTED, bearing: 270}
package replay
