// Package stream implements a minimal single-value broadcast stream.
//
// A Value holds exactly one current value. Publishing replaces it and
// synchronously notifies every registered observer in registration order.
// Subscribing replays the current value to the new observer before
// Subscribe returns, so late subscribers never wait for the next change.
//
// # Delivery Guarantees
//
//   - Observers registered at publish time are notified in registration order
//   - An observer may unsubscribe itself (or others) while being notified
//   - An unsubscribed observer is never invoked again
//   - A subscription never receives an older value after a newer one
//   - The replay always reaches a subscription before any live update
//
// Unsubscribing is idempotent: removing a handle twice, or removing a nil
// handle, is a no-op.
package stream
