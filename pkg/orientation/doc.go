// Package orientation models device-orientation sensor input.
//
// Platforms deliver raw Events to registered listeners. Two families of
// platforms exist:
//
//   - Gated platforms expose a permission API (PermissionRequester). Events
//     may carry a vendor compass heading; headings are only meaningful after
//     the user grants access.
//   - Ungated platforms have no permission API. The first event's Absolute
//     flag tells whether the platform reports headings relative to north.
//
// SelectSource inspects a Platform once and returns the matching Source
// strategy, so callers handle a single normalized shape instead of
// branching on the platform for every event.
//
// # Heading Convention
//
// Published bearings are degrees clockwise from north in [0, 360). Raw
// alpha and compass heading fields are mapped with HeadingFromRaw, which
// computes 360 - raw and wraps the result (0 maps to 0, 360 maps to 0).
package orientation
