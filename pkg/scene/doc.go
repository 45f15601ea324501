// Package scene owns the interactive state of one orgtower view.
//
// A [Scene] holds the input rows, the active-only filter, the display mode,
// the graph built from the rows, the layout of the current mode and the
// viewport camera. Every method is an event: it takes the scene lock,
// applies the change and re-emits a [graph.Layout] snapshot to
// subscribers.
//
// # Lifecycle
//
// A data or filter change rebuilds the graph from scratch and bumps the
// generation. A rebuild or mode switch first tears the previous layout down
// (simulation loop stopped, pending fit cancelled) and then builds the new
// one. The force loop holds the scene lock for each step and retires itself
// once its generation is stale, so it never mutates a discarded graph.
//
// In graph mode the camera is reset on rebuild and framed later by the
// delayed auto-fit; in tree mode it is framed immediately. Gestures (pan,
// zoom, wheel) change only the camera.
//
// # Subscribers
//
// Subscribers are called with the scene lock held. They must not block and
// must not call back into the scene.
package scene
