// Package snap computes snap-zone geometry for window drags: edge
// detection while the pointer moves, live preview events, snap commit on
// release, and exact pre-snap restoration. It is a pure geometry utility
// with no knowledge of applications or the registry.
package snap
