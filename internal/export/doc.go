// Package export writes universe state to disk: JSON snapshots, CSV
// trajectories recorded tick by tick, and SVG renders of a snapshot.
package export
