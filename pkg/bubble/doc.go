// Package bubble packs weighted labels into a cluster of non-overlapping circles.
//
// # Overview
//
// A bubble cloud shows the most frequent words (or emojis) of a report as
// circles whose radius grows with the item's weight. [Pack] turns an ordered
// list of [Item] values into [PlacedCircle] values ready to be drawn:
//
//	circles := bubble.Pack([]bubble.Item{
//	    {Label: "lol", Weight: 50},
//	    {Label: "ok", Weight: 30},
//	}, bubble.DefaultOptions())
//
// # Algorithm
//
// Packing is a single greedy pass with no backtracking:
//
//  1. [Rank] keeps the MaxItems heaviest items (stable on ties, so earlier
//     input wins) and interpolates each radius linearly between MinRadius and
//     MaxRadius. When every kept weight is equal all radii are the mid radius.
//  2. Circles are placed largest first. The first sits on the container
//     center. Every later circle is tried at each angle step on a ring around
//     every placed circle, exactly tangent plus Padding. The candidate that
//     collides with nothing and lies closest to the container center wins.
//  3. The cluster is translated so the centroid of all centers matches the
//     container center.
//
// If no candidate is free the circle is dropped on the container center and
// flagged with Fallback. Every ring starts at angle zero, and the candidate at
// angle zero on the ring of the right-most circle is always free, so finite
// inputs never take this path. The flag exists so callers can tell.
//
// # Ordering
//
// Go maps have no iteration order, so the engine takes a slice. [FromMap]
// builds one in lexicographic label order; decoders that see a JSON object
// (see package report) keep the document order instead.
//
// # Concurrency
//
// Pack and Rank are pure functions of their arguments. They hold no package
// state and can be called from any number of goroutines.
package bubble
