// Package handdrawn provides a sketchy, hand-drawn bubble style.
//
// Outlines are closed quadratic paths around the circle with small seeded
// radial jitter, softened further by an SVG turbulence filter. Labels get a
// slight seeded tilt and a handwriting font stack.
//
// # Reproducible Randomness
//
//	style := handdrawn.New(42) // same seed, same outlines
//
// Centers and radii are never moved; the wobble is cosmetic only, so the
// packed layout's no-overlap guarantee still holds up to the padding.
package handdrawn
