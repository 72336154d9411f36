// Package designer contains the card template designer bounded context.
//
// The designer composes print-ready card artwork from text, wrapping text
// boxes and images on a fixed-size canvas, persists named templates and
// exports the result at print resolution.
//
// Key concepts:
//   - Dimension: a named card size preset in reference units (72 per inch)
//   - CanvasDocument: the scene graph, an ordered arena of Elements plus an
//     optional full-bleed background image
//   - Element: a Text, TextBox or Image record; slice order is paint order
//   - Guide: centerline marker regenerated on every dimension change, never
//     snapshotted or exported
//   - SceneSnapshot: lossless dump of a document shared by templates and
//     scene exports
//   - Template: aggregate root holding a named SceneSnapshot
//
// Coordinates are always in reference units. Export multiplies them by a
// DPI multiplier (300/72 by default) to reach print resolution.
package designer
