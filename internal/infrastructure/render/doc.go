// Package render turns scene snapshots into export artifacts.
//
// RasterRenderer paints a snapshot with fogleman/gg: the background is
// cover-scaled and clipped to the canvas, elements follow in paint order and
// guides are drawn only for previews. Images are resampled with a Lanczos
// filter before drawing. PDFRenderer wraps a finished raster in a single
// page sized to the card using headless Chrome. DumpScene serializes a
// snapshot as JSON or YAML.
package render
