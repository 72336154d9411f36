package designer

// GuideOrientation is the direction of a guide line
type GuideOrientation string

const (
	GuideVertical   GuideOrientation = "VERTICAL"
	GuideHorizontal GuideOrientation = "HORIZONTAL"
)

// Guide is a centerline marker. Guides are regenerated on every dimension
// change, are painted beneath every element in previews, and never appear in
// snapshots or exports.
type Guide struct {
	Orientation GuideOrientation `json:"orientation"`
	Position    float64          `json:"position"`
}

// CenterGuides returns the vertical and horizontal centerlines of dim
func CenterGuides(dim Dimension) []Guide {
	return []Guide{
		{Orientation: GuideVertical, Position: dim.Width / 2},
		{Orientation: GuideHorizontal, Position: dim.Height / 2},
	}
}
