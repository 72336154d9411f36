package designer

// SnapshotVersion is the current scene snapshot format version
const SnapshotVersion = 1

// SceneSnapshot is the lossless dump of a document's content, shared by
// templates and scene exports. It never contains guides.
type SceneSnapshot struct {
	Version    int         `json:"version" yaml:"version"`
	Dimension  Dimension   `json:"dimension" yaml:"dimension"`
	Background *ImageStyle `json:"background,omitempty" yaml:"background,omitempty"`
	Elements   []Element   `json:"elements" yaml:"elements"`
}

// Validate checks the dimension, every element and id uniqueness
func (s SceneSnapshot) Validate() error {
	if s.Version < 1 || s.Version > SnapshotVersion {
		return ErrInvalidSnapshot.WithMessage("unsupported snapshot version")
	}
	if !s.Dimension.IsValid() {
		return ErrInvalidSnapshot.WithMessage("snapshot dimension must be positive")
	}
	if s.Background != nil {
		if err := s.Background.validate(); err != nil {
			return ErrInvalidSnapshot.WithMessage("background: " + err.Error())
		}
	}
	seen := make(map[string]struct{}, len(s.Elements))
	for _, e := range s.Elements {
		if e.ID == "" {
			return ErrInvalidSnapshot.WithMessage("element without id")
		}
		if _, dup := seen[e.ID]; dup {
			return ErrInvalidSnapshot.WithMessage("duplicate element id: " + e.ID)
		}
		seen[e.ID] = struct{}{}
		if err := e.Validate(); err != nil {
			return ErrInvalidSnapshot.WithMessage("element " + e.ID + ": " + err.Error())
		}
	}
	return nil
}

// Clone returns a deep copy of the snapshot
func (s SceneSnapshot) Clone() SceneSnapshot {
	var out SceneSnapshot
	deepCopy(&out, &s)
	return out
}

// ImageRefs returns the background and element image references in paint order
func (s SceneSnapshot) ImageRefs() []ImageRef {
	var refs []ImageRef
	if s.Background != nil {
		refs = append(refs, s.Background.Source)
	}
	for _, e := range s.Elements {
		if e.Image != nil {
			refs = append(refs, e.Image.Source)
		}
	}
	return refs
}
