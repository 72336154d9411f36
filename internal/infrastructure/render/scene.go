package render

import (
	"encoding/json"

	"github.com/fulluproar/backoffice/internal/domain/designer"
	"gopkg.in/yaml.v3"
)

// DumpScene serializes a snapshot in the given scene format. JSON is the
// default for anything but SCENE_YAML.
func DumpScene(s designer.SceneSnapshot, format designer.ExportFormat) ([]byte, error) {
	if format == designer.ExportFormatSceneYAML {
		out, err := yaml.Marshal(s)
		if err != nil {
			return nil, NewRenderError(ErrCodeEncodeFailed, "failed to encode scene as YAML", err)
		}
		return out, nil
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, NewRenderError(ErrCodeEncodeFailed, "failed to encode scene as JSON", err)
	}
	return out, nil
}

// ParseScene reads a JSON or YAML scene dump and validates it
func ParseScene(data []byte, format designer.ExportFormat) (designer.SceneSnapshot, error) {
	var s designer.SceneSnapshot
	var err error
	if format == designer.ExportFormatSceneYAML {
		err = yaml.Unmarshal(data, &s)
	} else {
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return designer.SceneSnapshot{}, designer.ErrInvalidSnapshot.WithMessage("scene is malformed: " + err.Error())
	}
	if err := s.Validate(); err != nil {
		return designer.SceneSnapshot{}, err
	}
	return s, nil
}
