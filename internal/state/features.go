package state

import (
	"fmt"
	"sort"
	"strings"
)

// Features selects which optional parts of the pipeline are enabled.
type Features struct {
	Camera        bool `json:"camera"`
	Freehand      bool `json:"freehand"`
	FlickerToggle bool `json:"flickerToggle"`
}

// EnvFeatures names the environment variable holding the feature list.
const EnvFeatures = "PIXELTOY_FEATURES"

const (
	FeatureCamera        = "camera"
	FeatureFreehand      = "freehand"
	FeatureFlickerToggle = "flicker-toggle"
)

// AllFeatures enables every optional feature.
func AllFeatures() Features {
	return Features{Camera: true, Freehand: true, FlickerToggle: true}
}

// ParseFeatures parses a comma separated list such as "camera,freehand".
// The values "all" and "none" are accepted as shorthands.
func ParseFeatures(raw string) (Features, error) {
	var features Features
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch name {
		case "":
		case "all":
			features = AllFeatures()
		case "none":
			features = Features{}
		case FeatureCamera:
			features.Camera = true
		case FeatureFreehand:
			features.Freehand = true
		case FeatureFlickerToggle, "flicker":
			features.FlickerToggle = true
		default:
			return Features{}, fmt.Errorf("unknown feature %q: %w", name, ErrInvalidSetting)
		}
	}
	return features, nil
}

func (features Features) String() string {
	var names []string
	if features.Camera {
		names = append(names, FeatureCamera)
	}
	if features.Freehand {
		names = append(names, FeatureFreehand)
	}
	if features.FlickerToggle {
		names = append(names, FeatureFlickerToggle)
	}
	if len(names) == 0 {
		return "none"
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
