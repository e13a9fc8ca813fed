// Package keypoints provides the reference annotation plugin: a pose
// keypoint spatial payload with a rule validating normalized coordinates.
package keypoints

import (
	"context"
	"encoding/json"
	"fmt"

	"annotcore/internal/core"
	"annotcore/pkg/interval"
)

// Tag is the spatial payload tag registered by this plugin.
const Tag = "keypoints"

// Point is one normalized pose joint in [0,1] image coordinates.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name,omitempty"`
}

// Keypoints is the spatial payload variant carrying a pose skeleton.
type Keypoints struct {
	Points []Point `json:"points"`
}

// Kind implements interval.Spatial with the plugin's tag.
func (Keypoints) Kind() interval.SpatialKind { return interval.SpatialKind(Tag) }

// EncodeSpatial renders the tagged wire form so keypoint payloads survive
// export and snapshot round-trips.
func (k Keypoints) EncodeSpatial() (json.RawMessage, error) {
	return json.Marshal(struct {
		Tag string `json:"tag"`
		Keypoints
	}{Tag: Tag, Keypoints: k})
}

// Plugin implements the keypoints annotation module.
type Plugin struct{}

// New constructs a keypoints plugin instance.
func New() Plugin {
	return Plugin{}
}

// Name returns the plugin identifier.
func (Plugin) Name() string { return "keypoints" }

// Version returns the plugin semantic version.
func (Plugin) Version() string { return "0.1.0" }

// Register wires the spatial decoder and the coordinate validation rule.
func (Plugin) Register(registry *core.PluginRegistry) error {
	registry.RegisterSpatialDecoder(Tag, decodeKeypoints)
	registry.RegisterRule(keypointBoundsRule{})
	return nil
}

func decodeKeypoints(raw json.RawMessage) (interval.Spatial, error) {
	var kp Keypoints
	if err := json.Unmarshal(raw, &kp); err != nil {
		return nil, err
	}
	return kp, nil
}

func (Plugin) registerDecoderInto(r *interval.SpatialRegistry) {
	r.Register(Tag, decodeKeypoints)
}

type keypointBoundsRule struct{}

func (keypointBoundsRule) Name() string { return "keypoint_bounds" }

// Evaluate warns about joints outside the normalized unit square. Pose
// estimators legitimately emit slightly out-of-frame joints, so this is a
// warning rather than a blocking violation.
func (keypointBoundsRule) Evaluate(_ context.Context, view interval.RuleView, _ []core.Change) (core.Result, error) {
	var result core.Result
	for _, block := range view.ListBlocks() {
		for _, channel := range block.Channels {
			for _, iv := range channel.Set.Slice() {
				kp, ok := iv.Data().Spatial.(Keypoints)
				if !ok {
					continue
				}
				for _, p := range kp.Points {
					if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
						result.Violations = append(result.Violations, interval.Violation{
							Rule:     "keypoint_bounds",
							Severity: interval.SeverityWarn,
							Message:  fmt.Sprintf("keypoint %q at (%g, %g) outside unit square in channel %q", p.Name, p.X, p.Y, channel.Name),
							Entity:   interval.EntityInterval,
							VideoID:  block.VideoID,
							Channel:  channel.Name,
						})
						break
					}
				}
			}
		}
	}
	return result, nil
}
