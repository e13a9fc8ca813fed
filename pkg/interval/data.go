package interval

import (
	"encoding/json"
	"fmt"
)

// SpatialKind tags the variants of the spatial payload union.
type SpatialKind string

// Recognized spatial payload tags. Unrecognized tags decode to KindOpaque
// unless strict decoding is requested.
const (
	KindBBox     SpatialKind = "bbox"
	KindCaption  SpatialKind = "caption"
	KindTemporal SpatialKind = "temporal"
	KindOpaque   SpatialKind = "opaque"
)

// Spatial is the closed tagged variant carried by every interval payload.
// The core stores and returns it without interpretation; only rendering
// consumers branch on the kind.
type Spatial interface {
	Kind() SpatialKind
}

// BBox is a fractional-coordinate bounding box over the video frame.
// Coordinates are fractions of frame width/height in [0, 1].
type BBox struct {
	X1    float64 `json:"x1"`
	X2    float64 `json:"x2"`
	Y1    float64 `json:"y1"`
	Y2    float64 `json:"y2"`
	Color string  `json:"color,omitempty"`
}

// Kind returns KindBBox.
func (BBox) Kind() SpatialKind { return KindBBox }

// Caption marks a transcript span rendered on the caption track.
type Caption struct {
	Text string `json:"text"`
}

// Kind returns KindCaption.
func (Caption) Kind() SpatialKind { return KindCaption }

// Temporal is an untyped span with no spatial extent, rendered as a plain
// timeline segment.
type Temporal struct{}

// Kind returns KindTemporal.
func (Temporal) Kind() SpatialKind { return KindTemporal }

// Opaque preserves a spatial payload whose tag is not recognized by this
// build. The raw JSON re-encodes verbatim so round-trips are lossless.
type Opaque struct {
	Tag string
	Raw json.RawMessage
}

// Kind returns KindOpaque.
func (Opaque) Kind() SpatialKind { return KindOpaque }

// Payload pairs a spatial variant with an open metadata map. Metadata keys
// the core does not understand are carried through serialization untouched.
type Payload struct {
	Spatial  Spatial
	Metadata map[string]any
}

// ClonePayload deep-copies a payload. Opaque raw bytes and the metadata map
// are copied; the fixed-size variants are value types.
func ClonePayload(p Payload) Payload {
	cp := Payload{Spatial: p.Spatial}
	if o, ok := p.Spatial.(Opaque); ok {
		raw := make(json.RawMessage, len(o.Raw))
		copy(raw, o.Raw)
		cp.Spatial = Opaque{Tag: o.Tag, Raw: raw}
	}
	if p.Metadata != nil {
		cp.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			cp.Metadata[k] = v
		}
	}
	return cp
}

// SpatialDecoder turns the raw JSON body of a tagged spatial payload into a
// concrete variant.
type SpatialDecoder func(raw json.RawMessage) (Spatial, error)

// SpatialEncoder is implemented by payload variants outside the builtin
// union that render their own tagged wire form. The emitted object must
// carry a "tag" field matching the decoder registration.
type SpatialEncoder interface {
	Spatial
	EncodeSpatial() (json.RawMessage, error)
}

// SpatialRegistry maps spatial tags to decoders. The zero value is unusable;
// construct with NewSpatialRegistry, which seeds the builtin tags.
type SpatialRegistry struct {
	decoders map[string]SpatialDecoder
}

// NewSpatialRegistry returns a registry seeded with the builtin bbox,
// caption, and temporal decoders.
func NewSpatialRegistry() *SpatialRegistry {
	r := &SpatialRegistry{decoders: make(map[string]SpatialDecoder)}
	r.Register(string(KindBBox), func(raw json.RawMessage) (Spatial, error) {
		var b BBox
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	})
	r.Register(string(KindCaption), func(raw json.RawMessage) (Spatial, error) {
		var c Caption
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	})
	r.Register(string(KindTemporal), func(json.RawMessage) (Spatial, error) {
		return Temporal{}, nil
	})
	return r
}

// Register adds or replaces the decoder for a tag.
func (r *SpatialRegistry) Register(tag string, dec SpatialDecoder) {
	if tag == "" || dec == nil {
		return
	}
	r.decoders[tag] = dec
}

// Decode resolves a tagged spatial body. Unknown tags yield an Opaque
// variant unless strict is set, in which case decoding fails.
func (r *SpatialRegistry) Decode(tag string, raw json.RawMessage, strict bool) (Spatial, error) {
	if dec, ok := r.decoders[tag]; ok {
		sp, err := dec(raw)
		if err != nil {
			return nil, fmt.Errorf("decode spatial %q: %w", tag, err)
		}
		return sp, nil
	}
	if strict {
		return nil, fmt.Errorf("unknown spatial tag %q", tag)
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Opaque{Tag: tag, Raw: cp}, nil
}

// Tags returns the registered tags. Intended for diagnostics.
func (r *SpatialRegistry) Tags() []string {
	out := make([]string, 0, len(r.decoders))
	for tag := range r.decoders {
		out = append(out, tag)
	}
	return out
}
