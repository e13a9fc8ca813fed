package interval

import (
	"encoding/json"
	"fmt"
)

// DecodeError reports structurally invalid wire input: malformed JSON,
// missing required fields, or reversed bounds. Decoding is all-or-nothing;
// a set is never partially populated.
type DecodeError struct {
	Context string
	Err     error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Context, e.Err)
}

func (e DecodeError) Unwrap() error { return e.Err }

// DecodeOptions configures wire decoding.
type DecodeOptions struct {
	// Strict rejects unrecognized spatial tags instead of preserving them
	// as opaque variants.
	Strict bool
	// Registry resolves spatial tags; nil selects the builtin registry.
	Registry *SpatialRegistry
}

// Decoder decodes the block wire format exchanged with the backend store.
type Decoder struct {
	opts DecodeOptions
}

// NewDecoder constructs a decoder with the given options.
func NewDecoder(opts DecodeOptions) *Decoder {
	if opts.Registry == nil {
		opts.Registry = NewSpatialRegistry()
	}
	return &Decoder{opts: opts}
}

var defaultDecoder = NewDecoder(DecodeOptions{})

type boundsWire struct {
	T1 *float64 `json:"t1"`
	T2 *float64 `json:"t2"`
}

type dataWire struct {
	Spatial  json.RawMessage `json:"spatial_type,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

type intervalWire struct {
	Bounds boundsWire `json:"bounds"`
	Data   *dataWire  `json:"data,omitempty"`
}

type namedSetWire struct {
	Name        string            `json:"name"`
	IntervalSet []json.RawMessage `json:"interval_set"`
}

type blockWire struct {
	VideoID      int64          `json:"video_id"`
	IntervalSets []namedSetWire `json:"interval_sets"`
}

type spatialTag struct {
	Tag string `json:"tag"`
}

// DecodeBlocks decodes the full wire payload: an array of per-video blocks.
func (d *Decoder) DecodeBlocks(raw []byte) ([]*Block, error) {
	var wires []blockWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, DecodeError{Context: "blocks", Err: err}
	}
	out := make([]*Block, 0, len(wires))
	for _, bw := range wires {
		block, err := d.decodeBlock(bw)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}
	return out, nil
}

// DecodeBlock decodes a single block object.
func (d *Decoder) DecodeBlock(raw []byte) (*Block, error) {
	var bw blockWire
	if err := json.Unmarshal(raw, &bw); err != nil {
		return nil, DecodeError{Context: "block", Err: err}
	}
	return d.decodeBlock(bw)
}

func (d *Decoder) decodeBlock(bw blockWire) (*Block, error) {
	block := &Block{VideoID: bw.VideoID, Channels: make([]NamedSet, 0, len(bw.IntervalSets))}
	for _, nsw := range bw.IntervalSets {
		set, err := d.decodeSet(nsw)
		if err != nil {
			return nil, err
		}
		block.Channels = append(block.Channels, NamedSet{Name: nsw.Name, Set: set})
	}
	return block, nil
}

// DecodeSet decodes one named interval-set entry ({"name", "interval_set"}).
func (d *Decoder) DecodeSet(raw []byte) (NamedSet, error) {
	var nsw namedSetWire
	if err := json.Unmarshal(raw, &nsw); err != nil {
		return NamedSet{}, DecodeError{Context: "interval set", Err: err}
	}
	set, err := d.decodeSet(nsw)
	if err != nil {
		return NamedSet{}, err
	}
	return NamedSet{Name: nsw.Name, Set: set}, nil
}

func (d *Decoder) decodeSet(nsw namedSetWire) (*Set, error) {
	items := make([]*Interval, 0, len(nsw.IntervalSet))
	for _, rawIV := range nsw.IntervalSet {
		iv, err := d.decodeInterval(nsw.Name, rawIV)
		if err != nil {
			return nil, err
		}
		items = append(items, iv)
	}
	return NewSet(items...), nil
}

func (d *Decoder) decodeInterval(channel string, raw json.RawMessage) (*Interval, error) {
	ctx := fmt.Sprintf("interval in channel %q", channel)
	var iw intervalWire
	if err := json.Unmarshal(raw, &iw); err != nil {
		return nil, DecodeError{Context: ctx, Err: err}
	}
	if iw.Bounds.T1 == nil || iw.Bounds.T2 == nil {
		return nil, DecodeError{Context: ctx, Err: fmt.Errorf("missing bounds fields")}
	}
	b, err := NewBounds(*iw.Bounds.T1, *iw.Bounds.T2)
	if err != nil {
		return nil, DecodeError{Context: ctx, Err: err}
	}
	payload := Payload{Spatial: Temporal{}}
	if iw.Data != nil {
		payload.Metadata = iw.Data.Metadata
		if len(iw.Data.Spatial) > 0 {
			var tag spatialTag
			if err := json.Unmarshal(iw.Data.Spatial, &tag); err != nil {
				return nil, DecodeError{Context: ctx, Err: err}
			}
			sp, err := d.opts.Registry.Decode(tag.Tag, iw.Data.Spatial, d.opts.Strict)
			if err != nil {
				return nil, DecodeError{Context: ctx, Err: err}
			}
			payload.Spatial = sp
		}
	}
	return New(b, payload), nil
}

// encodeSpatial renders the tagged union. Opaque payloads re-encode their
// original bytes verbatim so unknown tags survive a round-trip.
func encodeSpatial(sp Spatial) (json.RawMessage, error) {
	switch v := sp.(type) {
	case nil:
		return json.Marshal(spatialTag{Tag: string(KindTemporal)})
	case Opaque:
		out := make(json.RawMessage, len(v.Raw))
		copy(out, v.Raw)
		return out, nil
	case BBox:
		return json.Marshal(struct {
			Tag string `json:"tag"`
			BBox
		}{Tag: string(KindBBox), BBox: v})
	case Caption:
		return json.Marshal(struct {
			Tag string `json:"tag"`
			Caption
		}{Tag: string(KindCaption), Caption: v})
	case Temporal:
		return json.Marshal(spatialTag{Tag: string(KindTemporal)})
	default:
		if enc, ok := sp.(SpatialEncoder); ok {
			return enc.EncodeSpatial()
		}
		return nil, fmt.Errorf("unencodable spatial kind %q", sp.Kind())
	}
}

// MarshalJSON renders the interval in the wire format. Identity is a
// runtime concept and is not serialized.
func (iv *Interval) MarshalJSON() ([]byte, error) {
	sp, err := encodeSpatial(iv.data.Spatial)
	if err != nil {
		return nil, err
	}
	return json.Marshal(intervalWire{
		Bounds: boundsWire{T1: &iv.bounds.T1, T2: &iv.bounds.T2},
		Data:   &dataWire{Spatial: sp, Metadata: iv.data.Metadata},
	})
}

// MarshalJSON renders the set as the ordered interval_set array.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.items)
}

// UnmarshalJSON hydrates the set from an interval_set array using the
// builtin registry in tolerant mode. Stores rely on this for snapshot
// round-trips; callers needing strict or plugin-aware decoding go through
// a Decoder.
func (s *Set) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return DecodeError{Context: "interval set", Err: err}
	}
	items := make([]*Interval, 0, len(raws))
	for _, raw := range raws {
		iv, err := defaultDecoder.decodeInterval("", raw)
		if err != nil {
			return err
		}
		items = append(items, iv)
	}
	*s = *NewSet(items...)
	return nil
}

type namedSetAlias struct {
	Name string `json:"name"`
	Set  *Set   `json:"interval_set"`
}

// MarshalJSON renders the named set as {"name", "interval_set"}.
func (ns NamedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(namedSetAlias{Name: ns.Name, Set: ns.Set})
}

// UnmarshalJSON hydrates the named set, creating an empty set when the
// channel has no intervals.
func (ns *NamedSet) UnmarshalJSON(data []byte) error {
	var aux namedSetAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return DecodeError{Context: "interval set", Err: err}
	}
	if aux.Set == nil {
		aux.Set = NewSet()
	}
	ns.Name = aux.Name
	ns.Set = aux.Set
	return nil
}

type blockAlias struct {
	VideoID  int64      `json:"video_id"`
	Channels []NamedSet `json:"interval_sets"`
}

// MarshalJSON renders the block wire object.
func (b *Block) MarshalJSON() ([]byte, error) {
	channels := b.Channels
	if channels == nil {
		channels = []NamedSet{}
	}
	return json.Marshal(blockAlias{VideoID: b.VideoID, Channels: channels})
}

// UnmarshalJSON hydrates the block from the wire object.
func (b *Block) UnmarshalJSON(data []byte) error {
	var aux blockAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return DecodeError{Context: "block", Err: err}
	}
	b.VideoID = aux.VideoID
	b.Channels = aux.Channels
	return nil
}

// EncodeBlocks renders blocks in the wire format consumed by the store.
func EncodeBlocks(blocks []*Block) ([]byte, error) {
	if blocks == nil {
		blocks = []*Block{}
	}
	return json.Marshal(blocks)
}
