package interval

// HiddenChannelPrefix marks channels excluded from summary and overview
// rendering by convention. The core preserves such names verbatim through
// serialization and performs no filtering itself; honoring the convention
// is a rendering-layer concern.
const HiddenChannelPrefix = "_"

// NamedSet pairs a channel name with the interval set it renders. Within a
// block, names are typically unique per logical channel (captions,
// detections, labels, in-progress edits) but uniqueness is not enforced.
type NamedSet struct {
	Name string
	Set  *Set
}

// Block is the per-video bundle of named interval sets shown together.
type Block struct {
	VideoID  int64
	Channels []NamedSet
}

// Channel returns the first set registered under name. First match wins:
// observed usage always expects a single entry per logical channel, so a
// later duplicate never shadows the channel consumers already hold.
func (b *Block) Channel(name string) (*Set, bool) {
	for _, ns := range b.Channels {
		if ns.Name == name {
			return ns.Set, true
		}
	}
	return nil, false
}

// EnsureChannel returns the set registered under name, creating an empty
// channel at the end of the block when absent.
func (b *Block) EnsureChannel(name string) *Set {
	if s, ok := b.Channel(name); ok {
		return s
	}
	s := NewSet()
	b.Channels = append(b.Channels, NamedSet{Name: name, Set: s})
	return s
}

// Clone deep-copies the block, its channels, and their intervals,
// preserving interval identities.
func (b *Block) Clone() *Block {
	out := &Block{VideoID: b.VideoID, Channels: make([]NamedSet, len(b.Channels))}
	for i, ns := range b.Channels {
		out.Channels[i] = NamedSet{Name: ns.Name, Set: ns.Set.Clone()}
	}
	return out
}
