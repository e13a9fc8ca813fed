package interval

import "testing"

func TestChannelFirstMatchWins(t *testing.T) {
	first := NewSet(New(Bounds{T1: 0, T2: 1}, Payload{}))
	shadow := NewSet()
	block := &Block{VideoID: 1, Channels: []NamedSet{
		{Name: "captions", Set: first},
		{Name: "captions", Set: shadow},
	}}
	got, ok := block.Channel("captions")
	if !ok || got != first {
		t.Fatalf("duplicate names must resolve to the first registration")
	}
	if _, ok := block.Channel("missing"); ok {
		t.Fatalf("missing channel lookup must report absence")
	}
}

func TestEnsureChannel(t *testing.T) {
	block := &Block{VideoID: 1}
	s := block.EnsureChannel("detections")
	if s == nil || len(block.Channels) != 1 {
		t.Fatalf("ensure must create the channel")
	}
	if again := block.EnsureChannel("detections"); again != s {
		t.Fatalf("ensure must return the existing channel")
	}
}

func TestBlockCloneIsDeep(t *testing.T) {
	iv := New(Bounds{T1: 1, T2: 2}, Payload{Metadata: map[string]any{"k": 1}})
	block := &Block{VideoID: 3, Channels: []NamedSet{{Name: "a", Set: NewSet(iv)}}}
	cp := block.Clone()
	set, _ := cp.Channel("a")
	if set.Arbitrary().ID() != iv.ID() {
		t.Fatalf("clone must preserve interval identity")
	}
	set.Add(New(Bounds{T1: 5, T2: 6}, Payload{}))
	orig, _ := block.Channel("a")
	if orig.Len() != 1 {
		t.Fatalf("clone must not alias the original sets")
	}
}

func TestVideoMetaDuration(t *testing.T) {
	v := VideoMeta{ID: 1, FPS: 59.94, NumFrames: 20696}
	if d := v.Duration(); d < 345 || d > 346 {
		t.Fatalf("duration = %v, want ~345.3", d)
	}
	if (VideoMeta{}).Duration() != 0 {
		t.Fatalf("incomplete metadata must yield zero duration")
	}
}
