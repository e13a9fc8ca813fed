package keypoints

import (
	"context"
	"testing"

	"annotcore/internal/core"
	"annotcore/internal/infra/persistence/memory"
	"annotcore/pkg/interval"
)

func newService(t *testing.T) *core.Service {
	t.Helper()
	engine := interval.NewRulesEngine()
	return core.NewService(memory.NewStore(engine), engine)
}

func mustBounds(t *testing.T, t1, t2 float64) interval.Bounds {
	t.Helper()
	b, err := interval.NewBounds(t1, t2)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	return b
}

func TestPluginRegistersDecoderAndRule(t *testing.T) {
	svc := newService(t)
	meta, err := svc.InstallPlugin(New())
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if meta.Name != "keypoints" || meta.Version != "0.1.0" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if len(meta.SpatialTags) != 1 || meta.SpatialTags[0] != Tag {
		t.Fatalf("expected keypoints tag registered, got %v", meta.SpatialTags)
	}
	if len(meta.Rules) != 1 || meta.Rules[0] != "keypoint_bounds" {
		t.Fatalf("expected keypoint_bounds rule, got %v", meta.Rules)
	}
}

func TestKeypointsImportDecodesTypedPayload(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	if _, err := svc.InstallPlugin(New()); err != nil {
		t.Fatalf("install: %v", err)
	}

	wire := []byte(`[{"video_id":5,"interval_sets":[{"name":"pose","interval_set":[
		{"bounds":{"t1":0,"t2":2},"data":{"spatial_type":{"tag":"keypoints","points":[{"x":0.5,"y":0.5,"name":"nose"}]}}}
	]}]}]`)

	blocks, _, err := svc.ImportBlocks(ctx, wire, interval.DecodeOptions{Strict: true})
	if err != nil {
		t.Fatalf("strict import with installed decoder: %v", err)
	}
	set, ok := blocks[0].Channel("pose")
	if !ok || set.Len() != 1 {
		t.Fatalf("pose channel missing")
	}
	kp, ok := set.Arbitrary().Data().Spatial.(Keypoints)
	if !ok {
		t.Fatalf("expected typed keypoints payload, got %#v", set.Arbitrary().Data().Spatial)
	}
	if len(kp.Points) != 1 || kp.Points[0].Name != "nose" {
		t.Fatalf("unexpected points %+v", kp.Points)
	}
}

func TestKeypointBoundsRuleWarns(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	if _, err := svc.InstallPlugin(New()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, _, err := svc.RegisterVideo(ctx, core.VideoMeta{ID: 5}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.CreateBlock(ctx, 5); err != nil {
		t.Fatalf("create block: %v", err)
	}

	payload := interval.Payload{Spatial: Keypoints{Points: []Point{{X: 1.4, Y: 0.2, Name: "wrist"}}}}
	_, res, err := svc.AddInterval(ctx, 5, "pose", mustBounds(t, 0, 1), payload)
	if err != nil {
		t.Fatalf("out-of-frame joint must warn, not block: %v", err)
	}
	found := false
	for _, v := range res.Violations {
		if v.Rule == "keypoint_bounds" && v.Severity == interval.SeverityWarn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected keypoint_bounds warning, got %+v", res.Violations)
	}

	// In-frame joints commit without error.
	payload = interval.Payload{Spatial: Keypoints{Points: []Point{{X: 0.3, Y: 0.8}}}}
	if _, _, err = svc.AddInterval(ctx, 5, "pose", mustBounds(t, 2, 3), payload); err != nil {
		t.Fatalf("add: %v", err)
	}
}

func TestKeypointsEncodeRoundTrip(t *testing.T) {
	kp := Keypoints{Points: []Point{{X: 0.1, Y: 0.9, Name: "ankle"}}}
	iv := interval.New(mustBounds(t, 1, 2), interval.Payload{Spatial: kp})
	set := interval.NewSet(iv)
	block := &interval.Block{VideoID: 9, Channels: []interval.NamedSet{{Name: "pose", Set: set}}}

	data, err := interval.EncodeBlocks([]*interval.Block{block})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	registry := interval.NewSpatialRegistry()
	New().registerDecoderInto(registry)
	decoder := interval.NewDecoder(interval.DecodeOptions{Strict: true, Registry: registry})
	blocks, err := decoder.DecodeBlocks(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := blocks[0].Channels[0].Set.Arbitrary().Data().Spatial.(Keypoints)
	if !ok || len(got.Points) != 1 || got.Points[0].Name != "ankle" {
		t.Fatalf("round trip lost payload: %#v", blocks[0].Channels[0].Set.Arbitrary().Data().Spatial)
	}
}
