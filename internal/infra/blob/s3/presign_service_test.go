package s3_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"annotcore/internal/blob"
	"annotcore/internal/core"
	s3store "annotcore/internal/infra/blob/s3"
	"annotcore/internal/infra/persistence/memory"
	"annotcore/pkg/interval"
)

// Exercises the full media path: asset upload through the service into the
// s3 driver, then presigned playback URL resolution.
func TestServicePresignsPlaybackURL(t *testing.T) {
	ctx := context.Background()
	engine := interval.NewRulesEngine()
	svc := core.NewService(memory.NewStore(engine), engine, core.WithBlobStore(s3store.NewMockForTests()))

	if _, _, err := svc.RegisterVideo(ctx, core.VideoMeta{ID: 4, FPS: 24, NumFrames: 240}); err != nil {
		t.Fatalf("register video: %v", err)
	}
	meta, info, err := svc.RegisterVideoAsset(ctx, 4, "session.mp4", strings.NewReader("frames"), blob.PutOptions{ContentType: "video/mp4"})
	if err != nil {
		t.Fatalf("register asset: %v", err)
	}
	if info.Key != "media/4/session.mp4" || meta.Path != info.Key {
		t.Fatalf("asset not linked to video: key=%q path=%q", info.Key, meta.Path)
	}

	url, err := svc.ResolveVideoURL(ctx, 4, 5*time.Minute)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, want := range []string{"mock.s3.local", "media/4/session.mp4", "X-Amz-Signature"} {
		if !strings.Contains(url, want) {
			t.Fatalf("presigned url missing %q: %s", want, url)
		}
	}
}
