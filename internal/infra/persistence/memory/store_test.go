package memory

import (
	"context"
	"testing"

	"annotcore/pkg/interval"
)

func testInterval(t *testing.T, t1, t2 float64) *interval.Interval {
	t.Helper()
	b, err := interval.NewBounds(t1, t2)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	return interval.New(b, interval.Payload{Spatial: interval.Caption{Text: "cap"}})
}

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, ok := tx.FindVideo(99); ok {
			t.Fatalf("expected missing video lookup")
		}
		if _, err := tx.CreateVideo(VideoMeta{ID: 1, Path: "videos/1.mp4", FPS: 30, NumFrames: 900}); err != nil {
			return err
		}
		if _, err := tx.CreateBlock(&Block{VideoID: 1}); err != nil {
			return err
		}
		snap := tx.Snapshot()
		if len(snap.ListVideos()) != 1 || len(snap.ListBlocks()) != 1 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	if len(store.ListVideos()) != 1 {
		t.Fatalf("expected persisted video")
	}

	snapshot := store.ExportState()
	store.ImportState(Snapshot{})
	if len(store.ListVideos()) != 0 || len(store.ListBlocks()) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if len(store.ListVideos()) != 1 || len(store.ListBlocks()) != 1 {
		t.Fatalf("expected restored state")
	}
	if store.RulesEngine() == nil {
		t.Fatalf("expected rules engine")
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block-everything" }

func (blockingRule) Evaluate(ctx context.Context, view interval.RuleView, changes []Change) (Result, error) {
	return Result{Violations: []interval.Violation{{Rule: "block-everything", Severity: interval.SeverityBlock}}}, nil
}

func TestStoreRuleViolationAbortsCommit(t *testing.T) {
	engine := interval.NewRulesEngine()
	engine.Register(blockingRule{})
	store := NewStore(engine)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, e := tx.CreateVideo(VideoMeta{ID: 1})
		return e
	})
	if err == nil {
		t.Fatalf("expected rule violation error")
	}
	if len(store.ListVideos()) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

func TestAddAndRemoveInterval(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	iv := testInterval(t, 2, 5)

	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.CreateVideo(VideoMeta{ID: 7, FPS: 30, NumFrames: 9000}); err != nil {
			return err
		}
		if _, err := tx.CreateBlock(&Block{VideoID: 7}); err != nil {
			return err
		}
		return tx.AddInterval(7, "captions", iv)
	})
	if err != nil {
		t.Fatalf("add interval: %v", err)
	}

	block, ok := store.GetBlock(7)
	if !ok {
		t.Fatalf("expected block")
	}
	set, ok := block.Channel("captions")
	if !ok || set.Len() != 1 {
		t.Fatalf("expected one caption interval")
	}
	if set.Arbitrary().ID() != iv.ID() {
		t.Fatalf("stored interval must preserve identity")
	}

	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.RemoveInterval(7, "captions", iv.ID())
	})
	if err != nil {
		t.Fatalf("remove interval: %v", err)
	}
	block, _ = store.GetBlock(7)
	set, _ = block.Channel("captions")
	if set.Len() != 0 {
		t.Fatalf("interval must be removed")
	}

	// Removing an absent interval is a defined no-op.
	if _, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.RemoveInterval(7, "captions", iv.ID())
	}); err != nil {
		t.Fatalf("remove of absent interval must be a no-op: %v", err)
	}
}

func TestTransactionErrorsRollBack(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.CreateVideo(VideoMeta{ID: 3})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []struct {
		name string
		fn   func(tx Transaction) error
	}{
		{"duplicate video", func(tx Transaction) error { _, err := tx.CreateVideo(VideoMeta{ID: 3}); return err }},
		{"zero video id", func(tx Transaction) error { _, err := tx.CreateVideo(VideoMeta{}); return err }},
		{"missing video update", func(tx Transaction) error {
			_, err := tx.UpdateVideo(99, func(*VideoMeta) error { return nil })
			return err
		}},
		{"missing block update", func(tx Transaction) error {
			_, err := tx.UpdateBlock(99, func(*Block) error { return nil })
			return err
		}},
		{"missing block delete", func(tx Transaction) error { return tx.DeleteBlock(99) }},
		{"interval into missing block", func(tx Transaction) error {
			return tx.AddInterval(99, "captions", testInterval(t, 0, 1))
		}},
		{"empty channel name", func(tx Transaction) error {
			if _, err := tx.CreateBlock(&Block{VideoID: 3}); err != nil {
				return err
			}
			return tx.AddInterval(3, "", testInterval(t, 0, 1))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.RunInTransaction(ctx, tc.fn); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	if _, ok := store.GetBlock(3); ok {
		t.Fatalf("failed transaction must not leak partial state")
	}
}

func TestDeleteVideoGuardsBlock(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.CreateVideo(VideoMeta{ID: 4}); err != nil {
			return err
		}
		_, err := tx.CreateBlock(&Block{VideoID: 4})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteVideo(4)
	}); err == nil {
		t.Fatalf("deleting a video with a live block must fail")
	}

	if _, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if err := tx.DeleteBlock(4); err != nil {
			return err
		}
		return tx.DeleteVideo(4)
	}); err != nil {
		t.Fatalf("delete in order: %v", err)
	}
}

func TestViewSeesStableSnapshot(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		if _, err := tx.CreateVideo(VideoMeta{ID: 1}); err != nil {
			return err
		}
		_, err := tx.CreateBlock(&Block{VideoID: 1})
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	err = store.View(ctx, func(v TransactionView) error {
		block, ok := v.FindBlock(1)
		if !ok {
			t.Fatalf("expected block in view")
		}
		// Mutating the returned clone must not affect committed state.
		block.EnsureChannel("scratch").Add(testInterval(t, 0, 1))
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	block, _ := store.GetBlock(1)
	if _, ok := block.Channel("scratch"); ok {
		t.Fatalf("view clones must not alias committed state")
	}
}
