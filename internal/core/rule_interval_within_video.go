package core

import (
	"context"
	"fmt"

	"annotcore/pkg/interval"
)

// NewIntervalWithinVideoRule returns the default in-transaction rule
// blocking intervals that extend past the end of their video. Videos with
// unknown duration are skipped.
func NewIntervalWithinVideoRule() Rule {
	return intervalWithinVideoRule{}
}

type intervalWithinVideoRule struct{}

func (intervalWithinVideoRule) Name() string { return "interval_within_video" }

func (intervalWithinVideoRule) Evaluate(_ context.Context, view interval.RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, block := range view.ListBlocks() {
		video, ok := view.FindVideo(block.VideoID)
		if !ok {
			continue
		}
		duration := video.Duration()
		if duration <= 0 {
			continue
		}
		for _, channel := range block.Channels {
			for _, iv := range channel.Set.Slice() {
				if iv.Bounds().T2 > duration {
					res.Violations = append(res.Violations, interval.Violation{
						Rule:     "interval_within_video",
						Severity: interval.SeverityBlock,
						Message:  fmt.Sprintf("interval [%g, %g] in channel %q ends past video %d duration %.3fs", iv.Bounds().T1, iv.Bounds().T2, channel.Name, block.VideoID, duration),
						Entity:   interval.EntityInterval,
						VideoID:  block.VideoID,
						Channel:  channel.Name,
					})
				}
			}
		}
	}
	return res, nil
}

// NewCaptionTextRule returns the default rule warning about caption
// payloads with empty text.
func NewCaptionTextRule() Rule {
	return captionTextRule{}
}

type captionTextRule struct{}

func (captionTextRule) Name() string { return "caption_text" }

func (captionTextRule) Evaluate(_ context.Context, view interval.RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, block := range view.ListBlocks() {
		for _, channel := range block.Channels {
			for _, iv := range channel.Set.Slice() {
				caption, ok := iv.Data().Spatial.(interval.Caption)
				if !ok || caption.Text != "" {
					continue
				}
				res.Violations = append(res.Violations, interval.Violation{
					Rule:     "caption_text",
					Severity: interval.SeverityWarn,
					Message:  fmt.Sprintf("caption interval [%g, %g] in channel %q has empty text", iv.Bounds().T1, iv.Bounds().T2, channel.Name),
					Entity:   interval.EntityInterval,
					VideoID:  block.VideoID,
					Channel:  channel.Name,
				})
			}
		}
	}
	return res, nil
}

// NewDefaultRulesEngine returns an engine seeded with the builtin rules.
func NewDefaultRulesEngine() *RulesEngine {
	engine := interval.NewRulesEngine()
	engine.Register(NewIntervalWithinVideoRule())
	engine.Register(NewCaptionTextRule())
	return engine
}
