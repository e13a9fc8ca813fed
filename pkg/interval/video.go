package interval

// VideoMeta describes the video a block annotates: where the asset lives,
// its frame geometry, and enough timing information to derive duration.
type VideoMeta struct {
	ID        int64   `json:"id"`
	Path      string  `json:"path"`
	FPS       float64 `json:"fps"`
	NumFrames int     `json:"num_frames"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// Duration returns the video length in seconds, or zero when timing
// metadata is incomplete.
func (v VideoMeta) Duration() float64 {
	if v.FPS <= 0 || v.NumFrames <= 0 {
		return 0
	}
	return float64(v.NumFrames) / v.FPS
}
