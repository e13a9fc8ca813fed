package interval

import "context"

// Transaction exposes the operations a persistence implementation must
// support within an atomic scope. Mutations record Change entries for rule
// evaluation; the store commits only when no blocking violation remains.
type Transaction interface {
	Snapshot() TransactionView
	CreateVideo(VideoMeta) (VideoMeta, error)
	UpdateVideo(id int64, mutator func(*VideoMeta) error) (VideoMeta, error)
	DeleteVideo(id int64) error
	CreateBlock(*Block) (*Block, error)
	UpdateBlock(videoID int64, mutator func(*Block) error) (*Block, error)
	DeleteBlock(videoID int64) error
	AddInterval(videoID int64, channel string, iv *Interval) error
	RemoveInterval(videoID int64, channel string, id uint64) error
	FindVideo(id int64) (VideoMeta, bool)
	FindBlock(videoID int64) (*Block, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetVideo(id int64) (VideoMeta, bool)
	ListVideos() []VideoMeta
	GetBlock(videoID int64) (*Block, bool)
	ListBlocks() []*Block
}
