// Package memory provides an in-memory implementation of the annotation
// persistence store used for tests and ephemeral environments. It is also
// the transactional engine the durable backends wrap.
package memory

import (
	"annotcore/pkg/interval"
	"context"
	"fmt"
	"sort"
	"sync"
)

// Compile-time contract assertion against the persistence interface.
var _ interval.PersistentStore = (*Store)(nil)

type (
	// VideoMeta aliases interval.VideoMeta for persistence operations.
	VideoMeta = interval.VideoMeta
	// Block aliases interval.Block.
	Block = interval.Block
	// Change aliases interval.Change captured in transactions.
	Change = interval.Change
	// Result aliases interval.Result summarizing rule evaluation.
	Result = interval.Result
	// RulesEngine aliases interval.RulesEngine.
	RulesEngine = interval.RulesEngine
	// Transaction aliases interval.Transaction.
	Transaction = interval.Transaction
	// TransactionView aliases interval.TransactionView.
	TransactionView = interval.TransactionView
)

type memoryState struct {
	videos map[int64]VideoMeta
	blocks map[int64]*Block
}

// Snapshot captures a point-in-time clone of the store state. Blocks
// serialize through the wire codec, so a snapshot is exactly the JSON
// interchange format keyed by video id.
type Snapshot struct {
	Videos map[int64]VideoMeta `json:"videos"`
	Blocks map[int64]*Block    `json:"blocks"`
}

func newMemoryState() memoryState {
	return memoryState{
		videos: make(map[int64]VideoMeta),
		blocks: make(map[int64]*Block),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for id, v := range s.videos {
		cloned.videos[id] = v
	}
	for id, b := range s.blocks {
		cloned.blocks[id] = b.Clone()
	}
	return cloned
}

// Store is the in-memory transactional store for videos and their
// annotation blocks. It has exactly one mutation authority at a time;
// readers always observe fully committed state.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
}

// NewStore constructs an in-memory store backed by the provided rules
// engine. A nil engine gets an empty one.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = interval.NewRulesEngine()
	}
	return &Store{state: newMemoryState(), engine: engine}
}

// RulesEngine returns the engine evaluated on every transaction.
func (s *Store) RulesEngine() *RulesEngine { return s.engine }

type transaction struct {
	state   memoryState
	changes []Change
}

type view struct {
	state *memoryState
}

// RunInTransaction executes fn against a transactional copy of the store
// state. Rules are evaluated over the recorded changes; a blocking
// violation aborts the commit with RuleViolationError. Readers never see a
// partially applied transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, interval.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of committed state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// ExportState clones the committed state into a serializable snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := s.state.clone()
	return Snapshot{Videos: cloned.videos, Blocks: cloned.blocks}
}

// ImportState replaces committed state with the snapshot contents.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for id, v := range snapshot.Videos {
		state.videos[id] = v
	}
	for id, b := range snapshot.Blocks {
		if b == nil {
			continue
		}
		state.blocks[id] = b.Clone()
	}
	s.state = state
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state to rules and callers.
func (tx *transaction) Snapshot() TransactionView {
	return view{state: &tx.state}
}

// CreateVideo registers video metadata within the transaction.
func (tx *transaction) CreateVideo(v VideoMeta) (VideoMeta, error) {
	if v.ID == 0 {
		return VideoMeta{}, fmt.Errorf("video id required")
	}
	if _, exists := tx.state.videos[v.ID]; exists {
		return VideoMeta{}, fmt.Errorf("video %d already exists", v.ID)
	}
	tx.state.videos[v.ID] = v
	tx.recordChange(Change{Entity: interval.EntityVideo, Action: interval.ChangeCreate, After: v})
	return v, nil
}

// UpdateVideo mutates video metadata using the provided mutator.
func (tx *transaction) UpdateVideo(id int64, mutator func(*VideoMeta) error) (VideoMeta, error) {
	current, ok := tx.state.videos[id]
	if !ok {
		return VideoMeta{}, fmt.Errorf("video %d not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return VideoMeta{}, err
	}
	current.ID = id
	tx.state.videos[id] = current
	tx.recordChange(Change{Entity: interval.EntityVideo, Action: interval.ChangeUpdate, Before: before, After: current})
	return current, nil
}

// DeleteVideo removes video metadata. The annotation block must be deleted
// first so a block never silently outlives its video.
func (tx *transaction) DeleteVideo(id int64) error {
	current, ok := tx.state.videos[id]
	if !ok {
		return fmt.Errorf("video %d not found", id)
	}
	if _, hasBlock := tx.state.blocks[id]; hasBlock {
		return fmt.Errorf("video %d still has an annotation block", id)
	}
	delete(tx.state.videos, id)
	tx.recordChange(Change{Entity: interval.EntityVideo, Action: interval.ChangeDelete, Before: current})
	return nil
}

// CreateBlock stores a new annotation block keyed by its video id.
func (tx *transaction) CreateBlock(b *Block) (*Block, error) {
	if b == nil || b.VideoID == 0 {
		return nil, fmt.Errorf("block video id required")
	}
	if _, exists := tx.state.blocks[b.VideoID]; exists {
		return nil, fmt.Errorf("block for video %d already exists", b.VideoID)
	}
	stored := b.Clone()
	tx.state.blocks[b.VideoID] = stored
	tx.recordChange(Change{Entity: interval.EntityBlock, Action: interval.ChangeCreate, After: stored.Clone()})
	return stored.Clone(), nil
}

// UpdateBlock mutates a block in place using the provided mutator. The
// mutator receives the transaction's private clone; an error restores the
// pre-mutation block.
func (tx *transaction) UpdateBlock(videoID int64, mutator func(*Block) error) (*Block, error) {
	current, ok := tx.state.blocks[videoID]
	if !ok {
		return nil, fmt.Errorf("block for video %d not found", videoID)
	}
	before := current.Clone()
	if err := mutator(current); err != nil {
		tx.state.blocks[videoID] = before
		return nil, err
	}
	current.VideoID = videoID
	tx.recordChange(Change{Entity: interval.EntityBlock, Action: interval.ChangeUpdate, Before: before, After: current.Clone()})
	return current.Clone(), nil
}

// DeleteBlock removes a block.
func (tx *transaction) DeleteBlock(videoID int64) error {
	current, ok := tx.state.blocks[videoID]
	if !ok {
		return fmt.Errorf("block for video %d not found", videoID)
	}
	delete(tx.state.blocks, videoID)
	tx.recordChange(Change{Entity: interval.EntityBlock, Action: interval.ChangeDelete, Before: current})
	return nil
}

// AddInterval inserts an interval into the named channel of a block,
// creating the channel when absent.
func (tx *transaction) AddInterval(videoID int64, channel string, iv *interval.Interval) error {
	block, ok := tx.state.blocks[videoID]
	if !ok {
		return fmt.Errorf("block for video %d not found", videoID)
	}
	if channel == "" {
		return fmt.Errorf("channel name required")
	}
	block.EnsureChannel(channel).Add(iv.Clone())
	tx.recordChange(Change{Entity: interval.EntityInterval, Action: interval.ChangeAdd, After: interval.IntervalChange{
		VideoID: videoID,
		Channel: channel,
		Bounds:  iv.Bounds(),
		Data:    iv.Data(),
	}})
	return nil
}

// RemoveInterval removes the interval with the given identity from a
// channel. Removing an absent interval is a defined no-op, matching the
// set-level contract the editing layer depends on.
func (tx *transaction) RemoveInterval(videoID int64, channel string, id uint64) error {
	block, ok := tx.state.blocks[videoID]
	if !ok {
		return fmt.Errorf("block for video %d not found", videoID)
	}
	set, ok := block.Channel(channel)
	if !ok {
		return fmt.Errorf("channel %q not found in block %d", channel, videoID)
	}
	for _, iv := range set.Slice() {
		if iv.ID() == id {
			set.Remove(iv)
			tx.recordChange(Change{Entity: interval.EntityInterval, Action: interval.ChangeRemove, Before: interval.IntervalChange{
				VideoID: videoID,
				Channel: channel,
				Bounds:  iv.Bounds(),
				Data:    iv.Data(),
			}})
			return nil
		}
	}
	return nil
}

// FindVideo retrieves video metadata from the transactional state.
func (tx *transaction) FindVideo(id int64) (VideoMeta, bool) {
	v, ok := tx.state.videos[id]
	return v, ok
}

// FindBlock retrieves a block clone from the transactional state.
func (tx *transaction) FindBlock(videoID int64) (*Block, bool) {
	b, ok := tx.state.blocks[videoID]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// ListVideos returns all videos in the snapshot ordered by id.
func (v view) ListVideos() []VideoMeta {
	out := make([]VideoMeta, 0, len(v.state.videos))
	for _, vm := range v.state.videos {
		out = append(out, vm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListBlocks returns clones of all blocks ordered by video id.
func (v view) ListBlocks() []*Block {
	out := make([]*Block, 0, len(v.state.blocks))
	for _, b := range v.state.blocks {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VideoID < out[j].VideoID })
	return out
}

// FindVideo retrieves video metadata from the snapshot.
func (v view) FindVideo(id int64) (VideoMeta, bool) {
	vm, ok := v.state.videos[id]
	return vm, ok
}

// FindBlock retrieves a block clone from the snapshot.
func (v view) FindBlock(videoID int64) (*Block, bool) {
	b, ok := v.state.blocks[videoID]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// GetVideo retrieves video metadata from committed state.
func (s *Store) GetVideo(id int64) (VideoMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.videos[id]
	return v, ok
}

// ListVideos returns all committed videos ordered by id.
func (s *Store) ListVideos() []VideoMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListVideos()
}

// GetBlock retrieves a clone of a committed block.
func (s *Store) GetBlock(videoID int64) (*Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.blocks[videoID]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

// ListBlocks returns clones of all committed blocks ordered by video id.
func (s *Store) ListBlocks() []*Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view{state: &s.state}.ListBlocks()
}
