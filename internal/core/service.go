package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"annotcore/internal/blob"
	"annotcore/pkg/interval"
)

// ErrNotFound is returned when an operation references an entity that does
// not exist.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrNoMediaStore is returned by media asset operations when the service
// was constructed without a blob store.
var ErrNoMediaStore = errors.New("media store not configured")

// Service exposes higher-level transactional operations over the
// annotation store: video registration, block lifecycle, interval editing,
// stabbing and window queries, and JSON import/export.
type Service struct {
	store    PersistentStore
	engine   *RulesEngine
	registry *interval.SpatialRegistry
	plugins  map[string]PluginMetadata
	media    blob.Store

	logger  Logger
	clock   Clock
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source, mostly for tests.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetricsRecorder wires a metrics sink for operation outcomes.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer wires a tracer around service operations.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder wires an audit sink for mutating operations.
func WithAuditRecorder(a AuditRecorder) ServiceOption {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithBlobStore attaches a media blob store, enabling the video asset
// operations.
func WithBlobStore(store blob.Store) ServiceOption {
	return func(s *Service) {
		if store != nil {
			s.media = store
		}
	}
}

// WithSpatialRegistry overrides the spatial payload registry used for
// import decoding.
func WithSpatialRegistry(r *interval.SpatialRegistry) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.registry = r
		}
	}
}

// NewService constructs a service over the supplied store. The engine must
// be the one the store evaluates transactions with; plugin rules are
// registered into it.
func NewService(store PersistentStore, engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = interval.NewRulesEngine()
	}
	s := &Service{
		store:    store,
		engine:   engine,
		registry: interval.NewSpatialRegistry(),
		plugins:  make(map[string]PluginMetadata),
		logger:   noopLogger{},
		clock:    systemClock{},
		metrics:  noopMetricsRecorder{},
		tracer:   noopTracer{},
		audit:    noopAuditRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying persistent store.
func (s *Service) Store() PersistentStore { return s.store }

// Registry returns the spatial payload registry used for decoding.
func (s *Service) Registry() *interval.SpatialRegistry { return s.registry }

// auditedEntities maps operation names to the entity they mutate. Unknown
// operations are not audited.
var auditedEntities = map[string]string{
	"register_video":       "video",
	"update_video":         "video",
	"delete_video":         "video",
	"create_block":         "block",
	"update_block":         "block",
	"delete_block":         "block",
	"add_interval":         "interval",
	"remove_interval":      "interval",
	"import_blocks":        "block",
	"register_video_asset": "video",
}

// run wraps an operation with tracing, metrics, logging and audit.
func (s *Service) run(ctx context.Context, operation, entityID string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	err := fn(ctx)
	duration := s.clock.Now().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.logger.Error(operation+" failed", "error", err, "entity_id", entityID)
	} else {
		s.logger.Debug(operation, "entity_id", entityID, "duration", duration)
	}
	if entity, ok := auditedEntities[operation]; ok {
		entry := AuditEntry{
			Operation: operation,
			Entity:    entity,
			EntityID:  entityID,
			Status:    AuditStatusSuccess,
			Duration:  duration,
			Timestamp: s.clock.Now(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	return err
}

// RegisterVideo persists new video metadata.
func (s *Service) RegisterVideo(ctx context.Context, meta VideoMeta) (VideoMeta, Result, error) {
	var created VideoMeta
	var res Result
	err := s.run(ctx, "register_video", fmt.Sprint(meta.ID), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateVideo(meta)
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateVideo mutates video metadata using the provided mutator.
func (s *Service) UpdateVideo(ctx context.Context, id int64, mutator func(*VideoMeta) error) (VideoMeta, Result, error) {
	var updated VideoMeta
	var res Result
	err := s.run(ctx, "update_video", fmt.Sprint(id), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateVideo(id, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteVideo removes video metadata. Its annotation block must be deleted
// first.
func (s *Service) DeleteVideo(ctx context.Context, id int64) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_video", fmt.Sprint(id), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteVideo(id)
		})
		return err
	})
	return res, err
}

// CreateBlock creates an empty annotation block for a registered video.
func (s *Service) CreateBlock(ctx context.Context, videoID int64) (*Block, Result, error) {
	var created *Block
	var res Result
	err := s.run(ctx, "create_block", fmt.Sprint(videoID), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindVideo(videoID); !ok {
				return ErrNotFound{Entity: "video", ID: fmt.Sprint(videoID)}
			}
			var txErr error
			created, txErr = tx.CreateBlock(&Block{VideoID: videoID})
			return txErr
		})
		return err
	})
	return created, res, err
}

// UpdateBlock mutates a block using the provided mutator.
func (s *Service) UpdateBlock(ctx context.Context, videoID int64, mutator func(*Block) error) (*Block, Result, error) {
	var updated *Block
	var res Result
	err := s.run(ctx, "update_block", fmt.Sprint(videoID), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateBlock(videoID, mutator)
			return txErr
		})
		return err
	})
	return updated, res, err
}

// DeleteBlock removes a video's annotation block.
func (s *Service) DeleteBlock(ctx context.Context, videoID int64) (Result, error) {
	var res Result
	err := s.run(ctx, "delete_block", fmt.Sprint(videoID), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteBlock(videoID)
		})
		return err
	})
	return res, err
}

// AddInterval creates a sealed interval from bounds and payload and inserts
// it into the named channel, returning the stored interval with its
// assigned identity.
func (s *Service) AddInterval(ctx context.Context, videoID int64, channel string, bounds interval.Bounds, data interval.Payload) (*interval.Interval, Result, error) {
	iv := interval.New(bounds, data)
	var res Result
	err := s.run(ctx, "add_interval", fmt.Sprint(iv.ID()), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.AddInterval(videoID, channel, iv)
		})
		return err
	})
	if err != nil {
		return nil, res, err
	}
	return iv, res, nil
}

// RemoveInterval removes the identified interval from a channel. Removing
// an absent interval is a no-op.
func (s *Service) RemoveInterval(ctx context.Context, videoID int64, channel string, id uint64) (Result, error) {
	var res Result
	err := s.run(ctx, "remove_interval", fmt.Sprint(id), func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.RemoveInterval(videoID, channel, id)
		})
		return err
	})
	return res, err
}

// AtTime returns the intervals in a channel that overlap the closed query
// range, boundary points included.
func (s *Service) AtTime(ctx context.Context, videoID int64, channel string, b interval.Bounds) ([]*interval.Interval, error) {
	var out []*interval.Interval
	err := s.run(ctx, "query_at_time", fmt.Sprint(videoID), func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			set, err := s.channelSet(v, videoID, channel)
			if err != nil {
				return err
			}
			out = set.AtTime(b).Slice()
			return nil
		})
	})
	return out, err
}

// Overlapping returns the intervals in a channel intersecting the half-open
// query window.
func (s *Service) Overlapping(ctx context.Context, videoID int64, channel string, w interval.Bounds) ([]*interval.Interval, error) {
	var out []*interval.Interval
	err := s.run(ctx, "query_overlapping", fmt.Sprint(videoID), func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			set, err := s.channelSet(v, videoID, channel)
			if err != nil {
				return err
			}
			out = set.Overlapping(w).Slice()
			return nil
		})
	})
	return out, err
}

func (s *Service) channelSet(v TransactionView, videoID int64, channel string) (*interval.Set, error) {
	block, ok := v.FindBlock(videoID)
	if !ok {
		return nil, ErrNotFound{Entity: "block", ID: fmt.Sprint(videoID)}
	}
	set, ok := block.Channel(channel)
	if !ok {
		return nil, ErrNotFound{Entity: "channel", ID: channel}
	}
	return set, nil
}

// ExportBlocks serializes all annotation blocks to JSON.
func (s *Service) ExportBlocks(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.run(ctx, "export_blocks", "", func(ctx context.Context) error {
		return s.store.View(ctx, func(v TransactionView) error {
			var encErr error
			data, encErr = interval.EncodeBlocks(v.ListBlocks())
			return encErr
		})
	})
	return data, err
}

// ImportBlocks decodes serialized blocks and stores them in one
// transaction. Videos referenced by a block are registered with minimal
// metadata when absent.
func (s *Service) ImportBlocks(ctx context.Context, data []byte, opts interval.DecodeOptions) ([]*Block, Result, error) {
	if opts.Registry == nil {
		opts.Registry = s.registry
	}
	decoder := interval.NewDecoder(opts)
	blocks, err := decoder.DecodeBlocks(data)
	if err != nil {
		return nil, Result{}, err
	}
	var stored []*Block
	var res Result
	err = s.run(ctx, "import_blocks", "", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			for _, block := range blocks {
				if _, ok := tx.FindVideo(block.VideoID); !ok {
					if _, txErr := tx.CreateVideo(VideoMeta{ID: block.VideoID}); txErr != nil {
						return txErr
					}
				}
				created, txErr := tx.CreateBlock(block)
				if txErr != nil {
					return txErr
				}
				stored = append(stored, created)
			}
			return nil
		})
		return err
	})
	if err != nil {
		return nil, res, err
	}
	return stored, res, nil
}

// mediaKey builds the blob key for a video asset. Assets live under a
// per-video prefix so List can enumerate everything belonging to one video.
func mediaKey(videoID int64, name string) string {
	return fmt.Sprintf("media/%d/%s", videoID, name)
}

// RegisterVideoAsset streams a media file into blob storage under the
// video's media prefix and records the blob key as the video's path. The
// blob write is create-only, so an already-annotated asset is never
// silently replaced.
func (s *Service) RegisterVideoAsset(ctx context.Context, videoID int64, name string, r io.Reader, opts blob.PutOptions) (VideoMeta, blob.Info, error) {
	var meta VideoMeta
	var info blob.Info
	err := s.run(ctx, "register_video_asset", fmt.Sprint(videoID), func(ctx context.Context) error {
		if s.media == nil {
			return ErrNoMediaStore
		}
		if name == "" {
			return fmt.Errorf("asset name cannot be empty")
		}
		if _, ok := s.store.GetVideo(videoID); !ok {
			return ErrNotFound{Entity: "video", ID: fmt.Sprint(videoID)}
		}
		var err error
		info, err = s.media.Put(ctx, mediaKey(videoID, name), r, opts)
		if err != nil {
			return err
		}
		_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			meta, txErr = tx.UpdateVideo(videoID, func(v *VideoMeta) error {
				v.Path = info.Key
				return nil
			})
			return txErr
		})
		return err
	})
	if err != nil {
		return VideoMeta{}, blob.Info{}, err
	}
	return meta, info, nil
}

// ResolveVideoURL returns a time-limited playback URL for the video's
// stored media. Drivers without pre-signing fall back to the blob's stable
// URL when one exists.
func (s *Service) ResolveVideoURL(ctx context.Context, videoID int64, expiry time.Duration) (string, error) {
	var url string
	err := s.run(ctx, "resolve_video_url", fmt.Sprint(videoID), func(ctx context.Context) error {
		if s.media == nil {
			return ErrNoMediaStore
		}
		meta, ok := s.store.GetVideo(videoID)
		if !ok {
			return ErrNotFound{Entity: "video", ID: fmt.Sprint(videoID)}
		}
		if meta.Path == "" {
			return fmt.Errorf("video %d has no stored media", videoID)
		}
		signed, err := s.media.PresignURL(ctx, meta.Path, blob.SignedURLOptions{Method: "GET", Expiry: expiry})
		if err == nil {
			url = signed
			return nil
		}
		if !errors.Is(err, blob.ErrUnsupported) {
			return err
		}
		info, headErr := s.media.Head(ctx, meta.Path)
		if headErr != nil {
			return headErr
		}
		if info.URL == "" {
			return err
		}
		url = info.URL
		return nil
	})
	return url, err
}

// MediaStore returns the configured blob store, or nil when media
// operations are disabled.
func (s *Service) MediaStore() blob.Store { return s.media }

// GetVideo reads committed video metadata.
func (s *Service) GetVideo(id int64) (VideoMeta, bool) { return s.store.GetVideo(id) }

// ListVideos reads all committed video metadata sorted by id.
func (s *Service) ListVideos() []VideoMeta { return s.store.ListVideos() }

// GetBlock reads a committed block clone.
func (s *Service) GetBlock(videoID int64) (*Block, bool) { return s.store.GetBlock(videoID) }

// ListBlocks reads all committed block clones sorted by video id.
func (s *Service) ListBlocks() []*Block { return s.store.ListBlocks() }

// InstallPlugin registers a plugin, wiring its rules into the active engine
// and its spatial decoders into the registry.
func (s *Service) InstallPlugin(plugin Plugin) (PluginMetadata, error) {
	if plugin == nil {
		return PluginMetadata{}, fmt.Errorf("plugin cannot be nil")
	}
	if _, ok := s.plugins[plugin.Name()]; ok {
		return PluginMetadata{}, fmt.Errorf("plugin %s already registered", plugin.Name())
	}

	registry := NewPluginRegistry()
	if err := plugin.Register(registry); err != nil {
		return PluginMetadata{}, err
	}
	for _, rule := range registry.Rules() {
		s.engine.Register(rule)
	}
	for tag, decoder := range registry.SpatialDecoders() {
		s.registry.Register(tag, decoder)
	}

	meta := PluginMetadata{
		Name:        plugin.Name(),
		Version:     plugin.Version(),
		Rules:       registry.RuleNames(),
		SpatialTags: registry.SpatialTags(),
	}
	s.plugins[plugin.Name()] = meta
	s.logger.Info("plugin installed", "name", meta.Name, "version", meta.Version)
	return meta, nil
}

// RegisteredPlugins returns metadata describing installed plugins.
func (s *Service) RegisteredPlugins() []PluginMetadata {
	out := make([]PluginMetadata, 0, len(s.plugins))
	for _, meta := range s.plugins {
		out = append(out, meta)
	}
	return out
}
