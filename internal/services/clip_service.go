package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/johnwmail/flashclip/internal/config"
	"github.com/johnwmail/flashclip/internal/ident"
	"github.com/johnwmail/flashclip/internal/metrics"
	"github.com/johnwmail/flashclip/internal/models"
	"github.com/johnwmail/flashclip/internal/storage"
)

var (
	// ErrEmptyID is returned when a retrieval carries no id
	ErrEmptyID = errors.New("missing id")

	// ErrNotFound covers absent, expired and already consumed clips
	ErrNotFound = errors.New("clip not found")

	// ErrTTLOutOfRange is returned when a ttl falls outside the configured bounds
	ErrTTLOutOfRange = errors.New("ttl out of range")
)

// ClipService handles clip business logic
type ClipService struct {
	store   storage.Store
	ids     ident.Generator
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes a ClipService
type Option func(*ClipService)

// WithMetrics records service events
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ClipService) { s.metrics = m }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *ClipService) { s.now = now }
}

// NewClipService creates a new clip service
func NewClipService(store storage.Store, ids ident.Generator, cfg *config.Config, logger *slog.Logger, opts ...Option) *ClipService {
	s := &ClipService{
		store:  store,
		ids:    ids,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClipResponse represents the response from creating a clip
type CreateClipResponse struct {
	ID string `json:"id"`
}

// Create normalizes req, assigns a fresh id and persists the clip
func (s *ClipService) Create(ctx context.Context, req *models.CreateRequest) (*CreateClipResponse, error) {
	params, err := req.Normalize()
	if err != nil {
		return nil, err
	}
	if err := s.checkTTL(params.TTL); err != nil {
		return nil, err
	}

	id, err := s.ids.Generate()
	if err != nil {
		s.metrics.StoreError("id")
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	clip := &models.Clip{
		Content:   params.Content,
		ReadOnce:  params.ReadOnce,
		Lang:      params.Lang,
		CreatedAt: s.now().UnixMilli(),
		TTL:       params.TTL,
	}
	value, err := clip.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode clip: %w", err)
	}

	opCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Put(opCtx, id, value, clip.Lifetime()); err != nil {
		s.metrics.StoreError("put")
		return nil, fmt.Errorf("failed to store clip: %w", err)
	}

	s.metrics.ClipCreated()
	s.logger.Debug("Clip created",
		"id", ident.Redact(id),
		"read_once", clip.ReadOnce,
		"ttl", clip.TTL,
		"size", len(clip.Content))

	return &CreateClipResponse{ID: id}, nil
}

// Retrieve returns the clip for id. A read-once clip is consumed by the
// call that returns it.
func (s *ClipService) Retrieve(ctx context.Context, id string) (*models.Clip, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	opCtx, cancel := s.storeContext(ctx)
	defer cancel()

	value, err := s.store.Get(opCtx, id)
	if err != nil {
		s.metrics.StoreError("get")
		return nil, fmt.Errorf("failed to retrieve clip: %w", err)
	}
	if value == nil {
		s.metrics.ClipNotFound()
		return nil, ErrNotFound
	}

	clip, err := models.DecodeClip(value, s.now())
	if err != nil {
		return nil, fmt.Errorf("stored clip %s is corrupt: %w", ident.Redact(id), err)
	}

	if clip.ReadOnce {
		clip, err = s.consume(opCtx, id, clip)
		if err != nil {
			return nil, err
		}
	}

	s.metrics.ClipRetrieved(clip.ReadOnce)
	return clip, nil
}

// consume deletes a read-once clip. Stores that can take atomically
// decide which concurrent reader wins; the others see ErrNotFound.
func (s *ClipService) consume(ctx context.Context, id string, clip *models.Clip) (*models.Clip, error) {
	taker, ok := s.store.(storage.Taker)
	if !ok {
		if err := s.store.Delete(ctx, id); err != nil {
			s.metrics.StoreError("delete")
			return nil, fmt.Errorf("failed to consume clip: %w", err)
		}
		s.metrics.ClipConsumed()
		return clip, nil
	}

	value, err := taker.Take(ctx, id)
	if err != nil {
		s.metrics.StoreError("take")
		return nil, fmt.Errorf("failed to consume clip: %w", err)
	}
	if value == nil {
		s.logger.Debug("Read-once clip claimed by another reader", "id", ident.Redact(id))
		s.metrics.ClipNotFound()
		return nil, ErrNotFound
	}

	taken, err := models.DecodeClip(value, s.now())
	if err != nil {
		return nil, fmt.Errorf("stored clip %s is corrupt: %w", ident.Redact(id), err)
	}
	s.metrics.ClipConsumed()
	return taken, nil
}

func (s *ClipService) checkTTL(ttl int64) error {
	lifetime := time.Duration(ttl) * time.Second
	if s.config.MinTTL > 0 && lifetime < s.config.MinTTL {
		return fmt.Errorf("%w: %ds is below the minimum %v", ErrTTLOutOfRange, ttl, s.config.MinTTL)
	}
	if s.config.MaxTTL > 0 && lifetime > s.config.MaxTTL {
		return fmt.Errorf("%w: %ds is above the maximum %v", ErrTTLOutOfRange, ttl, s.config.MaxTTL)
	}
	return nil
}

func (s *ClipService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.StoreTimeout)
}
