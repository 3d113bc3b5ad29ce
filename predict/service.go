// Package predict serves churn predictions from artifacts loaded once at
// startup. The artifact snapshot is never modified; a reload swaps in a new
// one.
package predict

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"churnpredict/customer"
	"churnpredict/ml"
	"churnpredict/monitoring"
)

type Result struct {
	CustomerID  string          `json:"customer_id,omitempty"`
	Label       int             `json:"label"`
	Probability float64         `json:"probability"`
	Text        string          `json:"result"`
	ModelType   string          `json:"model_type"`
	Input       customer.Record `json:"input"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Store interface {
	SavePrediction(ctx context.Context, result Result) error
}

type Publisher interface {
	Publish(msgType monitoring.MessageType, payload interface{})
}

// Source locates the artifact files used by Reload and Watch.
type Source struct {
	ModelType   string
	ModelPath   string
	EncoderPath string
}

// snapshot pairs artifacts with the cache of predictions made from them.
// A reload replaces both together.
type snapshot struct {
	artifacts *ml.Artifacts
	cache     *lru.Cache[string, ml.Prediction]
}

type Service struct {
	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex

	source    Source
	store     Store
	publisher Publisher
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	now       func() time.Time
	cacheSize int
}

type Option func(*Service)

func WithSource(source Source) Option {
	return func(s *Service) { s.source = source }
}

func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

func WithPublisher(publisher Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(s *Service) { s.metrics = metrics }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCacheSize sets the number of cached feature vectors; 0 disables caching.
func WithCacheSize(size int) Option {
	return func(s *Service) { s.cacheSize = size }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(artifacts *ml.Artifacts, opts ...Option) (*Service, error) {
	if artifacts == nil || artifacts.Model == nil || artifacts.Encoders == nil {
		return nil, ml.ErrModelNotLoaded
	}
	s := &Service{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	snap, err := s.newSnapshot(artifacts)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	return s, nil
}

func (s *Service) newSnapshot(artifacts *ml.Artifacts) (*snapshot, error) {
	snap := &snapshot{artifacts: artifacts}
	if s.cacheSize > 0 {
		cache, err := lru.New[string, ml.Prediction](s.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		snap.cache = cache
	}
	return snap, nil
}

// Artifacts returns the artifacts currently in use.
func (s *Service) Artifacts() *ml.Artifacts {
	return s.current.Load().artifacts
}

// Predict runs the records through preprocessing and the model. Either every
// record gets a result or an error is returned.
func (s *Service) Predict(ctx context.Context, records []customer.Record) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("no customers to predict")
	}
	start := s.now()
	snap := s.current.Load()

	predictions, err := s.predictFrame(snap, customer.Frame(records))
	if err != nil {
		s.observeFailure(err)
		return nil, err
	}

	createdAt := s.now().UTC()
	results := make([]Result, len(records))
	for i, p := range predictions {
		results[i] = Result{
			CustomerID:  records[i].CustomerID,
			Label:       p.Label,
			Probability: p.Probability,
			Text:        ml.Label(p.Label),
			ModelType:   snap.artifacts.Model.Type(),
			Input:       records[i],
			CreatedAt:   createdAt,
		}
	}

	for _, result := range results {
		s.record(ctx, result)
	}
	if s.metrics != nil {
		s.metrics.ObserveLatency(s.now().Sub(start))
	}
	return results, nil
}

func (s *Service) predictFrame(snap *snapshot, frame *ml.Frame) ([]ml.Prediction, error) {
	model := snap.artifacts.Model
	processed, err := ml.Preprocess(frame, snap.artifacts.Encoders)
	if err != nil {
		return nil, err
	}
	vectors, err := ml.FeatureVectors(model, processed)
	if err != nil {
		return nil, err
	}

	predictions := make([]ml.Prediction, len(vectors))
	for i, vector := range vectors {
		key := cacheKey(vector)
		if snap.cache != nil {
			if cached, ok := snap.cache.Get(key); ok {
				predictions[i] = cached
				if s.metrics != nil {
					s.metrics.ObserveCacheHit()
				}
				continue
			}
		}
		label, probability, err := model.Predict(vector)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		predictions[i] = ml.Prediction{Label: label, Probability: probability}
		if snap.cache != nil {
			snap.cache.Add(key, predictions[i])
		}
	}
	return predictions, nil
}

// record persists and broadcasts a result. Neither step can fail the prediction.
func (s *Service) record(ctx context.Context, result Result) {
	if s.store != nil {
		if err := s.store.SavePrediction(ctx, result); err != nil {
			s.logger.Warn("save prediction failed", zap.String("customer_id", result.CustomerID), zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Publish(monitoring.PredictionEvent, result)
	}
	if s.metrics != nil {
		s.metrics.ObservePrediction(result.Text)
	}
	s.logger.Debug("prediction served",
		zap.String("customer_id", result.CustomerID),
		zap.Int("label", result.Label),
		zap.Float64("probability", result.Probability))
}

func (s *Service) observeFailure(err error) {
	reason := FailureReason(err)
	if s.metrics != nil {
		s.metrics.ObserveFailure(reason)
	}
	s.logger.Info("prediction failed", zap.String("reason", reason), zap.Error(err))
}

// FailureReason classifies a prediction error for metrics and API responses.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ml.ErrUnseenCategory):
		return "unseen_category"
	case errors.Is(err, ml.ErrNonNumeric):
		return "non_numeric"
	case errors.Is(err, ml.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ml.ErrModelNotLoaded):
		return "model_not_loaded"
	default:
		return "internal"
	}
}

func cacheKey(vector []float64) string {
	var b strings.Builder
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}
