package dataplatform

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/cache"
	"github.com/user/cookbook-go/logging"
)

// Service runs aggregate queries, caching their results.
type Service struct {
	store Store
	cache cache.Cache

	hits   prometheus.Counter
	misses prometheus.Counter
}

// NewService creates a Service. A nil cache disables caching.
func NewService(store Store, c cache.Cache) *Service {
	return &Service{
		store: store,
		cache: c,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cookbook", Subsystem: "dataplatform", Name: "cache_hits_total",
			Help: "Aggregate queries answered from the cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cookbook", Subsystem: "dataplatform", Name: "cache_misses_total",
			Help: "Aggregate queries computed from the database.",
		}),
	}
}

// Collectors returns the cache counters for registration.
func (s *Service) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.hits, s.misses}
}

// Aggregate intersects the documents matching every filter and counts the groupBy values over them.
// An empty intersection returns no buckets without running the group-by query.
func (s *Service) Aggregate(ctx context.Context, req AggregateRequest) (*AggregateResponse, error) {
	req = req.normalized()
	req.Dataset = strings.TrimSpace(req.Dataset)
	req.GroupBy = strings.TrimSpace(req.GroupBy)
	if req.Dataset == "" || req.GroupBy == "" {
		return nil, apperror.NewValidationError("dataset and groupBy are required", []string{"dataset", "groupBy"}, nil)
	}

	key := req.CacheKey()
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err != nil {
			logging.FromContext(ctx).Warn(ctx, "aggregate cache read failed", zap.Error(err))
		} else if ok {
			var cached AggregateResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				s.hits.Inc()
				return &cached, nil
			}
		}
	}
	s.misses.Inc()

	res, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		raw, err := json.Marshal(res)
		if err == nil {
			err = s.cache.Set(ctx, key, raw)
		}
		if err != nil {
			logging.FromContext(ctx).Warn(ctx, "aggregate cache write failed", zap.Error(err))
		}
	}
	return res, nil
}

func (s *Service) compute(ctx context.Context, req AggregateRequest) (*AggregateResponse, error) {
	res := &AggregateResponse{Dataset: req.Dataset, GroupBy: req.GroupBy, Buckets: []Bucket{}}

	var ids []string
	if len(req.Filters) > 0 {
		sets := make([][]string, 0, len(req.Filters))
		for _, k := range req.filterKeys() {
			set, err := s.store.DocumentIDs(ctx, req.Dataset, k, req.Filters[k])
			if err != nil {
				return nil, err
			}
			if len(set) == 0 {
				zero := 0
				res.Matched = &zero
				return res, nil
			}
			sets = append(sets, set)
		}
		ids = Intersect(sets...)
		matched := len(ids)
		res.Matched = &matched
		if matched == 0 {
			return res, nil
		}
	}

	counts, err := s.store.CountValues(ctx, req.Dataset, req.GroupBy, ids)
	if err != nil {
		return nil, err
	}
	res.Buckets = Buckets(counts, req.Threshold, req.Limit)
	return res, nil
}

// Datasets lists the imported datasets.
func (s *Service) Datasets(ctx context.Context) ([]Dataset, error) {
	return s.store.Datasets(ctx)
}

// Keys lists the keys used in a dataset. An unknown dataset is NotFound.
func (s *Service) Keys(ctx context.Context, dataset string) ([]string, error) {
	keys, err := s.store.Keys(ctx, dataset)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, apperror.NewNotFoundError("dataset not found", nil)
	}
	return keys, nil
}
