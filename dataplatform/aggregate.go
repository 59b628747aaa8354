// Package dataplatform answers aggregate questions over key/value documents grouped in datasets.
// A query narrows a dataset with key=value filters, then counts the values of one key over the
// documents that passed every filter.
package dataplatform

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// AggregateRequest is the body of POST /api/data-platform/aggregate.
type AggregateRequest struct {
	Dataset   string            `json:"dataset" validate:"required,max=100" example:"survey-2024"`
	GroupBy   string            `json:"groupBy" validate:"required,max=100" example:"country"`
	Filters   map[string]string `json:"filters" validate:"max=20,dive,keys,required,max=100,endkeys,max=500"`
	Threshold int               `json:"threshold" validate:"gte=0" example:"5"`
	Limit     int               `json:"limit" validate:"gte=0,lte=1000" example:"100"`
}

// Bucket is one group-by value with the number of matching documents carrying it.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// AggregateResponse lists the buckets that met the threshold.
type AggregateResponse struct {
	Dataset string   `json:"dataset"`
	GroupBy string   `json:"groupBy"`
	Matched *int     `json:"matched,omitempty"` // documents that passed the filters; absent without filters
	Buckets []Bucket `json:"buckets"`
}

// Dataset summarizes an imported dataset.
type Dataset struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

func (r AggregateRequest) normalized() AggregateRequest {
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	if r.Filters == nil {
		r.Filters = map[string]string{}
	}
	return r
}

// filterKeys returns the filter keys in a stable order.
func (r AggregateRequest) filterKeys() []string {
	keys := make([]string, 0, len(r.Filters))
	for k := range r.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CacheKey identifies the normalized request. encoding/json writes map keys sorted,
// so equal requests hash equally.
func (r AggregateRequest) CacheKey() string {
	b, _ := json.Marshal(r.normalized())
	sum := sha256.Sum256(b)
	return "dataplatform:aggregate:" + hex.EncodeToString(sum[:])
}

// Intersect returns the ids present in every set, sorted. No sets yields nil.
func Intersect(sets ...[]string) []string {
	if len(sets) == 0 {
		return nil
	}
	// start from the smallest set
	sets = append([][]string(nil), sets...)
	sort.SliceStable(sets, func(i, j int) bool { return len(sets[i]) < len(sets[j]) })
	current := make(map[string]struct{}, len(sets[0]))
	for _, id := range sets[0] {
		current[id] = struct{}{}
	}
	for _, set := range sets[1:] {
		if len(current) == 0 {
			break
		}
		next := make(map[string]struct{}, len(current))
		for _, id := range set {
			if _, ok := current[id]; ok {
				next[id] = struct{}{}
			}
		}
		current = next
	}
	out := make([]string, 0, len(current))
	for id := range current {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Buckets drops counts below threshold, orders by count descending then value ascending,
// and keeps at most limit buckets.
func Buckets(counts map[string]int, threshold, limit int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for v, c := range counts {
		if c < threshold {
			continue
		}
		out = append(out, Bucket{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
