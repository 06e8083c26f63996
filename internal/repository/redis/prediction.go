package redis

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"savewise/internal/domain/prediction"
	"savewise/pkg/errors"
)

// Name identifies the Redis backend
const Name = "redis"

// Compile-time check
var _ prediction.RemoteStore = (*PredictionRepository)(nil)

// PredictionRepository keeps records as JSON members of a Redis sorted set
// scored by their timestamp in microseconds
type PredictionRepository struct {
	client *redis.Client
	key    string
}

// NewPredictionRepository creates a repository over a single sorted-set key
func NewPredictionRepository(client *redis.Client, key string) *PredictionRepository {
	return &PredictionRepository{
		client: client,
		key:    key,
	}
}

func (r *PredictionRepository) Name() string {
	return Name
}

func score(rec *prediction.Record) float64 {
	return float64(rec.Timestamp.UnixMicro())
}

// Create adds rec under a fresh id
func (r *PredictionRepository) Create(ctx context.Context, rec *prediction.Record) (*prediction.Record, error) {
	if rec == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "redis: nil record")
	}

	stored := *rec
	stored.ID = uuid.New().String()

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal prediction")
	}

	n, err := r.client.ZAdd(ctx, r.key, redis.Z{Score: score(&stored), Member: data}).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to add prediction to %s", r.key)
	}
	if n == 0 {
		return nil, nil
	}

	return &stored, nil
}

// List returns every record, newest timestamp first
func (r *PredictionRepository) List(ctx context.Context) ([]prediction.Record, error) {
	items, err := r.client.ZRevRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read predictions from %s", r.key)
	}

	records := make([]prediction.Record, 0, len(items))
	for i, item := range items {
		var rec prediction.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal prediction at index %d", i)
		}
		records = append(records, rec)
	}

	return records, nil
}

// Latest returns the record with the newest timestamp or ErrNotFound
func (r *PredictionRepository) Latest(ctx context.Context) (*prediction.Record, error) {
	items, err := r.client.ZRevRange(ctx, r.key, 0, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read latest prediction from %s", r.key)
	}
	if len(items) == 0 {
		return nil, errors.ErrNotFound
	}

	var rec prediction.Record
	if err := json.Unmarshal([]byte(items[0]), &rec); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal latest prediction")
	}

	return &rec, nil
}

// Delete removes the record with the given id
func (r *PredictionRepository) Delete(ctx context.Context, id string) error {
	items, err := r.client.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return errors.Wrapf(err, "failed to read predictions from %s", r.key)
	}

	for _, item := range items {
		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal([]byte(item), &head) != nil || head.ID != id {
			continue
		}
		if err := r.client.ZRem(ctx, r.key, item).Err(); err != nil {
			return errors.Wrapf(err, "failed to delete prediction id=%s", id)
		}
		return nil
	}

	return errors.ErrNotFound
}

// Ping checks connectivity
func (r *PredictionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
