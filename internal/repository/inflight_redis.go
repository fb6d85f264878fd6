package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/redis/go-redis/v9"
)

const inflightKeyPrefix = "gwm:inflight:"

var (
	acquireScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'action_id', ARGV[1], 'job_id', '', 'create_time', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

	setJobScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'action_id') == ARGV[1] then
	redis.call('HSET', KEYS[1], 'job_id', ARGV[2])
	return 1
end
return 0
`)

	releaseScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'action_id') == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)
)

// NewRedisInflightRepository keeps the index in redis hashes. Entries expire after ttl so a
// crashed dispatcher cannot hold a target forever; ttl <= 0 disables expiry.
func NewRedisInflightRepository(r *Repository, ttl time.Duration) InflightRepository {
	return &redisInflightRepository{Repository: r, ttl: ttl}
}

type redisInflightRepository struct {
	*Repository
	ttl time.Duration
}

func inflightKey(clusterID int64, target string) string {
	return fmt.Sprintf("%s%d:%s", inflightKeyPrefix, clusterID, target)
}

func (r *redisInflightRepository) Acquire(ctx context.Context, entry *model.InflightJob) (bool, error) {
	if entry.CreateTime.IsZero() {
		entry.CreateTime = time.Now()
	}
	n, err := acquireScript.Run(ctx, r.rdb,
		[]string{inflightKey(entry.ClusterID, entry.Target)},
		entry.ActionId, entry.CreateTime.Unix(), r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *redisInflightRepository) Get(ctx context.Context, clusterID int64, target string) (*model.InflightJob, error) {
	fields, err := r.rdb.HGetAll(ctx, inflightKey(clusterID, target)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && len(fields) == 0) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry := &model.InflightJob{
		ClusterID: clusterID,
		Target:    target,
		ActionId:  fields["action_id"],
		JobId:     fields["job_id"],
	}
	if sec, err := strconv.ParseInt(fields["create_time"], 10, 64); err == nil {
		entry.CreateTime = time.Unix(sec, 0)
	}
	return entry, nil
}

func (r *redisInflightRepository) SetJobID(ctx context.Context, clusterID int64, target, actionId, jobId string) error {
	return setJobScript.Run(ctx, r.rdb, []string{inflightKey(clusterID, target)}, actionId, jobId).Err()
}

func (r *redisInflightRepository) Release(ctx context.Context, clusterID int64, target, actionId string) error {
	return releaseScript.Run(ctx, r.rdb, []string{inflightKey(clusterID, target)}, actionId).Err()
}
