package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/domain"
)

const rosterKeyPrefix = "org:roster:"

// RosterCache keeps department rosters in redis for a short TTL. Join/leave
// invalidate the affected departments, so a cached roster is never older than
// the TTL nor staler than the last membership change it observed.
type RosterCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRosterCache builds the cache. A nil client disables caching.
func NewRosterCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RosterCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached roster for the department, or (nil, false) on miss.
func (c *RosterCache) Get(ctx context.Context, deptID int64) ([]domain.Staff, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, rosterKey(deptID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("roster cache get failed", zap.Int64("dept_id", deptID), zap.Error(err))
		}
		return nil, false
	}
	var roster []domain.Staff
	if err := json.Unmarshal(raw, &roster); err != nil {
		c.logger.Warn("roster cache decode failed", zap.Int64("dept_id", deptID), zap.Error(err))
		return nil, false
	}
	return roster, true
}

// Set stores the roster for the department.
func (c *RosterCache) Set(ctx context.Context, deptID int64, roster []domain.Staff) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(roster)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, rosterKey(deptID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("roster cache set failed", zap.Int64("dept_id", deptID), zap.Error(err))
	}
}

// Invalidate drops the cached roster for the department.
func (c *RosterCache) Invalidate(ctx context.Context, deptID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, rosterKey(deptID)).Err(); err != nil {
		c.logger.Warn("roster cache invalidate failed", zap.Int64("dept_id", deptID), zap.Error(err))
	}
}

func rosterKey(deptID int64) string {
	return rosterKeyPrefix + strconv.FormatInt(deptID, 10)
}
