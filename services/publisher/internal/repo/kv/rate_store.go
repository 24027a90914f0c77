package kv

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"social-publisher/services/publisher/internal/entity"

	"github.com/redis/go-redis/v9"
)

// reserveScript checks cooldown, then the hourly and daily windows, and on success adds the member to the
// publish log and moves the last-publish mark forward. It returns {verdict, count, previous last or -1}.
var reserveScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local previous = -1
local last = redis.call('GET', KEYS[2])
if last then
	previous = tonumber(last)
end
local cooldown = tonumber(ARGV[2])
if cooldown > 0 and previous >= 0 and now - previous < cooldown then
	return {1, 0, previous}
end
local hourly = tonumber(ARGV[3])
if hourly > 0 then
	local n = redis.call('ZCOUNT', KEYS[1], ARGV[7], '+inf')
	if n >= hourly then
		return {2, n, previous}
	end
end
local daily = tonumber(ARGV[4])
if daily > 0 then
	local n = redis.call('ZCOUNT', KEYS[1], ARGV[8], '+inf')
	if n >= daily then
		return {3, n, previous}
	end
end
redis.call('ZADD', KEYS[1], ARGV[1], ARGV[5])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[9])
redis.call('PEXPIRE', KEYS[1], ARGV[6])
if now > previous then
	redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[6])
end
return {0, 0, previous}
`)

// cancelScript drops a reserved member and restores the last-publish mark if nothing moved it since.
var cancelScript = redis.NewScript(`
redis.call('ZREM', KEYS[1], ARGV[1])
if redis.call('GET', KEYS[2]) == ARGV[2] then
	if ARGV[3] == '' then
		redis.call('DEL', KEYS[2])
	else
		redis.call('SET', KEYS[2], ARGV[3], 'PX', ARGV[4])
	end
end
return 1
`)

// RateLimits is the budget Reserve enforces. Zero fields are not checked.
type RateLimits struct {
	Cooldown  time.Duration
	HourlyCap int
	DailyCap  int
}

type RateVerdict string

const (
	RateReserved        RateVerdict = "reserved"
	RateVerdictCooldown RateVerdict = "cooldown"
	RateVerdictHourly   RateVerdict = "hourly"
	RateVerdictDaily    RateVerdict = "daily"
)

// RateReservation is the outcome of Reserve. Count is the window count that denied it,
// Last the publish that started an active cooldown.
type RateReservation struct {
	Verdict RateVerdict
	Member  string
	Count   int64
	Last    time.Time

	reservedAt int64
	previous   int64
}

// RateStore keeps a sliding log of publishes per platform.
type RateStore interface {
	// Reserve checks limits and takes a slot for member in one atomic step.
	Reserve(ctx context.Context, platform entity.Platform, member string, at time.Time, limits RateLimits, retention time.Duration) (*RateReservation, error)
	// Cancel gives back a slot taken by Reserve.
	Cancel(ctx context.Context, platform entity.Platform, reservation *RateReservation, retention time.Duration) error
	Record(ctx context.Context, platform entity.Platform, member string, at time.Time, retention time.Duration) error
	CountSince(ctx context.Context, platform entity.Platform, since time.Time) (int64, error)
	LastPublish(ctx context.Context, platform entity.Platform) (time.Time, bool, error)
}

type rateStore struct {
	client *redis.Client
}

func NewRateStore(client *redis.Client) RateStore {
	return &rateStore{client: client}
}

func ratePostsKey(platform entity.Platform) string {
	return fmt.Sprintf("ratecap:%s:posts", platform)
}

func rateLastKey(platform entity.Platform) string {
	return fmt.Sprintf("ratecap:%s:last", platform)
}

func (s *rateStore) Reserve(ctx context.Context, platform entity.Platform, member string, at time.Time, limits RateLimits, retention time.Duration) (*RateReservation, error) {
	now := at.UnixMilli()
	reply, err := reserveScript.Run(ctx, s.client,
		[]string{ratePostsKey(platform), rateLastKey(platform)},
		now,
		limits.Cooldown.Milliseconds(),
		limits.HourlyCap,
		limits.DailyCap,
		member,
		retention.Milliseconds(),
		at.Add(-time.Hour).UnixMilli(),
		at.Add(-24*time.Hour).UnixMilli(),
		at.Add(-retention).UnixMilli(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to reserve publish slot for %s: %w", platform, err)
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("failed to reserve publish slot for %s: unexpected reply %v", platform, reply)
	}

	reservation := &RateReservation{
		Member:     member,
		Count:      reply[1],
		reservedAt: now,
		previous:   reply[2],
	}
	switch reply[0] {
	case 0:
		reservation.Verdict = RateReserved
	case 1:
		reservation.Verdict = RateVerdictCooldown
		reservation.Last = time.UnixMilli(reply[2]).UTC()
	case 2:
		reservation.Verdict = RateVerdictHourly
	default:
		reservation.Verdict = RateVerdictDaily
	}
	return reservation, nil
}

func (s *rateStore) Cancel(ctx context.Context, platform entity.Platform, reservation *RateReservation, retention time.Duration) error {
	if reservation == nil || reservation.Verdict != RateReserved {
		return nil
	}
	previous := ""
	if reservation.previous >= 0 {
		previous = strconv.FormatInt(reservation.previous, 10)
	}
	err := cancelScript.Run(ctx, s.client,
		[]string{ratePostsKey(platform), rateLastKey(platform)},
		reservation.Member,
		strconv.FormatInt(reservation.reservedAt, 10),
		previous,
		retention.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to cancel publish slot for %s: %w", platform, err)
	}
	return nil
}

func (s *rateStore) Record(ctx context.Context, platform entity.Platform, member string, at time.Time, retention time.Duration) error {
	key := ratePostsKey(platform)
	score := float64(at.UnixMilli())

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(at.Add(-retention).UnixMilli(), 10))
	pipe.Expire(ctx, key, retention)
	pipe.Set(ctx, rateLastKey(platform), at.UnixMilli(), retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record publish for %s: %w", platform, err)
	}
	return nil
}

func (s *rateStore) CountSince(ctx context.Context, platform entity.Platform, since time.Time) (int64, error) {
	count, err := s.client.ZCount(ctx, ratePostsKey(platform), strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count publishes for %s: %w", platform, err)
	}
	return count, nil
}

func (s *rateStore) LastPublish(ctx context.Context, platform entity.Platform) (time.Time, bool, error) {
	millis, err := s.client.Get(ctx, rateLastKey(platform)).Int64()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last publish for %s: %w", platform, err)
	}
	return time.UnixMilli(millis).UTC(), true, nil
}
