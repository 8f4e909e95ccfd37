// Package redis provides a read-through cache for directory lookups, so that
// sending a message does not hit the users and listings tables on every call.
// Messages themselves are never cached: inbox and thread views must always
// reflect the current read state.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradepost/messaging/api"
)

// Directory caches lookups of another api.Directory in Redis.
type Directory struct {
	cli  *redis.Client
	next api.Directory
}

// Connect connects to the Redis server and pings the server to ensure the
// connection is working. Lookups missing the cache fall through to next.
func Connect(ctx context.Context, addr string, next api.Directory) (*Directory, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Directory{
		cli:  cli,
		next: next,
	}, nil
}

const (
	userPrefix    = "directory:user"
	listingPrefix = "directory:listing"
	ttl           = 5 * time.Minute
)

// GetUser returns the cached profile when present, otherwise asks the inner
// directory and caches the result. A missing user is never cached, so a
// freshly registered user is visible immediately. Cache writes are best
// effort.
func (d *Directory) GetUser(ctx context.Context, id string) (api.Participant, error) {
	key := fmt.Sprintf("%s:%s", userPrefix, id)

	var p participant
	if err := d.cli.HGetAll(ctx, key).Scan(&p); err == nil && p.ID != "" {
		return p.APIParticipant(), nil
	}

	out, err := d.next.GetUser(ctx, id)
	if err != nil {
		return api.Participant{}, err
	}

	pipe := d.cli.TxPipeline()
	pipe.HSet(ctx, key, participant{
		ID:        out.ID,
		Username:  out.Username,
		AvatarURL: out.AvatarURL,
	})
	pipe.Expire(ctx, key, ttl)
	_, _ = pipe.Exec(ctx)

	return out, nil
}

// ListingExists reports whether the listing exists, consulting the cache
// first. Only positive answers are cached.
func (d *Directory) ListingExists(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf("%s:%s", listingPrefix, id)

	if val, err := d.cli.Get(ctx, key).Result(); err == nil {
		return val == "1", nil
	}

	ok, err := d.next.ListingExists(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		_ = d.cli.Set(ctx, key, "1", ttl).Err()
	}
	return ok, nil
}
