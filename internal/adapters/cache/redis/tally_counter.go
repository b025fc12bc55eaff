package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vncsmyrnk/waterpoll/internal/core/domain"
	"github.com/vncsmyrnk/waterpoll/internal/core/ports"
)

const DefaultKey = "waterpoll:tally"

// Connect accepts either a redis:// URL or a bare host:port and pings the
// server before returning.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}
	return rdb, nil
}

// TallyCounter stores the IDs of counted votes in one set per choice, so
// re-adding a vote is a no-op and the counts are the set cardinalities.
// A separate marker key records that a recount has replayed the log into
// the sets; it disappears along with the sets when Redis loses its data.
type TallyCounter struct {
	client *redis.Client
	key    string
}

func NewTallyCounter(client *redis.Client, key string) ports.TallyCounter {
	if key == "" {
		key = DefaultKey
	}
	return &TallyCounter{client: client, key: key}
}

func (c *TallyCounter) choiceKey(choice domain.Choice) string {
	return c.key + ":" + choice.String()
}

func (c *TallyCounter) syncedKey() string {
	return c.key + ":synced"
}

func (c *TallyCounter) Add(ctx context.Context, votes ...*domain.Vote) error {
	if len(votes) == 0 {
		return nil
	}
	for _, v := range votes {
		if v.Choice != domain.ChoiceYes && v.Choice != domain.ChoiceNo {
			return fmt.Errorf("cannot count vote %s with choice %q", v.ID, v.Choice)
		}
	}

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range votes {
			pipe.SAdd(ctx, c.choiceKey(v.Choice), v.ID.String())
		}
		return nil
	})
	return err
}

func (c *TallyCounter) Load(ctx context.Context) (domain.Tally, bool, error) {
	var yes, no, synced *redis.IntCmd
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		yes = pipe.SCard(ctx, c.choiceKey(domain.ChoiceYes))
		no = pipe.SCard(ctx, c.choiceKey(domain.ChoiceNo))
		synced = pipe.Exists(ctx, c.syncedKey())
		return nil
	})
	if err != nil {
		return domain.Tally{}, false, err
	}
	return domain.Tally{Yes: yes.Val(), No: no.Val()}, synced.Val() == 1, nil
}

func (c *TallyCounter) MarkSynced(ctx context.Context) error {
	return c.client.Set(ctx, c.syncedKey(), time.Now().UTC().Format(time.RFC3339), 0).Err()
}
