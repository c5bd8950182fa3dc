package cli

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"quizdash/internal/config"
	"quizdash/internal/infra/file"
	"quizdash/internal/infra/postgres"
	redisstore "quizdash/internal/infra/redis"
	"quizdash/internal/ledger"
)

// newScoreStore picks the ledger backend from config: Postgres when a URL is
// set, Redis when an address is set, the local JSON file otherwise.
func newScoreStore(ctx context.Context, cfg config.Config) (ledger.Store, func(), error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewScoreStore(pool), pool.Close, nil
	case cfg.Redis.Addr != "":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.TTL, 0)
		return redisstore.NewScoreStore(client, ttl), func() { _ = client.Close() }, nil
	default:
		return file.NewScoreStore(cfg.Ledger.File), func() {}, nil
	}
}
