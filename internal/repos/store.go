package repos

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

const redisNamespace = "mercacomp:"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the Store for driver ("memory", "sqlite" or "redis"). The closer
// releases the underlying connection.
func Open(ctx context.Context, driver, dsn, redisAddr string) (*Hub, io.Closer, error) {
	switch driver {
	case "", "memory":
		return NewHub(NewMemoryKV()), nopCloser{}, nil
	case "sqlite":
		db, err := OpenDB(dsn)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open sqlite")
		}
		return NewHub(NewSQLiteKV(db)), db, nil
	case "redis":
		client, err := OpenRedis(ctx, redisAddr)
		if err != nil {
			return nil, nil, err
		}
		return NewHub(NewRedisKV(client, redisNamespace)), client, nil
	default:
		return nil, nil, errors.Errorf("unknown store driver %q", driver)
	}
}
