package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const notifyChannel = "storefront_storage"

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Listener opens the dedicated connection LISTEN needs.
type Listener func(ctx context.Context) (*pgx.Conn, error)

// DSNListener connects with pgx.Connect for every Watch call.
func DSNListener(dsn string) Listener {
	return func(ctx context.Context) (*pgx.Conn, error) {
		return pgx.Connect(ctx, dsn)
	}
}

// PostgresStore keeps values in the local_storage table and announces writes
// with NOTIFY.
type PostgresStore struct {
	pool      DBPool
	listen    Listener
	namespace string
	origin    string
	logger    *slog.Logger
}

type pgChange struct {
	Namespace string  `json:"namespace"`
	Origin    string  `json:"origin"`
	Key       string  `json:"key"`
	Value     *string `json:"value"`
}

func NewPostgresStore(pool DBPool, listen Listener, namespace string, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresStore{
		pool:      pool,
		listen:    listen,
		namespace: namespace,
		origin:    uuid.NewString(),
		logger:    logger,
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	row := s.pool.QueryRow(ctx, `SELECT value FROM local_storage WHERE namespace=$1 AND key=$2`, s.namespace, key)
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return v, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO local_storage(namespace, key, value)
		VALUES($1, $2, $3)
		ON CONFLICT (namespace, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
	`, s.namespace, key, value)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return s.notify(ctx, key, &value)
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM local_storage WHERE namespace=$1 AND key=$2`, s.namespace, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}
	return s.notify(ctx, key, nil)
}

func (s *PostgresStore) notify(ctx context.Context, key string, value *string) error {
	body, err := json.Marshal(pgChange{Namespace: s.namespace, Origin: s.origin, Key: key, Value: value})
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(body)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (s *PostgresStore) Watch(ctx context.Context) (<-chan Change, error) {
	if s.listen == nil {
		return nil, errors.New("postgres store has no listener")
	}
	conn, err := s.listen(ctx)
	if err != nil {
		return nil, fmt.Errorf("listen connect: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen: %w", err)
	}

	out := make(chan Change, watchBuffer)
	go func() {
		defer close(out)
		defer conn.Close(context.Background())
		for {
			n, err := conn.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Error("Storage listener stopped", "error", err)
				}
				return
			}
			c, ok := s.decode(n.Payload)
			if !ok {
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// decode turns a notification payload into a Change, dropping our own writes
// and writes for other namespaces.
func (s *PostgresStore) decode(payload string) (Change, bool) {
	var pc pgChange
	if err := json.Unmarshal([]byte(payload), &pc); err != nil {
		s.logger.Warn("Ignoring malformed storage notification", "error", err)
		return Change{}, false
	}
	if pc.Namespace != s.namespace || pc.Origin == s.origin {
		return Change{}, false
	}
	return Change{Key: pc.Key, NewValue: pc.Value}, true
}

func (s *PostgresStore) Close() error { return nil }
