package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/flowplane-net/flowplane/pkg/util"
)

// requestTimeout bounds each command against a switch runtime. A command that
// exceeds it fails for that switch only, never aborting the whole session.
const requestTimeout = 5 * time.Second

const (
	tableKeyPrefix    = "TABLE"
	registerKeyPrefix = "REG"
)

// Client is the Redis-backed RuntimeClient. One persistent connection per
// switch; individual commands carry their own context.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a client for the runtime at addr.
func NewClient(addr string) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  requestTimeout,
			ReadTimeout:  requestTimeout,
			WriteTimeout: requestTimeout,
		}),
	}
}

// Connect tests the connection.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", util.ErrNotConnected, err)
	}
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func tableKey(table string, match []string) string {
	return tableKeyPrefix + "|" + table + "|" + strings.Join(match, ",")
}

func registerKey(name string) string {
	return registerKeyPrefix + "|" + name
}

// ClearTable removes every entry of the named table.
func (c *Client) ClearTable(ctx context.Context, table string) error {
	pattern := tableKeyPrefix + "|" + table + "|*"
	keys, err := scanKeys(ctx, c.rdb, pattern, 100)
	if err != nil {
		return fmt.Errorf("clearing table %s: %w", table, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clearing table %s: %w", table, err)
	}
	return nil
}

// AddEntry installs one table entry. All fields are written in a single HSET
// so the runtime observes the entry atomically.
func (c *Client) AddEntry(ctx context.Context, table, action string, match, params []string) error {
	key := tableKey(table, match)
	fields := []interface{}{
		"action", action,
		"params", strings.Join(params, ","),
	}
	if err := c.rdb.HSet(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("adding %s entry %v: %w", table, match, err)
	}
	return nil
}

// WriteRegister sets one register cell.
func (c *Client) WriteRegister(ctx context.Context, name string, index int, value uint64) error {
	err := c.rdb.HSet(ctx, registerKey(name), strconv.Itoa(index), strconv.FormatUint(value, 10)).Err()
	if err != nil {
		return fmt.Errorf("writing register %s[%d]: %w", name, index, err)
	}
	return nil
}

// ReadRegister reads one register cell. Absent cells read as zero. A stored
// value that does not parse as an unsigned integer reads as zero with an
// ErrStaleReading-wrapped error, so callers never mistake garbage for data.
func (c *Client) ReadRegister(ctx context.Context, name string, index int) (uint64, error) {
	raw, err := c.rdb.HGet(ctx, registerKey(name), strconv.Itoa(index)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading register %s[%d]: %w", name, index, err)
	}
	val, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("register %s[%d] holds malformed value %q: %w",
			name, index, raw, util.ErrStaleReading)
	}
	return val, nil
}

// ResetRegister zeroes the named register by deleting its cells; absent
// cells read as zero.
func (c *Client) ResetRegister(ctx context.Context, name string) error {
	if err := c.rdb.Del(ctx, registerKey(name)).Err(); err != nil {
		return fmt.Errorf("resetting register %s: %w", name, err)
	}
	return nil
}

// scanKeys collects all keys matching pattern using cursor-based SCAN
// (non-blocking, unlike KEYS *).
func scanKeys(ctx context.Context, rdb *redis.Client, pattern string, count int64) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := rdb.Scan(ctx, cursor, pattern, count).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
