// Package dataplane is the thin direct-Redis adapter: given a database
// profile it opens a go-redis connection and exposes a handful of
// convenience operations, plus the write-command classifier an external
// MCP adapter uses to enforce read-only mode. No CLI command calls this
// package.
package dataplane

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"

	"redisctl/internal/config"
	"redisctl/internal/errs"
)

// Client wraps a single go-redis connection for one database profile.
type Client struct {
	rdb *redis.Client
}

// New opens a connection for the given database credentials. Connection is
// lazy in go-redis (the first command dials), matching the rest of the core
// never eagerly round-tripping at construction time.
func New(creds config.DatabaseCredentials) *Client {
	opts := &redis.Options{
		Addr:     addr(creds),
		Username: creds.Username,
		Password: creds.Password,
		DB:       creds.DB,
	}
	if creds.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &Client{rdb: redis.NewClient(opts)}
}

func addr(creds config.DatabaseCredentials) string {
	port := creds.Port
	if port == 0 {
		port = 6379
	}
	return creds.Host + ":" + strconv.Itoa(port)
}

// Close releases the pooled connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping round-trips a PING.
func (c *Client) Ping(ctx context.Context) (string, error) {
	v, err := c.rdb.Ping(ctx).Result()
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "ping failed", err)
	}
	return v, nil
}

// Info returns the INFO section(s) named, or everything if none given.
func (c *Client) Info(ctx context.Context, sections ...string) (string, error) {
	v, err := c.rdb.Info(ctx, sections...).Result()
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "info failed", err)
	}
	return v, nil
}

// DBSize returns the key count of the selected database.
func (c *Client) DBSize(ctx context.Context) (int64, error) {
	v, err := c.rdb.DBSize(ctx).Result()
	if err != nil {
		return 0, errs.Wrap(errs.KindTransport, "dbsize failed", err)
	}
	return v, nil
}

// Scan loops SCAN in batches of 100 until the cursor returns to zero or want
// keys have been collected (want <= 0 means no limit).
func (c *Client) Scan(ctx context.Context, pattern string, want int) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, errs.Wrap(errs.KindTransport, "scan failed", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
		if want > 0 && len(keys) >= want {
			break
		}
	}
	if want > 0 && len(keys) > want {
		keys = keys[:want]
	}
	return keys, nil
}

// KeyType reports the Redis type of key ("string", "hash", "none", ...).
func (c *Client) KeyType(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Type(ctx, key).Result()
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "type failed", err)
	}
	return v, nil
}

// SlowLog returns the last n slow-log entries as go-redis SlowLog records.
func (c *Client) SlowLog(ctx context.Context, n int64) ([]redis.SlowLog, error) {
	v, err := c.rdb.SlowLogGet(ctx, n).Result()
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "slowlog failed", err)
	}
	return v, nil
}

// ModuleList lists loaded Redis modules.
func (c *Client) ModuleList(ctx context.Context) ([]map[string]any, error) {
	v, err := c.rdb.Do(ctx, "MODULE", "LIST").Result()
	if err != nil {
		return nil, errs.Wrap(errs.KindTransport, "module list failed", err)
	}
	items, _ := v.([]any)
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		pairs, ok := item.([]any)
		if !ok {
			continue
		}
		m := map[string]any{}
		for i := 0; i+1 < len(pairs); i += 2 {
			key, _ := pairs[i].(string)
			m[key] = pairs[i+1]
		}
		out = append(out, m)
	}
	return out, nil
}

// JSONValue converts a RESP value to the §4.12 JSON mapping: non-UTF8 binary
// strings become {"type":"binary","base64":"…"} rather than being dropped or
// mangled.
func JSONValue(v any) any {
	switch t := v.(type) {
	case string:
		if utf8.ValidString(t) {
			return t
		}
		return map[string]any{"type": "binary", "base64": base64.StdEncoding.EncodeToString([]byte(t))}
	case []byte:
		return JSONValue(string(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = JSONValue(e)
		}
		return out
	default:
		return v
	}
}

// writeCommands classifies RESP command names as mutating. An external MCP
// adapter consults this to refuse write commands in read-only mode. Matching
// is on the command token alone, ignoring any arguments that follow it.
var writeCommands = map[string]bool{
	"SET": true, "SETNX": true, "SETEX": true, "PSETEX": true, "APPEND": true,
	"DEL": true, "UNLINK": true, "EXPIRE": true, "PEXPIRE": true, "EXPIREAT": true,
	"PERSIST": true, "RENAME": true, "RENAMENX": true, "MOVE": true, "COPY": true,
	"INCR": true, "INCRBY": true, "INCRBYFLOAT": true, "DECR": true, "DECRBY": true,
	"GETSET": true, "GETDEL": true, "MSET": true, "MSETNX": true,
	"HSET": true, "HSETNX": true, "HMSET": true, "HDEL": true, "HINCRBY": true, "HINCRBYFLOAT": true,
	"LPUSH": true, "RPUSH": true, "LPUSHX": true, "RPUSHX": true, "LPOP": true, "RPOP": true,
	"LSET": true, "LREM": true, "LTRIM": true, "LINSERT": true, "RPOPLPUSH": true, "LMOVE": true,
	"SADD": true, "SREM": true, "SPOP": true, "SMOVE": true, "SDIFFSTORE": true, "SINTERSTORE": true, "SUNIONSTORE": true,
	"ZADD": true, "ZREM": true, "ZINCRBY": true, "ZPOPMIN": true, "ZPOPMAX": true, "ZREMRANGEBYSCORE": true, "ZREMRANGEBYRANK": true, "ZREMRANGEBYLEX": true,
	"XADD": true, "XDEL": true, "XTRIM": true, "XSETID": true, "XGROUP": true, "XACK": true, "XCLAIM": true,
	"SETBIT": true, "BITOP": true, "GETEX": true,
	"FLUSHDB": true, "FLUSHALL": true, "RESTORE": true, "MIGRATE": true,
	"GEOADD": true, "PFADD": true, "PFMERGE": true,
}

// IsWriteCommand reports whether name (the first whitespace-delimited token
// of a RESP command line, case-insensitive) mutates data.
func IsWriteCommand(name string) bool {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return false
	}
	return writeCommands[strings.ToUpper(fields[0])]
}

