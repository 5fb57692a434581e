// Package redisstore keeps links in Redis: one hash per code plus a sorted
// set ordered by creation time. Every mutation is a single Lua script.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tinylink/internal/app/links"
	"tinylink/internal/domain"
)

const (
	fieldID            = "id"
	fieldCode          = "code"
	fieldTargetURL     = "target_url"
	fieldClicks        = "clicks"
	fieldLastClickedAt = "last_clicked_at"
	fieldCreatedAt     = "created_at"
)

type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

type Option func(*Store)

// WithKeyPrefix namespaces every key, e.g. "tinylink:".
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func New(rdb redis.UniversalClient, opts ...Option) *Store {
	s := &Store{rdb: rdb}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ links.Store = (*Store)(nil)

// Open parses a redis:// URL and checks the server answers.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return rdb, nil
}

func (s *Store) linkKey(code string) string { return s.prefix + "link:" + code }
func (s *Store) indexKey() string          { return s.prefix + "links:by_created" }
func (s *Store) seqKey() string            { return s.prefix + "links:seq" }

func (s *Store) TryCreate(ctx context.Context, in domain.NewLink) (domain.Link, error) {
	createdAt := in.CreatedAt.UTC().Truncate(time.Microsecond)

	id, err := createScript.Run(ctx, s.rdb,
		[]string{s.linkKey(in.Code), s.indexKey(), s.seqKey()},
		in.Code, in.TargetURL, createdAt.UnixMicro(),
	).Int64()
	if err != nil {
		return domain.Link{}, storeErr("create link", err)
	}

	if id == 0 {
		return domain.Link{}, domain.ErrCodeConflict
	}

	return domain.Link{
		ID:        id,
		Code:      in.Code,
		TargetURL: in.TargetURL,
		CreatedAt: createdAt,
	}, nil
}

func (s *Store) FindByCode(ctx context.Context, code string) (domain.Link, error) {
	fields, err := s.rdb.HGetAll(ctx, s.linkKey(code)).Result()
	if err != nil {
		return domain.Link{}, storeErr("find link by code", err)
	}

	if len(fields) == 0 {
		return domain.Link{}, domain.ErrNotFound
	}

	link, err := decodeLink(fields)
	if err != nil {
		return domain.Link{}, storeErr("find link by code", err)
	}

	return link, nil
}

func (s *Store) ResolveAndRecord(ctx context.Context, code string, at time.Time) (string, error) {
	target, err := resolveScript.Run(ctx, s.rdb,
		[]string{s.linkKey(code)},
		at.UTC().UnixMicro(),
	).Text()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}

	if err != nil {
		return "", storeErr("resolve link", err)
	}

	return target, nil
}

func (s *Store) List(ctx context.Context, filter links.ListFilter) ([]domain.Link, error) {
	const op = "list links"

	codes, err := s.rdb.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, storeErr(op, err)
	}

	out := make([]domain.Link, 0, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(codes))
	for i, code := range codes {
		cmds[i] = pipe.HGetAll(ctx, s.linkKey(code))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storeErr(op, err)
	}

	search := strings.ToLower(filter.Search)
	for _, cmd := range cmds {
		fields := cmd.Val()
		// Deleted between the index read and the pipeline.
		if len(fields) == 0 {
			continue
		}

		link, err := decodeLink(fields)
		if err != nil {
			return nil, storeErr(op, err)
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(link.Code), search) &&
			!strings.Contains(strings.ToLower(link.TargetURL), search) {
			continue
		}

		out = append(out, link)
	}

	// Equal scores come back in member order; ids break the tie instead.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}

		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s *Store) Delete(ctx context.Context, code string) (bool, error) {
	n, err := deleteScript.Run(ctx, s.rdb,
		[]string{s.linkKey(code), s.indexKey()},
		code,
	).Int64()
	if err != nil {
		return false, storeErr("delete link", err)
	}

	return n == 1, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return storeErr("ping", err)
	}

	return nil
}

func decodeLink(fields map[string]string) (domain.Link, error) {
	var (
		link domain.Link
		err  error
	)

	if link.ID, err = strconv.ParseInt(fields[fieldID], 10, 64); err != nil {
		return domain.Link{}, fmt.Errorf("decode %s: %w", fieldID, err)
	}

	if link.Clicks, err = strconv.ParseInt(fields[fieldClicks], 10, 64); err != nil {
		return domain.Link{}, fmt.Errorf("decode %s: %w", fieldClicks, err)
	}

	if link.CreatedAt, err = parseMicros(fields[fieldCreatedAt]); err != nil {
		return domain.Link{}, fmt.Errorf("decode %s: %w", fieldCreatedAt, err)
	}

	if raw, ok := fields[fieldLastClickedAt]; ok && raw != "" {
		at, err := parseMicros(raw)
		if err != nil {
			return domain.Link{}, fmt.Errorf("decode %s: %w", fieldLastClickedAt, err)
		}

		link.LastClickedAt = &at
	}

	link.Code = fields[fieldCode]
	link.TargetURL = fields[fieldTargetURL]

	return link, nil
}

func parseMicros(raw string) (time.Time, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.UnixMicro(n).UTC(), nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("redis: %s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
