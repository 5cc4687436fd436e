package matchstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/kailas-cloud/playmatch/internal/db"
	"github.com/kailas-cloud/playmatch/internal/domain"
	"github.com/kailas-cloud/playmatch/internal/domain/match"
)

var (
	contextKeyPrefix = domain.KeyPrefix + "ctx:"
	resultKeyPrefix  = domain.KeyPrefix + "res:"
)

// store is the consumer interface for the Redis match store (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	MSetNX(ctx context.Context, items []db.KV) (bool, error)
}

// Repo persists match contexts and results in Redis.
//
// Layout:
//
//	playmatch:ctx:{account}:{context hash} -> JSON match.Context
//	playmatch:res:{{context id}}:{song id} -> JSON []match.Result
//
// Result keys carry the context ID as a hash tag so MSETNX stays in one slot.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a Redis-backed match store.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// GetContextByHash returns (nil, nil) when no context exists.
func (r *Repo) GetContextByHash(ctx context.Context, hash, accountID string) (*match.Context, error) {
	data, err := r.store.Get(ctx, contextKey(accountID, hash))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, nil //nolint:nilnil // absence is not an error for the cache
	}
	if err != nil {
		return nil, fmt.Errorf("get context: %w", err)
	}

	var c match.Context
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode context: %w: %w", domain.ErrStorage, err)
	}
	return &c, nil
}

// CreateContext assigns a ULID and stores c with SET NX.
func (r *Repo) CreateContext(ctx context.Context, c match.Context) (match.Context, error) {
	c.ID = ulid.Make().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now().UTC()
	}

	data, err := json.Marshal(c)
	if err != nil {
		return match.Context{}, fmt.Errorf("encode context: %w", err)
	}

	ok, err := r.store.SetNX(ctx, contextKey(c.AccountID, c.ContextHash), data, 0)
	if err != nil {
		return match.Context{}, fmt.Errorf("create context: %w", err)
	}
	if !ok {
		return match.Context{}, fmt.Errorf("context %s for %s: %w", c.ContextHash, c.AccountID, domain.ErrConflict)
	}
	return c, nil
}

// GetResultsForSongs reads all requested songs with one MGET. Songs without results are absent.
func (r *Repo) GetResultsForSongs(
	ctx context.Context, contextID string, songIDs []string,
) (map[string][]match.Result, error) {
	out := make(map[string][]match.Result, len(songIDs))
	if len(songIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(songIDs))
	for i, id := range songIDs {
		keys[i] = resultKey(contextID, id)
	}

	vals, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}

	for i, data := range vals {
		if data == nil {
			continue
		}
		var rows []match.Result
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decode results for %s: %w: %w", songIDs[i], domain.ErrStorage, err)
		}
		out[songIDs[i]] = rows
	}
	return out, nil
}

// InsertResults writes one key per song with MSETNX, so the whole set lands or none of it does.
func (r *Repo) InsertResults(ctx context.Context, contextID string, results []match.Result) error {
	if len(results) == 0 {
		return nil
	}

	bySong := make(map[string][]match.Result)
	var order []string
	for _, res := range results {
		if _, seen := bySong[res.SongID]; !seen {
			order = append(order, res.SongID)
		}
		bySong[res.SongID] = append(bySong[res.SongID], res)
	}

	items := make([]db.KV, 0, len(order))
	for _, songID := range order {
		data, err := json.Marshal(bySong[songID])
		if err != nil {
			return fmt.Errorf("encode results for %s: %w", songID, err)
		}
		items = append(items, db.KV{Key: resultKey(contextID, songID), Value: data})
	}

	ok, err := r.store.MSetNX(ctx, items)
	if err != nil {
		return fmt.Errorf("insert results: %w", err)
	}
	if !ok {
		return fmt.Errorf("results for context %s: %w", contextID, domain.ErrConflict)
	}
	return nil
}

func contextKey(accountID, hash string) string {
	return contextKeyPrefix + accountID + ":" + hash
}

func resultKey(contextID, songID string) string {
	return resultKeyPrefix + "{" + contextID + "}:" + songID
}
