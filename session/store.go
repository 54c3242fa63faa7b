package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenIDMismatch is returned when the presented refresh-token id does
// not exactly match the stored one, including when no id is stored at all.
// Callers must treat it as an authentication failure, not a recoverable
// state.
var ErrTokenIDMismatch = errors.New("invalid refresh token")

// ErrStoreUnavailable wraps Redis transport failures and timeouts. It is a
// transient backend failure and must never be collapsed into an
// authentication failure.
var ErrStoreUnavailable = errors.New("session store unavailable")

const (
	rotateStatusMismatch int64 = 0
	rotateStatusRotated  int64 = 1
	rotateStatusRevoked  int64 = 2
)

// Compare-and-swap: only the caller presenting the currently stored id may
// rotate. On a mismatch against an existing id the key is deleted outright —
// a stale id presented here means the token was already rotated or stolen,
// and the active session is revoked to contain reuse.
const rotateScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 2
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// Store is the Redis-backed refresh-session store.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	redis     redis.UniversalClient
	keyPrefix string
	opTimeout time.Duration
}

// NewStore creates a [Store] on the given Redis client. keyPrefix sets the
// key layout (the engine default is "user-"); opTimeout, when positive,
// bounds every store call.
func NewStore(redis redis.UniversalClient, keyPrefix string, opTimeout time.Duration) *Store {
	return &Store{
		redis:     redis,
		keyPrefix: keyPrefix,
		opTimeout: opTimeout,
	}
}

func (s *Store) key(userID string) string {
	return s.keyPrefix + userID
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// Insert records tokenID as the user's single active refresh-token id,
// unconditionally superseding any prior value.
//
//	Performance: 1 Redis SET.
func (s *Store) Insert(ctx context.Context, userID, tokenID string, ttl time.Duration) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.redis.Set(ctx, s.key(userID), tokenID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Validate succeeds only when tokenID exactly matches the stored id.
// Absence of a stored id fails with [ErrTokenIDMismatch].
//
//	Performance: 1 Redis GET.
func (s *Store) Validate(ctx context.Context, userID, tokenID string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	stored, err := s.redis.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrTokenIDMismatch
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if stored != tokenID {
		return ErrTokenIDMismatch
	}
	return nil
}

// Rotate atomically swaps currentID for nextID. At most one rotation
// succeeds per outstanding id: concurrent calls presenting the same
// currentID are serialized by Redis and all but the winner fail with
// [ErrTokenIDMismatch]. A mismatch against a live session revokes it.
//
//	Performance: 1 Lua EVALSHA (atomic compare-and-swap).
func (s *Store) Rotate(ctx context.Context, userID, currentID, nextID string, ttl time.Duration) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	result, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.key(userID)},
		currentID,
		nextID,
		ttl.Milliseconds(),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return fmt.Errorf("%w: invalid rotate script response", ErrStoreUnavailable)
	}

	switch code {
	case rotateStatusRotated:
		return nil
	case rotateStatusMismatch, rotateStatusRevoked:
		return ErrTokenIDMismatch
	default:
		return fmt.Errorf("%w: unknown rotate script status %d", ErrStoreUnavailable, code)
	}
}

// Invalidate deletes the user's session key. Subsequent Validate and Rotate
// calls fail until a new session is inserted. Deleting an absent key is not
// an error.
//
//	Performance: 1 Redis DEL.
func (s *Store) Invalidate(ctx context.Context, userID string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
