package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/launchlift/launchlift/internal/models"
)

// SessionKey is the fixed key a persisted session lives under.
const SessionKey = "launchlift:session"

// persisted is the durable wire form: token and identity are both present
// or both null.
type persisted struct {
	Token    *string          `json:"token"`
	Identity *models.Identity `json:"identity"`
}

// Persistence stores the current session across restarts. Load returning
// ok=false means no usable session was found; malformed data must degrade
// to ok=false, never an error the caller has to handle.
type Persistence interface {
	Save(ctx context.Context, token string, identity models.Identity) error
	Load(ctx context.Context) (token string, identity models.Identity, ok bool)
	Clear(ctx context.Context) error
}

// RedisPersistence keeps the session under SessionKey in Redis.
type RedisPersistence struct {
	client *redis.Client
}

func NewRedisPersistence(client *redis.Client) *RedisPersistence {
	return &RedisPersistence{client: client}
}

func (p *RedisPersistence) Save(ctx context.Context, token string, identity models.Identity) error {
	data, err := json.Marshal(persisted{Token: &token, Identity: &identity})
	if err != nil {
		return err
	}
	return p.client.Set(ctx, SessionKey, data, 0).Err()
}

func (p *RedisPersistence) Load(ctx context.Context) (string, models.Identity, bool) {
	data, err := p.client.Get(ctx, SessionKey).Bytes()
	if err != nil {
		return "", models.Identity{}, false
	}
	return decode(data)
}

func (p *RedisPersistence) Clear(ctx context.Context) error {
	err := p.client.Del(ctx, SessionKey).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// MemoryPersistence is the in-process backend used by tests.
type MemoryPersistence struct {
	data []byte
}

func NewMemoryPersistence() *MemoryPersistence { return &MemoryPersistence{} }

func (p *MemoryPersistence) Save(ctx context.Context, token string, identity models.Identity) error {
	data, err := json.Marshal(persisted{Token: &token, Identity: &identity})
	if err != nil {
		return err
	}
	p.data = data
	return nil
}

func (p *MemoryPersistence) Load(ctx context.Context) (string, models.Identity, bool) {
	if p.data == nil {
		return "", models.Identity{}, false
	}
	return decode(p.data)
}

func (p *MemoryPersistence) Clear(ctx context.Context) error {
	p.data = nil
	return nil
}

func decode(data []byte) (string, models.Identity, bool) {
	var rec persisted
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", models.Identity{}, false
	}
	// A partial record (token without identity or vice versa) is treated
	// as no session at all.
	if rec.Token == nil || rec.Identity == nil || *rec.Token == "" {
		return "", models.Identity{}, false
	}
	return *rec.Token, *rec.Identity, true
}
