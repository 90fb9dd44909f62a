package redis

import (
	"context"
	"sort"
	"time"

	"github.com/goodtune/devtime/internal/storage"
	"github.com/redis/go-redis/v9"
)

type userStore struct {
	client *redis.Client
}

// Get retrieves a user by ID
func (s *userStore) Get(ctx context.Context, id string) (*storage.User, error) {
	data, err := s.client.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, err
	}

	return parseUser(data)
}

// Upsert creates or updates a user
func (s *userStore) Upsert(ctx context.Context, user storage.User) error {
	script := redis.NewScript(upsertUserScript)

	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	keys := []string{userKey(user.ID), usersSet}
	args := []interface{}{user.ID, user.Timezone, createdAt.Format(time.RFC3339Nano)}

	return script.Run(ctx, s.client, keys, args...).Err()
}

// List returns all users ordered by ID
func (s *userStore) List(ctx context.Context) ([]storage.User, error) {
	ids, err := s.client.SMembers(ctx, usersSet).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []storage.User{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))

	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, userKey(id))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	users := make([]storage.User, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue
		}

		user, err := parseUser(data)
		if err == nil {
			users = append(users, *user)
		}
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}
