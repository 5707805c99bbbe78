package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"realscan/internal/domain/model"
	"realscan/internal/domain/ports/repository"
)

var _ repository.CodeStore = (*CodeStore)(nil)

// CodeStore keeps the whole code collection as one JSON document under a
// single key, no TTL. Same document layout as the file backend.
type CodeStore struct {
	client RedisClient
	key    string
	log    *zerolog.Logger
}

// NewCodeStore returns a redis-backed CodeStore. key defaults to
// "realscan:codes" when empty.
func NewCodeStore(client RedisClient, key string, logger *zerolog.Logger) *CodeStore {
	if key == "" {
		key = "realscan:codes"
	}
	rsLog := logger.With().Str("component", "RedisCodeStore").Logger()
	return &CodeStore{client: client, key: key, log: &rsLog}
}

// Load reads the document. A missing key or undecodable payload loads as an
// empty collection with a warning, matching the file backend's fail-soft read.
func (s *CodeStore) Load(ctx context.Context) (model.CodeCollection, error) {
	data, err := s.client.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, Nil) {
			s.log.Warn().Err(err).Str("key", s.key).Msg("code key unreadable, treating as empty")
		}
		return model.EmptyCollection(), nil
	}
	var col model.CodeCollection
	if err := json.Unmarshal([]byte(data), &col); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("code key corrupt, treating as empty")
		return model.EmptyCollection(), nil
	}
	if col.Codes == nil {
		col.Codes = []model.CodeRecord{}
	}
	return col, nil
}

// Save overwrites the document in full.
func (s *CodeStore) Save(ctx context.Context, col model.CodeCollection) error {
	data, err := json.Marshal(col)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0)
}
