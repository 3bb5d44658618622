// Package redistore provides a Redis-backed implementation of
// ticketauth.TokenRepository. Records are stored under their token
// string with a TTL matching the token expiry, so Redis itself reaps
// expired entries; a per-owner index set supports invalidating all
// pending tokens of one kind before a new one is minted.
package redistore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	ticketauth "github.com/eventra/ticketauth"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "tat"
	recordVersionV1  = 1
)

var errRedisUnavailable = errors.New("token store redis unavailable")

// Store implements ticketauth.TokenRepository on Redis.
type Store struct {
	redis  *redis.Client
	prefix string
}

// New creates a Store. prefix namespaces all keys; empty selects
// "tat".
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) tokenKey(kind ticketauth.TokenKind, tok string) string {
	return s.prefix + ":tok:" + string(kind) + ":" + tok
}

func (s *Store) idKey(id string) string {
	return s.prefix + ":id:" + id
}

func (s *Store) ownerKey(ownerID string, kind ticketauth.TokenKind) string {
	return s.prefix + ":own:" + string(kind) + ":" + ownerID
}

// Persist stores the record under its token with a TTL running to the
// record expiry, plus an id alias for MarkUsed and an entry in the
// owner index for InvalidateKind.
func (s *Store) Persist(ctx context.Context, record ticketauth.OpaqueToken) error {
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return errors.New("token record already expired")
	}

	encoded, err := encodeRecord(&record)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(record.Kind, record.Token), encoded, ttl)
		pipe.Set(ctx, s.idKey(record.ID), string(record.Kind)+":"+record.Token, ttl)
		pipe.SAdd(ctx, s.ownerKey(record.OwnerID, record.Kind), record.Token)
		pipe.Expire(ctx, s.ownerKey(record.OwnerID, record.Kind), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	return nil
}

// FindValid returns the pending record for tok, or (nil, nil) when the
// token is unknown, expired, already used, or of a different kind.
func (s *Store) FindValid(ctx context.Context, tok string, kind ticketauth.TokenKind) (*ticketauth.OpaqueToken, error) {
	data, err := s.redis.Get(ctx, s.tokenKey(kind, tok)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}

	if record.Kind != kind || record.UsedAt != nil || time.Now().After(record.ExpiresAt) {
		return nil, nil
	}

	record.Token = tok
	return record, nil
}

// MarkUsed stamps the record's UsedAt. Records that have already been
// reaped by their TTL count as done.
func (s *Store) MarkUsed(ctx context.Context, id string) error {
	alias, err := s.redis.Get(ctx, s.idKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	kind, tok, ok := splitAlias(alias)
	if !ok {
		return errors.New("corrupt token id alias")
	}

	return s.markTokenUsed(ctx, s.tokenKey(kind, tok))
}

// InvalidateKind marks every indexed token of the owner and kind as
// used and clears the index.
func (s *Store) InvalidateKind(ctx context.Context, ownerID string, kind ticketauth.TokenKind) error {
	ownerKey := s.ownerKey(ownerID, kind)

	tokens, err := s.redis.SMembers(ctx, ownerKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	for _, tok := range tokens {
		if err := s.markTokenUsed(ctx, s.tokenKey(kind, tok)); err != nil {
			return err
		}
	}

	if err := s.redis.Del(ctx, ownerKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	return nil
}

func (s *Store) markTokenUsed(ctx context.Context, key string) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	record, err := decodeRecord(data)
	if err != nil {
		return err
	}
	if record.UsedAt != nil {
		return nil
	}

	now := time.Now()
	record.UsedAt = &now

	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, key, encoded, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	return nil
}

func splitAlias(alias string) (ticketauth.TokenKind, string, bool) {
	for i := 0; i < len(alias); i++ {
		if alias[i] == ':' {
			return ticketauth.TokenKind(alias[:i]), alias[i+1:], true
		}
	}
	return "", "", false
}

// Record layout (big endian): version byte, kind byte, expiresAt unix
// seconds, usedAt unix seconds (0 = pending), then length-prefixed ID
// and owner ID. The token string itself lives in the key.
func encodeRecord(record *ticketauth.OpaqueToken) ([]byte, error) {
	var buf bytes.Buffer

	kindB, err := kindByte(record.Kind)
	if err != nil {
		return nil, err
	}

	buf.WriteByte(recordVersionV1)
	buf.WriteByte(kindB)

	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt.Unix()); err != nil {
		return nil, err
	}

	var usedAt int64
	if record.UsedAt != nil {
		usedAt = record.UsedAt.Unix()
	}
	if err := binary.Write(&buf, binary.BigEndian, usedAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.ID, record.OwnerID} {
		if len(field) > 65535 {
			return nil, errors.New("token record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*ticketauth.OpaqueToken, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordVersionV1 {
		return nil, errors.New("invalid token record version")
	}

	kindB, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	kind, err := byteKind(kindB)
	if err != nil {
		return nil, err
	}

	var expiresAt, usedAt int64
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &usedAt); err != nil {
		return nil, err
	}

	fields := make([]string, 2)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		fields[i] = string(raw)
	}

	record := &ticketauth.OpaqueToken{
		ID:        fields[0],
		OwnerID:   fields[1],
		Kind:      kind,
		ExpiresAt: time.Unix(expiresAt, 0),
	}
	if usedAt != 0 {
		t := time.Unix(usedAt, 0)
		record.UsedAt = &t
	}

	return record, nil
}

func kindByte(kind ticketauth.TokenKind) (byte, error) {
	switch kind {
	case ticketauth.KindEmailVerification:
		return 1, nil
	case ticketauth.KindPasswordReset:
		return 2, nil
	default:
		return 0, errors.New("unknown token kind")
	}
}

func byteKind(b byte) (ticketauth.TokenKind, error) {
	switch b {
	case 1:
		return ticketauth.KindEmailVerification, nil
	case 2:
		return ticketauth.KindPasswordReset, nil
	default:
		return "", errors.New("unknown token kind")
	}
}
