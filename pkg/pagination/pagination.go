// Package pagination implements cursor pagination over (created_at, id)
// ordering for admin listing endpoints.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is applied when the caller does not request a page size.
	DefaultLimit = 25
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

// Params carries the normalized pagination inputs for a list query.
type Params struct {
	Limit  int
	Cursor *Cursor
}

// Cursor marks the position after the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit],
// substituting DefaultLimit when unset.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns limit+1 so the query can detect whether a
// further page exists.
func LimitWithBuffer(limit int) int {
	return limit + 1
}

// EncodeCursor serializes a cursor into an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	raw := fmt.Sprintf("%d|%s", c.CreatedAt.UnixNano(), c.ID.String())
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a token produced by EncodeCursor. An empty token
// yields a nil cursor.
func ParseCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("malformed cursor")
	}

	var nanos int64
	if _, err := fmt.Sscanf(parts[0], "%d", &nanos); err != nil {
		return nil, fmt.Errorf("malformed cursor timestamp: %w", err)
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed cursor id: %w", err)
	}

	return &Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}
