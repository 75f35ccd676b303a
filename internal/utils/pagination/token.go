package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// ErrInvalidToken is wrapped by every DecodeToken failure.
var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the position of the last row of a page. Listings order by
// (date, created_at, transaction_id) descending; the ID breaks timestamp ties.
type Cursor struct {
	RecordDate    time.Time
	CreatedAt     time.Time
	TransactionID string
}

// EncodeToken builds an opaque token from a cursor.
func EncodeToken(c Cursor) string {
	tokenStr := strings.Join([]string{
		c.RecordDate.UTC().Format(timeFormat),
		c.CreatedAt.UTC().Format(timeFormat),
		c.TransactionID,
	}, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken reverses EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: base64 decode: %v", ErrInvalidToken, err)
	}
	parts := strings.SplitN(string(decoded), "|", 3)
	if len(parts) != 3 {
		return Cursor{}, fmt.Errorf("%w: missing separator", ErrInvalidToken)
	}

	recordDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: record date: %v", ErrInvalidToken, err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: created_at: %v", ErrInvalidToken, err)
	}
	if parts[2] == "" {
		return Cursor{}, fmt.Errorf("%w: missing transaction id", ErrInvalidToken)
	}
	return Cursor{RecordDate: recordDate, CreatedAt: createdAt, TransactionID: parts[2]}, nil
}
