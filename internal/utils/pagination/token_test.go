package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(createdAt, "b8c4a3d2-1111-4c1e-9d5e-0f6b2a7c9e10")
	assert.NotEmpty(t, token, "Token should not be empty")

	cursor, err := DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(cursor.SortTime), "Sort time should match after decode")
	assert.Equal(t, "b8c4a3d2-1111-4c1e-9d5e-0f6b2a7c9e10", cursor.ID)

	// Non-UTC input comes back as the same instant
	loc := time.FixedZone("PST", -8*3600)
	local := time.Date(2025, 1, 2, 3, 4, 5, 0, loc)
	cursor, err = DecodeToken(EncodeToken(local, "x"))
	require.NoError(t, err)
	assert.True(t, local.Equal(cursor.SortTime))
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.URLEncoding.EncodeToString([]byte("2025-05-15T00:00:00Z"))
	_, err = DecodeToken(noSeparator)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badTime := base64.URLEncoding.EncodeToString([]byte("notadate|abc"))
	_, err = DecodeToken(badTime)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "time parse")
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 20, NormalizeLimit(20))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
}

func TestCursorAfter(t *testing.T) {
	at := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	c := Cursor{SortTime: at, ID: "m"}

	assert.True(t, c.After(at.Add(-time.Second), "z"), "older rows follow the cursor")
	assert.False(t, c.After(at.Add(time.Second), "a"), "newer rows precede the cursor")
	assert.True(t, c.After(at, "a"), "ties break on id")
	assert.False(t, c.After(at, "m"), "the cursor row itself is excluded")
}
