package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-5))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
}

func TestLimitWithBuffer(t *testing.T) {
	assert.Equal(t, 26, LimitWithBuffer(25))
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC),
		ID:        uuid.New(),
	}

	token := EncodeCursor(want)
	require.NotEmpty(t, token)

	got, err := ParseCursor(token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.CreatedAt.Equal(want.CreatedAt))
	assert.Equal(t, want.ID, got.ID)
}

func TestParseCursorEmptyToken(t *testing.T) {
	got, err := ParseCursor("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseCursorMalformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "%%%not-base64%%%"},
		{name: "missing separator", token: "MTIzNDU2Nzg5"},
		{name: "bad timestamp", token: "eHwxMjM0"},
		{name: "bad uuid", token: "MTcwMDAwMDAwMHxub3QtYS11dWlk"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCursor(tc.token)
			require.Error(t, err)
			assert.Nil(t, got)
		})
	}
}
