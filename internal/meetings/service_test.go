package meetings

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewMemoryRepo(), nil, []byte("test-secret"), time.Hour)
	require.NoError(t, err)
	return svc
}

func TestCreateGeneratesCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "Standup", "alice", "")
	require.NoError(t, err)
	assert.Len(t, string(m.Code), 6)
	assert.False(t, m.RequiresPassword())

	got, err := svc.Get(ctx, string(m.Code))
	require.NoError(t, err)
	assert.Equal(t, m.Code, got.Code)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "alice", "")
	assert.ErrorIs(t, err, ErrTitleEmpty)

	_, err = svc.Create(ctx, "Standup", "", "")
	assert.ErrorIs(t, err, ErrHostEmpty)
}

func TestGetNormalizesCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "Standup", "alice", "")
	require.NoError(t, err)

	got, err := svc.Get(ctx, "  "+string(m.Code)+" ")
	require.NoError(t, err)
	assert.Equal(t, m.Code, got.Code)

	_, err = svc.Get(ctx, "NOPE99")
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestJoinChecksPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "Standup", "alice", "hunter2")
	require.NoError(t, err)
	require.True(t, m.RequiresPassword())

	_, err = svc.Join(ctx, string(m.Code), "wrong", "bob")
	assert.ErrorIs(t, err, ErrWrongPassword)

	token, err := svc.Join(ctx, string(m.Code), "hunter2", "bob")
	require.NoError(t, err)

	var claims MediaClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, m.Code, claims.Room)
	assert.Equal(t, "bob", claims.DisplayName)
}

func TestJoinOpenMeetingIgnoresPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "Standup", "alice", "")
	require.NoError(t, err)

	_, err = svc.Join(ctx, string(m.Code), "anything", "bob")
	assert.NoError(t, err)
}

func TestLookupReportsExistence(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, "Standup", "alice", "hunter2")
	require.NoError(t, err)

	meta, err := svc.Lookup(ctx, m.Code)
	require.NoError(t, err)
	assert.True(t, meta.Exists)
	assert.True(t, meta.RequiresPassword)

	meta, err = svc.Lookup(ctx, "NOPE99")
	require.NoError(t, err)
	assert.False(t, meta.Exists)
}
