package oss

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamhub.com/pkg/errno"
)

func TestParseToken(t *testing.T) {
	bucket, object, err := ParseToken("clips/2024/01/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "clips", bucket)
	assert.Equal(t, "2024/01/a.mp4", object)

	for _, bad := range []string{"clips", "clips/", "/a.mp4", "  "} {
		_, _, err := ParseToken(bad)
		assert.True(t, errors.Is(err, errno.InvalidInputErr), bad)
	}
}

func TestDeleteByTokenEmpty(t *testing.T) {
	s := &AssetStore{breaker: newBreaker("test")}
	assert.NoError(t, s.DeleteByToken(context.Background(), ""))
}

func TestGuardOpensAfterConsecutiveFailures(t *testing.T) {
	s := &AssetStore{breaker: newBreaker("test")}
	calls := 0
	fail := func() error {
		calls++
		return errors.New("connection refused")
	}
	for i := 0; i < 5; i++ {
		err := s.guard(fail)
		require.Error(t, err)
		assert.False(t, errors.Is(err, errno.UnavailableErr))
	}
	err := s.guard(fail)
	assert.True(t, errors.Is(err, errno.UnavailableErr))
	assert.Equal(t, 5, calls)
}
