package errno

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := errors.Wrap(NotFoundErr.WithMessage("clip 7 not found"), "GetOne")
	assert.True(t, errors.Is(err, NotFoundErr))
	assert.False(t, errors.Is(err, ForbiddenErr))
}

func TestConvertErr(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, Success, ConvertErr(nil))
	})
	t.Run("wrapped errno", func(t *testing.T) {
		got := ConvertErr(errors.Wrapf(ForbiddenErr, "comment %d", 3))
		assert.Equal(t, int64(ForbiddenErrCode), got.ErrCode)
	})
	t.Run("plain error", func(t *testing.T) {
		got := ConvertErr(errors.New("boom"))
		assert.Equal(t, int64(ServiceErrCode), got.ErrCode)
		assert.Equal(t, "boom", got.ErrMsg)
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		nil:              http.StatusOK,
		InvalidInputErr:  http.StatusBadRequest,
		NotFoundErr:      http.StatusNotFound,
		ForbiddenErr:     http.StatusForbidden,
		InvalidOperation: http.StatusForbidden,
		ConflictErr:      http.StatusConflict,
		UnavailableErr:   http.StatusServiceUnavailable,
		AuthorizationErr: http.StatusUnauthorized,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), "%v", err)
	}
}
