package mw

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamhub.com/cmd/api/handlers"
	"streamhub.com/pkg/errno"
)

func echoViewer(ctx context.Context, c *app.RequestContext) {
	handlers.SendResponse(c, errno.Success, handlers.Viewer(c))
}

func decode(t *testing.T, w *ut.ResponseRecorder) (int, handlers.Response) {
	t.Helper()
	resp := w.Result()
	var r handlers.Response
	require.NoError(t, json.Unmarshal(resp.Body(), &r))
	return resp.StatusCode(), r
}

func TestViewer(t *testing.T) {
	auth, err := NewAuth("secret", "user_id", time.Hour)
	require.NoError(t, err)
	h := server.New()
	h.GET("/who", auth.Viewer(), echoViewer)
	h.GET("/me", auth.Viewer(), RequireViewer(), echoViewer)

	token, _, err := auth.Token(42)
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		status, r := decode(t, ut.PerformRequest(h.Engine, http.MethodGet, "/who", nil))
		assert.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 0, r.Data)
	})
	t.Run("bearer token", func(t *testing.T) {
		status, r := decode(t, ut.PerformRequest(h.Engine, http.MethodGet, "/who", nil,
			ut.Header{Key: "Authorization", Value: "Bearer " + token}))
		assert.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 42, r.Data)
	})
	t.Run("query token", func(t *testing.T) {
		_, r := decode(t, ut.PerformRequest(h.Engine, http.MethodGet, "/who?token="+token, nil))
		assert.EqualValues(t, 42, r.Data)
	})
	t.Run("forged token", func(t *testing.T) {
		other, err := NewAuth("other-secret", "user_id", time.Hour)
		require.NoError(t, err)
		forged, _, err := other.Token(42)
		require.NoError(t, err)
		status, r := decode(t, ut.PerformRequest(h.Engine, http.MethodGet, "/who", nil,
			ut.Header{Key: "Authorization", Value: "Bearer " + forged}))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, int64(errno.AuthorizationErrCode), r.Code)
	})
	t.Run("login required", func(t *testing.T) {
		status, _ := decode(t, ut.PerformRequest(h.Engine, http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestCPUShedder(t *testing.T) {
	s := NewCPUShedder(90)
	h := server.New()
	h.GET("/ping", s.Middleware(), echoViewer)

	status, _ := decode(t, ut.PerformRequest(h.Engine, http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, status)

	s.store(97.5)
	status, r := decode(t, ut.PerformRequest(h.Engine, http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, int64(errno.UnavailableErrCode), r.Code)
}

func TestCPUShedderRunSamples(t *testing.T) {
	s := NewCPUShedder(90)
	ctx, cancel := context.WithCancel(context.Background())
	s.sample = func(ctx context.Context, _ time.Duration) (float64, error) {
		cancel()
		return 55, nil
	}
	s.Run(ctx, time.Millisecond)
	assert.Equal(t, 55.0, s.Load())
}

func TestFlowControl(t *testing.T) {
	require.NoError(t, LoadToggleRules(1))
	h := server.New()
	h.POST("/like", FlowControl(ToggleLikeResource), echoViewer)

	var blocked int
	for i := 0; i < 5; i++ {
		status, _ := decode(t, ut.PerformRequest(h.Engine, http.MethodPost, "/like", nil))
		if status == http.StatusServiceUnavailable {
			blocked++
		}
	}
	assert.GreaterOrEqual(t, blocked, 3)
}
