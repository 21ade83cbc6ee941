package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping() error { return f.err }

func TestSystemHandler_Health(t *testing.T) {
	serve := func(p Pinger) *httptest.ResponseRecorder {
		engine := gin.New()
		engine.GET("/health", NewSystemHandler(p).Health)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w
	}

	t.Run("healthy", func(t *testing.T) {
		w := serve(fakePinger{})

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data HealthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Data.Status)
		assert.Equal(t, "ok", body.Data.Database)
	})

	t.Run("database unreachable", func(t *testing.T) {
		w := serve(fakePinger{err: assert.AnError})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body struct {
			Data HealthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Data.Status)
		assert.Equal(t, "unreachable", body.Data.Database)
	})
}
