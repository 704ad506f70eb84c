package middlewares

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fsdevblog/shortlinks/internal/tokens"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestLoggerMiddleware_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(LoggerMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	tests := []struct {
		uri   string
		level zapcore.Level
	}{
		{uri: "/ok", level: zapcore.InfoLevel},
		{uri: "/bad", level: zapcore.WarnLevel},
		{uri: "/fail", level: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.uri, nil)
			req.Header.Set("User-Agent", strings.Repeat("x", 150))
			r.ServeHTTP(httptest.NewRecorder(), req)

			entries := logs.TakeAll()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, tt.uri, fields["URI"])
			assert.Len(t, fields["user-agent"], logUserAgentLen)
			if tt.level == zapcore.ErrorLevel {
				assert.Contains(t, fields["error"], assert.AnError.Error())
			}
		})
	}
}

func TestGzipMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(GzipMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	t.Run("compressed request and response", func(t *testing.T) {
		var buf bytes.Buffer
		gzw := gzip.NewWriter(&buf)
		_, err := gzw.Write([]byte("hello"))
		require.NoError(t, err)
		require.NoError(t, gzw.Close())

		req := httptest.NewRequest(http.MethodPost, "/echo", &buf)
		req.Header.Set("Content-Encoding", "gzip")
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		gzr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		plain, err := io.ReadAll(gzr)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(plain))
	})

	t.Run("plain", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hi")))
		assert.Equal(t, "hi", rec.Body.String())
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
	})

	t.Run("broken gzip body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("not gzip"))
		req.Header.Set("Content-Encoding", "gzip")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVisitorCookieMiddleware(t *testing.T) {
	secret := []byte("secret")
	r := gin.New()
	r.Use(VisitorCookieMiddleware(secret))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, VisitorUUID(c)) })

	t.Run("issues cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.True(t, cookies[0].HttpOnly)
		id, err := tokens.ParseVisitorJWT(cookies[0].Value, secret)
		require.NoError(t, err)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("keeps valid cookie", func(t *testing.T) {
		token, err := tokens.GenerateVisitorJWT("visitor-1", VisitorJWTExpireDuration, secret)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "visitor-1", rec.Body.String())
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("replaces foreign token", func(t *testing.T) {
		token, err := tokens.GenerateVisitorJWT("visitor-1", VisitorJWTExpireDuration, []byte("other"))
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: token})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.NotEqual(t, "visitor-1", rec.Body.String())
		assert.Len(t, rec.Result().Cookies(), 1)
	})
}
