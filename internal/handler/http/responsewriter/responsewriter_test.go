package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := Wrap(rec)

	assert.Equal(t, http.StatusOK, wrapped.StatusCode())
	assert.Equal(t, 0, wrapped.BytesWritten())
	assert.False(t, wrapped.Written())
}

func TestWrap_ReusesRecorder(t *testing.T) {
	outer := Wrap(httptest.NewRecorder())
	inner := Wrap(outer)

	assert.Same(t, outer, inner)
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusInternalServerError} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			rec := httptest.NewRecorder()
			wrapped := Wrap(rec)

			wrapped.WriteHeader(code)

			assert.Equal(t, code, wrapped.StatusCode())
			assert.True(t, wrapped.Written())
			assert.Equal(t, code, rec.Code)
		})
	}
}

func TestResponseWriter_WriteHeader_MultipleCallsIgnored(t *testing.T) {
	wrapped := Wrap(httptest.NewRecorder())

	wrapped.WriteHeader(http.StatusTooManyRequests)
	wrapped.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusTooManyRequests, wrapped.StatusCode())
}

func TestResponseWriter_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := Wrap(rec)

	n1, err := wrapped.Write([]byte("hello "))
	require.NoError(t, err)
	n2, err := wrapped.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, 11, n1+n2)
	assert.Equal(t, 11, wrapped.BytesWritten())
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, http.StatusOK, wrapped.StatusCode(), "Write implies 200")
	assert.True(t, wrapped.Written())
}

func TestResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := Wrap(rec)

	wrapped.Flush()

	assert.True(t, rec.Flushed)
	assert.True(t, wrapped.Written())
}

func TestResponseWriter_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.Equal(t, rec, Wrap(rec).Unwrap())
}
