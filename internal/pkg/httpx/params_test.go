package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestMustUserID(t *testing.T) {
	c, w := newContext()
	assert.Equal(t, int64(0), MustUserID(c))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newContext()
	c.Set("user_id", int64(7))
	assert.Equal(t, int64(7), MustUserID(c))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, w := newContext()
			c.Params = gin.Params{{Key: "itemId", Value: tt.value}}

			id, ok := ParseIDParam(c, "itemId")
			assert.Equal(t, tt.want, id)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
