package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func TestError(t *testing.T) {
	t.Run("业务错误映射状态码", func(t *testing.T) {
		c, w := newContext()
		Error(c, apperrors.ErrForbidden)

		assert.Equal(t, http.StatusForbidden, w.Code)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apperrors.ErrCodeForbidden, body.Code)
	})

	t.Run("内部错误不泄露细节", func(t *testing.T) {
		c, w := newContext()
		Error(c, apperrors.Wrap(errors.New("dial tcp 10.0.0.1:3306"), "查询失败"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.1")
		assert.Contains(t, w.Body.String(), "查询失败")
	})
}

func TestNewPageData(t *testing.T) {
	page := NewPageData([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, page.TotalPages)

	empty := NewPageData(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)
}
