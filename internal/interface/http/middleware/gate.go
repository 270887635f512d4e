package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookmarket/internal/domain/access"
)

// 页面网关规则，按顺序匹配第一个前缀
type areaRule struct {
	prefix     string
	capability access.Capability
	fallback   string // 已登录但无权限时的跳转地址
}

var protectedAreas = []areaRule{
	{prefix: "/admin", capability: access.AdminArea, fallback: "/"},
	{prefix: "/sell", capability: access.SellerArea, fallback: "/become-seller"},
	{prefix: "/profile", capability: access.Authenticated, fallback: "/"},
	{prefix: "/dashboard", capability: access.Authenticated, fallback: "/"},
}

// PageGate 页面访问网关
//
//	未登录        → 302 /login?callbackUrl=<原路径>
//	/admin非管理员 → 302 /
//	/sell非卖家    → 302 /become-seller
//
// 其他路径直接放行，已登录用户的身份同样写入Context
func (m *AuthMiddleware) PageGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authErr := m.authenticate(c)

		rule, ok := matchArea(c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		if authErr != nil {
			c.Redirect(http.StatusFound, "/login?callbackUrl="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		if err := access.Authorize(Subject(c), rule.capability, access.None); err != nil {
			c.Redirect(http.StatusFound, rule.fallback)
			c.Abort()
			return
		}
		c.Next()
	}
}

// matchArea 按路径段匹配，/seller不属于/sell
func matchArea(path string) (areaRule, bool) {
	for _, r := range protectedAreas {
		if path == r.prefix || strings.HasPrefix(path, r.prefix+"/") {
			return r, true
		}
	}
	return areaRule{}, false
}
