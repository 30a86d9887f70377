package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/member-portal/internal/account"
	"github.com/yourusername/member-portal/internal/session"
)

// LoadSession は有効なセッションがあればコンテキストへ格納するミドルウェアを返します。
// セッションが無い場合もリクエストは継続します。
func (m *Manager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := m.sessionToken(c)
		if !ok {
			c.Next()
			return
		}

		p, err := m.sessions.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Printf("load session: %v", err)
			}
			c.Next()
			return
		}

		c.Set(ContextUserKey, p)
		c.Next()
	}
}

// RequireSession はログイン済みであることを要求するミドルウェアを返します。
// 未ログイン時は /login へリダイレクトします。
func (m *Manager) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFrom(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin は admin ロールを要求するミドルウェアを返します。
// ロール不足は 403 ではなく 404 として描画し、ルートの存在を確認させません。
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := SessionFrom(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if p.Role != account.RoleAdmin {
			c.HTML(http.StatusNotFound, "404.html", gin.H{
				"Message": "Access denied. Admins only.",
				"Path":    "",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
