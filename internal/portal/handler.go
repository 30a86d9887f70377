// Package portal は画面描画系のルートハンドラーを提供します。
package portal

import (
	"errors"
	"log"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/member-portal/internal/account"
	"github.com/yourusername/member-portal/internal/auth"
	"github.com/yourusername/member-portal/internal/web"
)

// memberImages は members ページで表示する画像の固定セットです。
var memberImages = []string{"golestan.jpg", "isfahan.jpg", "mosque.jpg"}

// Handler は画面描画系のハンドラーをまとめた構造体です。
type Handler struct {
	accounts account.Store
}

// NewHandler は Handler を作成します。
func NewHandler(accounts account.Store) *Handler {
	return &Handler{accounts: accounts}
}

// Home は GET / のハンドラーです。ログイン中はユーザー名を表示します。
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"User": auth.UserView(c)})
}

// Members は GET /members のハンドラーです。画像はリクエストごとにランダムに1枚選びます。
func (h *Handler) Members(c *gin.Context) {
	c.HTML(http.StatusOK, "members.html", gin.H{
		"User":  auth.UserView(c),
		"Image": memberImages[rand.IntN(len(memberImages))],
	})
}

// Admin は GET /admin のハンドラーです。全アカウントを一覧表示します。
func (h *Handler) Admin(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		log.Printf("admin: list accounts: %v", err)
		web.RenderError(c)
		return
	}
	c.HTML(http.StatusOK, "admin.html", gin.H{
		"User":     auth.UserView(c),
		"Accounts": accounts,
	})
}

// Promote は GET /promote/:email のハンドラーです。対象を admin へ昇格します。
func (h *Handler) Promote(c *gin.Context) {
	h.updateRole(c, account.RoleAdmin)
}

// Demote は GET /demote/:email のハンドラーです。対象を user へ降格します。
func (h *Handler) Demote(c *gin.Context) {
	h.updateRole(c, account.RoleUser)
}

func (h *Handler) updateRole(c *gin.Context, role string) {
	email := c.Param("email")
	if err := h.accounts.UpdateRole(c.Request.Context(), email, role); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			h.NotFound(c)
			return
		}
		log.Printf("update role: %v", err)
		web.RenderError(c)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

// NotFound は未定義ルートのハンドラーです。試行されたパスを表示します。
func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", gin.H{
		"Message": "Page not found.",
		"Path":    c.Request.URL.Path,
	})
}
