// Package auth は認証・認可機能を提供します。
package auth

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/member-portal/internal/account"
	"github.com/yourusername/member-portal/internal/session"
	"github.com/yourusername/member-portal/internal/web"
)

const (
	// SessionCookieName はセッショントークンを保持するCookieの名前です。
	SessionCookieName = "mp_session"

	bcryptCost = 12

	// どちらのフィールドが誤っているかは明かさない（存在確認への悪用を防ぐ）
	invalidCredentialsMessage = "Invalid email or password."
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーのスナップショットを共有するためのキーです。
const ContextUserKey = "auth.user"

// Manager は認証処理と依存ストアをまとめた構造体です。
type Manager struct {
	accounts account.Store
	sessions session.Store
	cookies  *securecookie.SecureCookie
	ttl      time.Duration
}

// NewManager は認証マネージャーを作成します。
// signingSecret はセッションCookieの署名に使用します。
func NewManager(accounts account.Store, sessions session.Store, signingSecret string, ttl time.Duration) *Manager {
	sc := securecookie.New([]byte(signingSecret), nil)
	sc.MaxAge(int(ttl.Seconds()))
	return &Manager{
		accounts: accounts,
		sessions: sessions,
		cookies:  sc,
		ttl:      ttl,
	}
}

// validator の max は rune 数を数えるため、bcrypt の 72 バイト上限はバイト数で検証する。
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return len(fl.Field().String()) <= limit
		})
	}
}

type signupForm struct {
	Name     string `form:"name" binding:"required,max=64"`
	Email    string `form:"email" binding:"required,email,max=254"`
	Password string `form:"password" binding:"required,maxbytes=72"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required,email,max=254"`
	Password string `form:"password" binding:"required,maxbytes=72"`
}

// ShowSignup は GET /signup のハンドラーです。
func (m *Manager) ShowSignup(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"Error": "", "Name": "", "Email": ""})
}

// Signup は POST /signup のハンドラーです。
// 検証済みの入力からアカウントとセッションを作成し、members へリダイレクトします。
func (m *Manager) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "signup.html", gin.H{
			"Error": formMessage(err),
			"Name":  c.PostForm("name"),
			"Email": c.PostForm("email"),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcryptCost)
	if err != nil {
		log.Printf("signup: hash password: %v", err)
		web.RenderError(c)
		return
	}

	created, err := m.accounts.Create(c.Request.Context(), account.Account{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: string(hash),
		Role:         account.RoleUser,
	})
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			c.HTML(http.StatusBadRequest, "signup.html", gin.H{
				"Error": "This email address is already registered.",
				"Name":  form.Name,
				"Email": form.Email,
			})
			return
		}
		log.Printf("signup: create account: %v", err)
		web.RenderError(c)
		return
	}

	// スナップショットの name は挿入結果ではなく検証済みの入力値を使う
	payload := session.Payload{Name: form.Name, Email: created.Email, Role: created.Role}
	if err := m.issueSession(c, payload); err != nil {
		log.Printf("signup: issue session: %v", err)
		web.RenderError(c)
		return
	}

	c.Redirect(http.StatusSeeOther, "/members")
}

// ShowLogin は GET /login のハンドラーです。
func (m *Manager) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Error": "", "Email": ""})
}

// Login は POST /login のハンドラーです。
func (m *Manager) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Error": formMessage(err),
			"Email": c.PostForm("email"),
		})
		return
	}

	acct, err := m.accounts.GetByEmail(c.Request.Context(), form.Email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{
				"Error": invalidCredentialsMessage,
				"Email": form.Email,
			})
			return
		}
		log.Printf("login: get account: %v", err)
		web.RenderError(c)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(form.Password)) != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Error": invalidCredentialsMessage,
			"Email": form.Email,
		})
		return
	}

	payload := session.Payload{Name: acct.Name, Email: acct.Email, Role: acct.Role}
	if err := m.issueSession(c, payload); err != nil {
		log.Printf("login: issue session: %v", err)
		web.RenderError(c)
		return
	}

	c.Redirect(http.StatusSeeOther, "/members")
}

// Logout は GET /logout のハンドラーです。
// セッションが無い状態で呼ばれてもエラーにはなりません。
func (m *Manager) Logout(c *gin.Context) {
	if token, ok := m.sessionToken(c); ok {
		if err := m.sessions.Destroy(c.Request.Context(), token); err != nil {
			log.Printf("logout: destroy session: %v", err)
		}
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", gin.Mode() == gin.ReleaseMode, true)
	c.Redirect(http.StatusFound, "/")
}

// issueSession はトークンを発行してストアへ保存し、署名付きCookieを設定します。
func (m *Manager) issueSession(c *gin.Context, p session.Payload) error {
	token, err := session.NewToken()
	if err != nil {
		return err
	}
	if err := m.sessions.Set(c.Request.Context(), token, p, m.ttl); err != nil {
		return err
	}

	encoded, err := m.cookies.Encode(SessionCookieName, token)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, encoded, int(m.ttl.Seconds()), "/", "", gin.Mode() == gin.ReleaseMode, true)
	return nil
}

// sessionToken はCookieからセッショントークンを取り出します。
// 署名が不正なCookieはトークン無しとして扱います。
func (m *Manager) sessionToken(c *gin.Context) (string, bool) {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	var token string
	if err := m.cookies.Decode(SessionCookieName, raw, &token); err != nil {
		return "", false
	}
	return token, true
}

// SessionFrom は LoadSession が格納したセッションスナップショットを取得します。
func SessionFrom(c *gin.Context) (session.Payload, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return session.Payload{}, false
	}
	p, ok := v.(session.Payload)
	return p, ok
}

// UserView はテンプレート描画用に現在のユーザーを返します。未ログイン時は nil です。
func UserView(c *gin.Context) *session.Payload {
	if p, ok := SessionFrom(c); ok {
		return &p
	}
	return nil
}

// formMessage は検証エラーをユーザー向けのメッセージへ変換します。
func formMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "email":
			return "Enter a valid email address."
		case "max", "maxbytes":
			return "Input is too long."
		}
	}
	return "All fields are required and must be valid."
}
