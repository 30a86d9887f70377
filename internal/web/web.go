// Package web は HTML テンプレートを埋め込み、ルーターへ提供します。
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates は埋め込み済みのテンプレート一式をパースして返します。
// 本番サーバーとテストが同じビューを読み込めるように embed を使います。
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// RenderError は内部詳細を出さずに汎用の 500 ページを描画します。
func RenderError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{})
}
