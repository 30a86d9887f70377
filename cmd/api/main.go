// Package main は Web サーバーのエントリーポイントです。
package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/member-portal/internal/account"
	"github.com/yourusername/member-portal/internal/auth"
	"github.com/yourusername/member-portal/internal/config"
	"github.com/yourusername/member-portal/internal/portal"
	"github.com/yourusername/member-portal/internal/session"
	"github.com/yourusername/member-portal/internal/web"
)

func main() {
	// 設定の読み込み（必須項目が欠けていればここで終了）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// アカウント保存用の PostgreSQL 接続
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	accounts := account.NewPostgresStore(pool)
	if err := accounts.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// セッション保存用の Redis 接続
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping redis: %v", err)
	}

	sessions, err := session.NewRedisStore(rdb, cfg.SessionStoreSecret)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}

	manager := auth.NewManager(accounts, sessions, cfg.SessionSecret, cfg.SessionExpire)
	pages := portal.NewHandler(accounts)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.SetHTMLTemplate(web.Templates())
	router.Static("/static", "./web/static")
	router.Use(manager.LoadSession())

	setupRoutes(router, manager, pages)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes はルーティングと認可ガードの配線を行います。
func setupRoutes(router *gin.Engine, manager *auth.Manager, pages *portal.Handler) {
	router.GET("/", pages.Home)

	// 認証
	router.GET("/signup", manager.ShowSignup)
	router.POST("/signup", manager.Signup)
	router.GET("/login", manager.ShowLogin)
	router.POST("/login", manager.Login)
	router.GET("/logout", manager.Logout)

	// ログイン必須
	router.GET("/members", manager.RequireSession(), pages.Members)

	// 管理者のみ
	admin := router.Group("/")
	admin.Use(manager.RequireAdmin())
	{
		admin.GET("/admin", pages.Admin)
		admin.GET("/promote/:email", pages.Promote)
		admin.GET("/demote/:email", pages.Demote)
	}

	// 未定義ルートは 404 ビュー
	router.NoRoute(pages.NotFound)
}
