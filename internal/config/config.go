// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// データベース設定（アカウント保存用）
	DBHost     string // PostgreSQLのホスト名
	DBUser     string // PostgreSQLのユーザー名
	DBPassword string // PostgreSQLのパスワード
	DBName     string // データベース名

	// セッション設定
	RedisURL           string        // セッション保存用Redisの接続URL
	SessionSecret      string        // セッションCookie署名用の秘密鍵
	SessionStoreSecret string        // セッションペイロード暗号化用の秘密鍵
	SessionExpire      time.Duration // セッションの有効期限
}

// Load は環境変数から設定を読み込みます。
// .env ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env ファイルを読み込む（存在しない場合はスキップ）
	_ = godotenv.Load()

	expire, err := getEnvAsDuration("SESSION_EXPIRE", time.Hour)
	if err != nil {
		return nil, err
	}

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// データベース設定
		DBHost:     getEnv("DB_HOST", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),

		// セッション設定
		RedisURL:           getEnv("REDIS_URL", ""),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionStoreSecret: getEnv("SESSION_STORE_SECRET", ""),
		SessionExpire:      expire,
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate は設定の妥当性を検証します。
// 不足している環境変数は名前付きでエラーにします（黙って起動しない）。
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DB_HOST", c.DBHost},
		{"DB_USER", c.DBUser},
		{"DB_PASSWORD", c.DBPassword},
		{"DB_NAME", c.DBName},
		{"REDIS_URL", c.RedisURL},
		{"SESSION_SECRET", c.SessionSecret},
		{"SESSION_STORE_SECRET", c.SessionStoreSecret},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	if c.SessionExpire <= 0 {
		return fmt.Errorf("SESSION_EXPIRE must be a positive duration")
	}
	return nil
}

// DatabaseURL はアカウント保存用データベースの接続URLを組み立てます。
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s", c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.Duration として取得します。
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 1h or 30m: %w", key, err)
	}
	return value, nil
}
