package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings はアプリケーション全体の設定です。
// 値はすべて STUDIO_ プレフィックス付きの環境変数から読み込みます。
type Settings struct {
	Addr           string        `envconfig:"STUDIO_ADDR" default:":8080"`
	Model          string        `envconfig:"STUDIO_MODEL" default:"gemini-2.5-flash-image-preview"`
	RequestTimeout time.Duration `envconfig:"STUDIO_REQUEST_TIMEOUT" default:"120s"`
	MaxUploadBytes int64         `envconfig:"STUDIO_MAX_UPLOAD_BYTES" default:"10485760"`
	SessionTTL     time.Duration `envconfig:"STUDIO_SESSION_TTL" default:"1h"`
}

// Load は環境変数から設定を読み込みます。
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("studio", &s); err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	return &s, nil
}
