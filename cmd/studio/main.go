package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shouni/gemini-image-studio/pkg/config"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/webui"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	// .env は存在すれば読む（任意）
	_ = godotenv.Load()

	settings, err := config.Load()
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	server, err := webui.NewServer(webui.Options{
		Factory:        generator.NewGeminiClientFactory(),
		Model:          settings.Model,
		RequestTimeout: settings.RequestTimeout,
		MaxUploadBytes: settings.MaxUploadBytes,
		SessionTTL:     settings.SessionTTL,
	})
	if err != nil {
		slog.Error("サーバーの初期化に失敗しました", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, settings.Addr); err != nil {
		slog.Error("サーバーが異常終了しました", "error", err)
		os.Exit(1)
	}

	slog.Info("サーバーを停止しました")
}
