package generator

import (
	"context"

	"google.golang.org/genai"
)

// GenerativeClient は Gemini API との通信窓口です。
// 資格情報はクライアント構築時に束縛され、呼び出しごとには持ち回りません。
type GenerativeClient interface {
	// GenerateParts は、組み立て済みのパーツ列を指定モデルに送信し、生のレスポンスを返します。
	GenerateParts(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory は API キーから GenerativeClient を構築します。
// キーの差し替え時にはハンドルごと作り直します。
type ClientFactory func(ctx context.Context, apiKey string) (GenerativeClient, error)

// HTTPClient は、HTTPリクエストを実行し、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
