package generator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient は genai SDK を直接ラップした GenerativeClient 実装です。
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient は、ユーザーが入力した API キーでクライアントを構築します。
// キーはセッション中に差し替わるため、環境変数ではなく引数で受け取ります。
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// GenerateParts はパーツ列を単一の user コンテンツとして送信します。
func (c *GeminiClient) GenerateParts(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return c.client.Models.GenerateContent(ctx, model, contents, cfg)
}

// NewGeminiClientFactory は CredentialManager に渡す ClientFactory を返します。
func NewGeminiClientFactory() ClientFactory {
	return func(ctx context.Context, apiKey string) (GenerativeClient, error) {
		return NewGeminiClient(ctx, apiKey)
	}
}
