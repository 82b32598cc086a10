package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/gemini-image-studio/pkg/domain"

	"google.golang.org/genai"
)

// Invoker は1回の生成呼び出しの組み立て・通信・解析を担当します。
type Invoker struct {
	client GenerativeClient
	model  string
}

// NewInvoker は Invoker を初期化します。model が空の場合は DefaultModel を使います。
func NewInvoker(client GenerativeClient, model string) (*Invoker, error) {
	if client == nil {
		return nil, fmt.Errorf("client (GenerativeClient) is required")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Invoker{client: client, model: model}, nil
}

// Model は使用中のモデル識別子を返します。
func (iv *Invoker) Model() string {
	return iv.model
}

// Generate はリクエストを検証・送信し、レスポンスを解析して結果を返します。
// ネットワーク呼び出しはこの1回のみで、リトライは行いません。
// 画像もテキストも返らなかった場合は domain.ErrEmptyResponse を返します。
func (iv *Invoker) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	parts, err := BuildParts(req)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: responseModalities,
	}

	slog.InfoContext(ctx, "Geminiに生成をリクエストします",
		"model", iv.model, "mode", string(req.Mode), "parts", len(parts))

	resp, err := iv.client.GenerateParts(ctx, iv.model, parts, cfg)
	if err != nil {
		// サービス側のメッセージをそのまま伝えるため、ここではラップしない
		return nil, err
	}

	return decodeResponse(resp)
}

// decodeResponse はレスポンスのパーツ列を一度だけ走査して結果に変換します。
// テキストパーツは改行で連結し、画像パーツは最後に出現したものを採用します。
func decodeResponse(resp *genai.GenerateContentResponse) (*domain.GenerationResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, domain.ErrEmptyResponse
	}

	// 最初の候補のみを利用する
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil, domain.ErrEmptyResponse
	}

	var texts []string
	var image *domain.ImageData

	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			image = &domain.ImageData{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			}
		}
	}

	result := &domain.GenerationResult{
		Image: image,
		Text:  strings.Join(texts, "\n"),
	}

	if !result.HasImage() && result.Text == "" {
		return nil, domain.ErrEmptyResponse
	}

	return result, nil
}
