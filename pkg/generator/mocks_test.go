package generator

import (
	"context"

	"google.golang.org/genai"
)

// --- Mocks ---

type mockClient struct {
	generateFunc func(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	lastModel string
	lastParts []*genai.Part
	lastCfg   *genai.GenerateContentConfig
	calls     int
}

func (m *mockClient) GenerateParts(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.lastModel = model
	m.lastParts = parts
	m.lastCfg = cfg
	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, parts, cfg)
	}
	return &genai.GenerateContentResponse{}, nil
}

type mockHTTPClient struct {
	data []byte
	err  error
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return m.data, m.err
}

// imageResponse はテスト用に InlineData パーツ1つのレスポンスを組み立てます。
func imageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
			},
		}},
	}
}

// textResponse はテスト用にテキストパーツのみのレスポンスを組み立てます。
func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, s := range texts {
		parts = append(parts, &genai.Part{Text: s})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: parts},
		}},
	}
}
