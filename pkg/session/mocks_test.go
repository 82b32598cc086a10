package session

import (
	"context"

	"github.com/shouni/gemini-image-studio/pkg/generator"

	"google.golang.org/genai"
)

// --- Mocks ---

type stubClient struct {
	generateFunc func(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	lastParts []*genai.Part
	calls     int
}

func (s *stubClient) GenerateParts(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.calls++
	s.lastParts = parts
	if s.generateFunc != nil {
		return s.generateFunc(ctx, model, parts, cfg)
	}
	return &genai.GenerateContentResponse{}, nil
}

type stubFactory struct {
	client  *stubClient
	err     error
	lastKey string
	calls   int
}

func (f *stubFactory) factory() generator.ClientFactory {
	return func(ctx context.Context, apiKey string) (generator.GenerativeClient, error) {
		f.calls++
		f.lastKey = apiKey
		if f.err != nil {
			return nil, f.err
		}
		if f.client == nil {
			f.client = &stubClient{}
		}
		return f.client, nil
	}
}

func imageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
			},
		}},
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}
