package generator

import (
	"strings"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"

	"google.golang.org/genai"
)

// BuildParts はリクエストを Gemini へ送るパーツ列に変換します。
// text-to-image はプロンプトのみ、image-to-image は「画像、テキスト」の順の2パーツです。
// この順序はモデルの編集挙動に影響するため入れ替えてはいけません。
func BuildParts(req domain.GenerationRequest) ([]*genai.Part, error) {
	if !req.Mode.IsValid() {
		return nil, domain.NewValidationError("mode", "Unknown generation mode.")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.NewValidationError("prompt", "Please enter a prompt.")
	}

	textPart := genai.NewPartFromText(req.Prompt)

	if req.Mode == domain.ModeTextToImage {
		return []*genai.Part{textPart}, nil
	}

	if req.InputImage == nil || len(req.InputImage.Data) == 0 {
		return nil, domain.NewValidationError("image", "Please select an image to transform.")
	}

	imagePart := toInlinePart(req.InputImage)
	return []*genai.Part{imagePart, textPart}, nil
}

// toInlinePart は入力画像を InlineData パーツに変換します。
// 大きすぎる画像はペイロード削減のため JPEG に再圧縮します。
func toInlinePart(img *domain.ImageData) *genai.Part {
	data := img.Data
	mimeType := img.MIMEType

	if UseImageCompression && len(data) > compressionThresholdBytes {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			data = compressed
			mimeType = "image/jpeg"
		}
	}

	if mimeType == "" {
		if detected := imgutil.DetectImageMIME(data); detected != "" {
			mimeType = detected
		}
	}

	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}
