package imgutil

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

const dataURLPrefix = "data:"

// ParseDataURL は data:<mime>;base64,<payload> 形式の文字列を ImageData に変換します。
// MIME タイプはヘッダから抽出し、ヘッダが欠落・不正な場合は fallbackMIME を採用します。
func ParseDataURL(s, fallbackMIME string) (*domain.ImageData, error) {
	payload := s
	mimeType := fallbackMIME

	if strings.HasPrefix(s, dataURLPrefix) {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, fmt.Errorf("data URL の区切りが見つかりません")
		}
		header := s[len(dataURLPrefix):comma]
		payload = s[comma+1:]

		if m, ok := strings.CutSuffix(header, ";base64"); ok && m != "" {
			mimeType = m
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64 デコードに失敗しました: %w", err)
	}

	return &domain.ImageData{MIMEType: mimeType, Data: data}, nil
}

// ToDataURL は ImageData をブラウザ表示用の data URL に変換します。
func ToDataURL(img *domain.ImageData) string {
	if img == nil || len(img.Data) == 0 {
		return ""
	}
	return dataURLPrefix + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// DetectImageMIME はバイト列から画像の MIME タイプを推定します。
// 画像以外のデータは空文字を返します。
func DetectImageMIME(data []byte) string {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return ""
	}
	return mimeType
}
