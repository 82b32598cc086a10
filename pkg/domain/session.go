package domain

// Mode は生成ワークフローの種別です。テキストからの生成と、
// 入力画像を添えた変換の2種類のみが存在します。
type Mode string

const (
	ModeTextToImage  Mode = "text-to-image"
	ModeImageToImage Mode = "image-to-image"
)

// IsValid は Mode が定義済みの値かどうかを返します。
func (m Mode) IsValid() bool {
	return m == ModeTextToImage || m == ModeImageToImage
}

// ImageData は MIME タイプ付きの生画像バイト列です。
type ImageData struct {
	MIMEType string
	Data     []byte
}

// GenerationRequest は1回の生成要求です。
// Mode が ModeImageToImage の場合、InputImage は必須です。
type GenerationRequest struct {
	Mode       Mode
	Prompt     string
	InputImage *ImageData
}

// GenerationResult は生成呼び出しの成果物です。
// 成功時は Image と Text の少なくとも一方が存在します。
type GenerationResult struct {
	Image *ImageData
	Text  string
}

// HasImage は結果に画像が含まれるかを返します。
func (r *GenerationResult) HasImage() bool {
	return r != nil && r.Image != nil && len(r.Image.Data) > 0
}

// HistoryEntry は過去の生成1件の記録です。
// ID は時刻ベースの一意トークンで、新しいものほど先頭に並びます。
type HistoryEntry struct {
	ID     string
	Prompt string
	Image  ImageData
}
