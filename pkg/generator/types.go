package generator

const (
	// DefaultModel は画像出力に対応したマルチモーダルモデルの既定値です。
	DefaultModel = "gemini-2.5-flash-image-preview"

	UseImageCompression     = true
	ImageCompressionQuality = 75

	// compressionThresholdBytes を超える入力画像のみ JPEG 再圧縮の対象とします。
	compressionThresholdBytes = 4 << 20
)

// 出力モダリティは常に画像とテキストの両方を要求します。
// どちらが返るか（あるいは両方か、どちらも無いか）はモデル側の裁量です。
var responseModalities = []string{"IMAGE", "TEXT"}
