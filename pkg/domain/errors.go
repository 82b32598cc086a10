package domain

import "errors"

// ValidationError はネットワーク呼び出し前に検出される入力エラーです。
// リクエストは送信されず、メッセージはそのままユーザーに表示されます。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError は ValidationError を生成します。
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation は err が ValidationError かどうかを返します。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrEmptyResponse は、呼び出しは成功したが画像もテキストも
// 返らなかったことを示します。クラッシュではなくエラー状態として扱います。
var ErrEmptyResponse = errors.New("no image or text returned")
