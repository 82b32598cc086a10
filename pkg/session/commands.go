package session

import "github.com/shouni/gemini-image-studio/pkg/domain"

// Command は UI の1操作を表す型付きコマンドです。
// すべてのコマンドは Controller.Dispatch の単一のディスパッチテーブルで
// 処理され、状態変更はそこに集約されます。
type Command interface {
	isCommand()
}

// SubmitKey は API キー入力フォームの送信です。
type SubmitKey struct {
	Raw string
}

// ClearKey はキーの差し替え操作です。セッションを未認証に戻します。
type ClearKey struct{}

// SwitchMode は生成モードの切り替えです。常にクリーンな状態から始まります。
type SwitchMode struct {
	Mode domain.Mode
}

// SetPrompt はプロンプト欄の更新です。
type SetPrompt struct {
	Text string
}

// AttachImage はファイルピッカーで選択された入力画像の添付です。
// DataURL は data:<mime>;base64,... 形式で、ヘッダの MIME が優先され、
// 解析できない場合はファイル側の宣言タイプ DeclaredMIME にフォールバックします。
type AttachImage struct {
	DataURL      string
	DeclaredMIME string
}

// ClearImage は選択済み入力画像とそのプレビューの破棄です。
type ClearImage struct{}

// Generate は生成の実行です。実行中の再送信は拒否されます。
type Generate struct{}

// RecallEntry は履歴エントリのプロンプトを入力欄に呼び戻します。
type RecallEntry struct {
	ID string
}

// ClearHistory は履歴の一括削除です。
type ClearHistory struct{}

func (SubmitKey) isCommand()    {}
func (ClearKey) isCommand()     {}
func (SwitchMode) isCommand()   {}
func (SetPrompt) isCommand()    {}
func (AttachImage) isCommand()  {}
func (ClearImage) isCommand()   {}
func (Generate) isCommand()     {}
func (RecallEntry) isCommand()  {}
func (ClearHistory) isCommand() {}
