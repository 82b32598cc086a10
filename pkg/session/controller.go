package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/generator"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// Phase は生成呼び出しの状態機械です。
// 遷移は submit (Idle→AwaitingResponse) と
// response-received-or-failed (AwaitingResponse→Idle) の2つだけです。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingResponse
)

// ErrBusy は生成実行中の再送信に対して返されます。
var ErrBusy = errors.New("a generation is already in progress")

// msgOnlyText は画像なし・テキストありの応答に対する注意メッセージです。
const msgOnlyText = "The model returned only text."

// State は UI に束縛される一時状態です。すべて次の操作で上書きされ、
// セッションを超えて永続化されることはありません。
type State struct {
	Mode       domain.Mode
	Prompt     string
	InputImage *domain.ImageData
	ErrMessage string
	Result     *domain.GenerationResult
}

// Snapshot は UI 描画用の状態コピーです。
type Snapshot struct {
	State
	Loading       bool
	Authenticated bool
	History       []domain.HistoryEntry
}

// Controller はセッション1つ分の生成ワークフロー全体を所有します。
// 資格情報・履歴・UI状態はすべてここに集約され、グローバル変数は持ちません。
// すべての状態変更は Dispatch を通り、内部ミューテックスで直列化されます。
type Controller struct {
	mu      sync.Mutex
	phase   Phase
	state   State
	creds   *CredentialManager
	history *History
	model   string
}

// NewController は Controller を初期化します。
// ストアに資格情報が残っていれば認証済み状態で開始します。
func NewController(ctx context.Context, store KeyValueStore, factory generator.ClientFactory, model string) (*Controller, error) {
	creds, err := NewCredentialManager(ctx, store, factory)
	if err != nil {
		return nil, err
	}

	return &Controller{
		state:   State{Mode: domain.ModeTextToImage},
		creds:   creds,
		history: NewHistory(),
		model:   model,
	}, nil
}

// Dispatch はコマンドを1つ処理します。検証エラーと通信エラーは
// エラーバナー (State.ErrMessage) に反映したうえで呼び出し元にも返します。
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	switch cmd := cmd.(type) {
	case SubmitKey:
		return c.submitKey(ctx, cmd.Raw)
	case ClearKey:
		return c.clearKey()
	case SwitchMode:
		return c.switchMode(cmd.Mode)
	case SetPrompt:
		return c.setPrompt(cmd.Text)
	case AttachImage:
		return c.attachImage(cmd)
	case ClearImage:
		return c.clearImage()
	case Generate:
		return c.generate(ctx)
	case RecallEntry:
		return c.recallEntry(cmd.ID)
	case ClearHistory:
		return c.clearHistory()
	default:
		return fmt.Errorf("unknown command type %T", cmd)
	}
}

// Snapshot は現在の状態のコピーを返します。
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:         c.state,
		Loading:       c.phase == PhaseAwaitingResponse,
		Authenticated: c.creds.Authenticated(),
		History:       c.history.Entries(),
	}
}

func (c *Controller) submitKey(ctx context.Context, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.creds.Submit(ctx, raw); err != nil {
		c.state.ErrMessage = err.Error()
		return err
	}
	c.state.ErrMessage = ""
	return nil
}

func (c *Controller) clearKey() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.creds.Clear()
	c.state.ErrMessage = ""
	return nil
}

// switchMode はモードを切り替え、前のモードの状態を一切持ち越しません。
func (c *Controller) switchMode(mode domain.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !mode.IsValid() {
		err := domain.NewValidationError("mode", "Unknown generation mode.")
		c.state.ErrMessage = err.Error()
		return err
	}

	c.state = State{Mode: mode}
	return nil
}

func (c *Controller) setPrompt(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Prompt = text
	return nil
}

func (c *Controller) attachImage(cmd AttachImage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Mode != domain.ModeImageToImage {
		err := domain.NewValidationError("image", "Input images are only used in image-to-image mode.")
		c.state.ErrMessage = err.Error()
		return err
	}

	img, err := imgutil.ParseDataURL(cmd.DataURL, cmd.DeclaredMIME)
	if err != nil {
		c.state.ErrMessage = err.Error()
		return err
	}

	c.state.InputImage = img
	c.state.ErrMessage = ""
	return nil
}

func (c *Controller) clearImage() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.InputImage = nil
	return nil
}

// generate は唯一のサスペンドポイントです。ネットワーク待ちの間ロックを
// 手放し、その間の再送信は状態機械が拒否します。
func (c *Controller) generate(ctx context.Context) error {
	c.mu.Lock()

	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}

	client, err := c.creds.Client()
	if err != nil {
		c.state.ErrMessage = err.Error()
		c.mu.Unlock()
		return err
	}

	req := domain.GenerationRequest{
		Mode:       c.state.Mode,
		Prompt:     c.state.Prompt,
		InputImage: c.state.InputImage,
	}

	invoker, err := generator.NewInvoker(client, c.model)
	if err != nil {
		c.state.ErrMessage = err.Error()
		c.mu.Unlock()
		return err
	}

	c.phase = PhaseAwaitingResponse
	c.state.ErrMessage = ""
	c.state.Result = nil
	c.mu.Unlock()

	result, genErr := invoker.Generate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = PhaseIdle

	if genErr != nil {
		// サービス側のメッセージをそのままバナーに出す。リトライはしない。
		c.state.ErrMessage = genErr.Error()
		return genErr
	}

	c.state.Result = result

	if result.HasImage() {
		c.history.Record(req.Prompt, *result.Image)
	} else {
		c.state.ErrMessage = msgOnlyText
		slog.InfoContext(ctx, "画像なしの応答を受信しました", "mode", string(req.Mode))
	}

	return nil
}

func (c *Controller) recallEntry(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.history.Recall(id); ok {
		c.state.Prompt = entry.Prompt
	}
	return nil
}

func (c *Controller) clearHistory() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.Clear()
	return nil
}
