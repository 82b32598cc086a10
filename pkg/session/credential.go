package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/generator"
)

// credentialStoreKey はセッションストア上の資格情報の名前です。
const credentialStoreKey = "gemini-api-key"

// CredentialManager は API キーの受領・保持・破棄と、
// キーに束縛されたクライアントハンドルの構築を担当します。
// スレッドセーフではなく、Controller が呼び出しを直列化します。
type CredentialManager struct {
	store   KeyValueStore
	factory generator.ClientFactory
	key     string
	client  generator.GenerativeClient
}

// NewCredentialManager は CredentialManager を初期化します。
// ストアに前回リロード時のキーが残っていれば自動復元し、再入力を不要にします。
func NewCredentialManager(ctx context.Context, store KeyValueStore, factory generator.ClientFactory) (*CredentialManager, error) {
	if store == nil {
		return nil, fmt.Errorf("store (KeyValueStore) is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("factory (ClientFactory) is required")
	}

	m := &CredentialManager{store: store, factory: factory}

	if saved, ok := store.Get(credentialStoreKey); ok && saved != "" {
		if err := m.bind(ctx, saved); err != nil {
			// 復元失敗は未認証スタートに落とすだけで致命傷にはしない
			slog.Warn("保存済みAPIキーの復元に失敗しました", "error", err)
			store.Remove(credentialStoreKey)
		}
	}

	return m, nil
}

// Submit は入力されたキーを検証して有効化します。
// 空入力は検証エラーとなり、ネットワークには何も送信されません。
func (m *CredentialManager) Submit(ctx context.Context, raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.NewValidationError("key", "Please enter an API key.")
	}

	if err := m.bind(ctx, trimmed); err != nil {
		return err
	}

	m.store.Set(credentialStoreKey, trimmed)
	return nil
}

// Clear は資格情報を破棄し、セッションを未認証状態に戻します。
// 以後の生成呼び出しは新しいキーが投入されるまで拒否されます。
func (m *CredentialManager) Clear() {
	m.store.Remove(credentialStoreKey)
	m.key = ""
	m.client = nil
}

// Authenticated は有効なクライアントハンドルを保持しているかを返します。
func (m *CredentialManager) Authenticated() bool {
	return m.client != nil
}

// Client はアクティブなクライアントハンドルを返します。
// 未認証の場合は検証エラーを返します。
func (m *CredentialManager) Client() (generator.GenerativeClient, error) {
	if m.client == nil {
		return nil, domain.NewValidationError("key", "Please enter an API key.")
	}
	return m.client, nil
}

func (m *CredentialManager) bind(ctx context.Context, key string) error {
	client, err := m.factory(ctx, key)
	if err != nil {
		return err
	}
	m.key = key
	m.client = client
	return nil
}
