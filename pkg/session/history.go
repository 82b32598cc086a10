package session

import (
	"strconv"
	"time"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// MaxHistoryEntries は履歴の上限件数です。
// 上限を超えた挿入は最も古いエントリから追い出します。
const MaxHistoryEntries = 12

// History はセッション内のみで生きる生成履歴です。
// 新しいものほど先頭に並びます。スレッドセーフではなく、
// Controller が呼び出しを直列化します。
type History struct {
	entries []domain.HistoryEntry
	lastID  int64
}

// NewHistory は空の履歴を返します。
func NewHistory() *History {
	return &History{}
}

// Record は新しいエントリを先頭に追加し、上限まで切り詰めます。
// 画像を伴う生成成功時にのみ呼ばれます。
func (h *History) Record(prompt string, image domain.ImageData) domain.HistoryEntry {
	entry := domain.HistoryEntry{
		ID:     h.nextID(),
		Prompt: prompt,
		Image:  image,
	}

	h.entries = append([]domain.HistoryEntry{entry}, h.entries...)
	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[:MaxHistoryEntries]
	}
	return entry
}

// Recall は ID に対応するエントリを返します。再送信は行いません。
func (h *History) Recall(id string) (domain.HistoryEntry, bool) {
	for _, e := range h.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.HistoryEntry{}, false
}

// Clear は履歴を即座に空にします。確認は挟みません。
func (h *History) Clear() {
	h.entries = nil
}

// Entries は履歴のコピーを新しい順で返します。
func (h *History) Entries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len は現在の件数を返します。
func (h *History) Len() int {
	return len(h.entries)
}

// nextID は時刻ベースの一意トークンを発行します。
// 同一ミリ秒内の連続発行でも単調増加を保ちます。
func (h *History) nextID() string {
	now := time.Now().UnixMilli()
	if now <= h.lastID {
		now = h.lastID + 1
	}
	h.lastID = now
	return strconv.FormatInt(now, 10)
}
