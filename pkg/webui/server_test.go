package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/gemini-image-studio/pkg/generator"

	"google.golang.org/genai"
)

type stubClient struct {
	generateFunc func(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (s *stubClient) GenerateParts(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if s.generateFunc != nil {
		return s.generateFunc(ctx, model, parts, cfg)
	}
	return &genai.GenerateContentResponse{}, nil
}

func stubFactory(client *stubClient) generator.ClientFactory {
	return func(ctx context.Context, apiKey string) (generator.GenerativeClient, error) {
		return client, nil
	}
}

// testClient は同一ブラウザセッションを模倣するためクッキーを保持します。
func testClient(t *testing.T) (*httptest.Server, *http.Client, *Server) {
	t.Helper()
	img := &stubClient{
		generateFunc: func(ctx context.Context, model string, parts []*genai.Part, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{
						Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("fake-png")}}},
					},
				}},
			}, nil
		},
	}

	srv, err := NewServer(Options{Factory: stubFactory(img)})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return ts, &http.Client{Jar: jar}, srv
}

func postJSON(t *testing.T, client *http.Client, url string, body any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func getState(t *testing.T, client *http.Client, base string) map[string]any {
	t.Helper()
	resp, err := client.Get(base + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_SessionCookie(t *testing.T) {
	t.Run("初回アクセスでセッションクッキーが発行される", func(t *testing.T) {
		ts, client, _ := testClient(t)

		resp, err := client.Get(ts.URL + "/api/state")
		require.NoError(t, err)
		resp.Body.Close()

		var found bool
		for _, c := range resp.Cookies() {
			if c.Name == sessionCookieName {
				found = true
			}
		}
		assert.True(t, found, "session cookie should be set")
	})
}

func TestServer_KeyFlow(t *testing.T) {
	t.Run("キー投入から破棄までの認証状態の遷移", func(t *testing.T) {
		ts, client, _ := testClient(t)

		state := getState(t, client, ts.URL)
		assert.Equal(t, false, state["authenticated"])

		state = postJSON(t, client, ts.URL+"/api/key", map[string]string{"key": "session-key"})
		assert.Equal(t, true, state["authenticated"])

		// 同じクッキーでの再取得でも認証済みのまま
		state = getState(t, client, ts.URL)
		assert.Equal(t, true, state["authenticated"])

		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/key", nil)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		state = getState(t, client, ts.URL)
		assert.Equal(t, false, state["authenticated"])
	})

	t.Run("空キーは検証エラーがバナーに載る", func(t *testing.T) {
		ts, client, _ := testClient(t)

		state := postJSON(t, client, ts.URL+"/api/key", map[string]string{"key": "   "})

		assert.Equal(t, false, state["authenticated"])
		assert.Equal(t, "Please enter an API key.", state["error"])
	})
}

func TestServer_GenerateFlow(t *testing.T) {
	t.Run("生成成功で結果画像と履歴が返る", func(t *testing.T) {
		ts, client, _ := testClient(t)
		postJSON(t, client, ts.URL+"/api/key", map[string]string{"key": "k"})

		state := postJSON(t, client, ts.URL+"/api/generate", map[string]string{"prompt": "A red cube on a white table."})

		assert.Equal(t, false, state["loading"])
		assert.Empty(t, state["error"])
		assert.NotEmpty(t, state["result_image"])

		history, ok := state["history"].([]any)
		require.True(t, ok)
		require.Len(t, history, 1)
		entry := history[0].(map[string]any)
		assert.Equal(t, "A red cube on a white table.", entry["prompt"])
	})

	t.Run("未認証の生成はバナーにエラーが載る", func(t *testing.T) {
		ts, client, _ := testClient(t)

		state := postJSON(t, client, ts.URL+"/api/generate", map[string]string{"prompt": "x"})

		assert.Equal(t, "Please enter an API key.", state["error"])
		assert.Empty(t, state["result_image"])
	})

	t.Run("モード切替で前の結果とエラーが消える", func(t *testing.T) {
		ts, client, _ := testClient(t)
		postJSON(t, client, ts.URL+"/api/key", map[string]string{"key": "k"})
		postJSON(t, client, ts.URL+"/api/generate", map[string]string{"prompt": "p"})

		state := postJSON(t, client, ts.URL+"/api/mode", map[string]string{"mode": "image-to-image"})

		assert.Equal(t, "image-to-image", state["mode"])
		assert.Empty(t, state["result_image"])
		assert.Empty(t, state["error"])
		assert.Empty(t, state["prompt"])
	})
}

func TestServer_SweepIdleSessions(t *testing.T) {
	t.Run("TTLを超えたセッションだけが回収される", func(t *testing.T) {
		srv, err := NewServer(Options{Factory: stubFactory(&stubClient{}), SessionTTL: time.Minute})
		require.NoError(t, err)

		_, err = srv.controllerFor(context.Background(), "stale")
		require.NoError(t, err)
		_, err = srv.controllerFor(context.Background(), "fresh")
		require.NoError(t, err)

		srv.mu.Lock()
		srv.sessions["stale"].lastSeen = time.Now().Add(-2 * time.Minute)
		srv.mu.Unlock()

		removed := srv.sweepIdleSessions(time.Now())

		assert.Equal(t, 1, removed)
		srv.mu.Lock()
		defer srv.mu.Unlock()
		_, staleOK := srv.sessions["stale"]
		_, freshOK := srv.sessions["fresh"]
		assert.False(t, staleOK)
		assert.True(t, freshOK)
	})
}

func TestServer_IndexPage(t *testing.T) {
	t.Run("トップページはHTMLを返す", func(t *testing.T) {
		ts, client, _ := testClient(t)

		resp, err := client.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	})
}
