package generator

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
)

// maxFetchBytes は参照画像ダウンロードの上限サイズです。
const maxFetchBytes = 20 << 20

// Fetcher は image-to-image モードの参照画像を URL から取得します。
type Fetcher struct {
	httpClient HTTPClient
}

// NewFetcher は Fetcher を初期化します。
func NewFetcher(httpClient HTTPClient) (*Fetcher, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &Fetcher{httpClient: httpClient}, nil
}

// Fetch は URL を検証したうえで画像をダウンロードし、ImageData として返します。
// 画像以外のペイロードは拒否します。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.ImageData, error) {
	if safe, err := IsSafeURL(rawURL); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}

	data, err := f.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	mimeType := imgutil.DetectImageMIME(data)
	if mimeType == "" {
		return nil, domain.NewValidationError("image", "The URL does not point to an image.")
	}

	return &domain.ImageData{MIMEType: mimeType, Data: data}, nil
}

// IsSafeURL は、SSRF (Server-Side Request Forgery) 対策として URL を検証します。
// 許可されたスキーム (http, https) かつ、プライベートIPやループバックアドレスを
// ターゲットにしていないことを確認します。
func IsSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP

	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("ホスト '%s' の名前解決に失敗しました: %w", host, err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}

// httpFetcher は net/http ベースの既定の HTTPClient 実装です。
type httpFetcher struct {
	client *http.Client
}

// NewHTTPFetcher は既定の HTTPClient を返します。
func NewHTTPFetcher(client *http.Client) HTTPClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client}
}

func (f *httpFetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
}
