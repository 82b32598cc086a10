package webui

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/gemini-image-studio/pkg/domain"
	"github.com/shouni/gemini-image-studio/pkg/imgutil"
	"github.com/shouni/gemini-image-studio/pkg/session"
)

// stateResponse は UI に束縛される状態の JSON 表現です。
// 画像はブラウザがそのまま表示できるよう data URL に変換して返します。
type stateResponse struct {
	Authenticated bool          `json:"authenticated"`
	Mode          string        `json:"mode"`
	Prompt        string        `json:"prompt"`
	Loading       bool          `json:"loading"`
	Error         string        `json:"error"`
	InputPreview  string        `json:"input_preview,omitempty"`
	ResultImage   string        `json:"result_image,omitempty"`
	ResultText    string        `json:"result_text,omitempty"`
	History       []historyItem `json:"history"`
}

type historyItem struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
	Image  string `json:"image"`
}

func toStateResponse(snap session.Snapshot) stateResponse {
	resp := stateResponse{
		Authenticated: snap.Authenticated,
		Mode:          string(snap.Mode),
		Prompt:        snap.Prompt,
		Loading:       snap.Loading,
		Error:         snap.ErrMessage,
		InputPreview:  imgutil.ToDataURL(snap.InputImage),
		History:       make([]historyItem, 0, len(snap.History)),
	}

	if snap.Result != nil {
		resp.ResultImage = imgutil.ToDataURL(snap.Result.Image)
		resp.ResultText = snap.Result.Text
	}

	for _, e := range snap.History {
		img := e.Image
		resp.History = append(resp.History, historyItem{
			ID:     e.ID,
			Prompt: e.Prompt,
			Image:  imgutil.ToDataURL(&img),
		})
	}

	return resp
}

func (s *Server) handleIndex(c *gin.Context, ctrl *session.Controller) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Authenticated": ctrl.Snapshot().Authenticated,
	})
}

func (s *Server) handleState(c *gin.Context, ctrl *session.Controller) {
	c.JSON(http.StatusOK, toStateResponse(ctrl.Snapshot()))
}

// dispatchAndReply はコマンドを1つ実行し、更新後の状態を返します。
// 検証エラーはバナーに載って返るため、HTTP 上は 200 で運びます。
// ビジー拒否のみ 409 で区別します。
func (s *Server) dispatchAndReply(c *gin.Context, ctrl *session.Controller, ctx context.Context, cmds ...session.Command) {
	for _, cmd := range cmds {
		if err := ctrl.Dispatch(ctx, cmd); err != nil {
			if errors.Is(err, session.ErrBusy) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			break
		}
	}
	c.JSON(http.StatusOK, toStateResponse(ctrl.Snapshot()))
}

func (s *Server) handleSubmitKey(c *gin.Context, ctrl *session.Controller) {
	var body struct {
		Key string `json:"key"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.SubmitKey{Raw: body.Key})
}

func (s *Server) handleClearKey(c *gin.Context, ctrl *session.Controller) {
	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.ClearKey{})
}

func (s *Server) handleSwitchMode(c *gin.Context, ctrl *session.Controller) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.SwitchMode{Mode: domain.Mode(body.Mode)})
}

// handleAttachImage はファイルピッカー由来の data URL を受け取ります。
// MIME は data URL ヘッダを優先し、ファイル側の宣言タイプにフォールバックします。
func (s *Server) handleAttachImage(c *gin.Context, ctrl *session.Controller) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUp)

	var body struct {
		DataURL      string `json:"data_url"`
		DeclaredMIME string `json:"declared_mime"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large or malformed"})
		return
	}
	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.AttachImage{
		DataURL:      body.DataURL,
		DeclaredMIME: body.DeclaredMIME,
	})
}

// handleAttachImageURL は URL 指定での参照画像取り込みです。
// ダウンロードと SSRF 検証は Fetcher に委譲します。
func (s *Server) handleAttachImageURL(c *gin.Context, ctrl *session.Controller) {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	img, err := s.fetcher.Fetch(c.Request.Context(), body.URL)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}

	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.AttachImage{
		DataURL:      imgutil.ToDataURL(img),
		DeclaredMIME: img.MIMEType,
	})
}

func (s *Server) handleClearImage(c *gin.Context, ctrl *session.Controller) {
	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.ClearImage{})
}

// handleGenerate は生成を実行します。外部呼び出しにはタイムアウト付きの
// コンテキストを使い、期限切れはエラーバナーとしてそのまま表示されます。
func (s *Server) handleGenerate(c *gin.Context, ctrl *session.Controller) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	s.dispatchAndReply(c, ctrl, ctx,
		session.SetPrompt{Text: body.Prompt},
		session.Generate{},
	)
}

func (s *Server) handleRecall(c *gin.Context, ctrl *session.Controller) {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.RecallEntry{ID: body.ID})
}

func (s *Server) handleClearHistory(c *gin.Context, ctrl *session.Controller) {
	s.dispatchAndReply(c, ctrl, c.Request.Context(), session.ClearHistory{})
}
