package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Webhook posts report chunks and chart images to a Discord channel
// webhook. A non-2xx response is returned as an error carrying the status
// and response body; the caller decides whether to log or abort.
type Webhook struct {
	url   string
	httpc *http.Client
}

func New(webhookURL string) *Webhook {
	return &Webhook{url: webhookURL, httpc: http.DefaultClient}
}

// DeliverText posts one message chunk. Chunks must already be within the
// transport size limit; the webhook rejects oversized content.
func (w *Webhook) DeliverText(content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	resp, err := w.httpc.Post(w.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	return checkDelivery(resp)
}

// DeliverImage posts a PNG with a caption as a multipart upload.
func (w *Webhook) DeliverImage(png []byte, caption string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("content", caption); err != nil {
		return fmt.Errorf("writing caption field: %w", err)
	}
	part, err := mw.CreateFormFile("file", "chart.png")
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	resp, err := w.httpc.Post(w.url, mw.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	return checkDelivery(resp)
}

func checkDelivery(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if readErr != nil {
		return fmt.Errorf("reading response: %w", readErr)
	}
	return nil
}
