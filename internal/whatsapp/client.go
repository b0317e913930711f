package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Client talks to the Meta Graph API for one WhatsApp business number.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	token         string
	phoneNumberID string
}

func NewClient(token, phoneNumberID, graphVersion string) *Client {
	if graphVersion == "" {
		graphVersion = "v18.0"
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		baseURL:       "https://graph.facebook.com/" + graphVersion,
		token:         token,
		phoneNumberID: phoneNumberID,
	}
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

func (c *Client) SendText(ctx context.Context, to, body string) error {
	const op = "whatsapp.Client.SendText"

	payload := textPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}

	if err := c.postJSON(ctx, c.messagesURL(), payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

type audioPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Audio            mediaRef `json:"audio"`
}

type mediaRef struct {
	ID string `json:"id"`
}

// SendAudio sends a previously uploaded voice note by media ID.
func (c *Client) SendAudio(ctx context.Context, to, mediaID string) error {
	const op = "whatsapp.Client.SendAudio"

	payload := audioPayload{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "audio",
		Audio:            mediaRef{ID: mediaID},
	}

	if err := c.postJSON(ctx, c.messagesURL(), payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MediaURL looks up the short-lived download link for an inbound media ID.
func (c *Client) MediaURL(ctx context.Context, mediaID string) (string, error) {
	const op = "whatsapp.Client.MediaURL"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+mediaID, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return result.URL, nil
}

// DownloadMedia fetches media bytes from a URL returned by MediaURL. The
// link requires the same bearer token as the API itself.
func (c *Client) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	const op = "whatsapp.Client.DownloadMedia"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

// UploadMedia uploads a local audio file and returns the media ID to send.
func (c *Client) UploadMedia(ctx context.Context, filePath, mimeType string) (string, error) {
	const op = "whatsapp.Client.UploadMedia"

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.WriteField("type", mimeType); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s/%s/media", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return result.ID, nil
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
}

func (c *Client) postJSON(ctx context.Context, url string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	return nil
}
