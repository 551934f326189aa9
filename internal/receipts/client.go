package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// Client calls the receipt-extraction endpoint with a multipart image
// upload and decodes the structured receipt it returns.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a receipt-extraction client for the given endpoint URL.
// Extraction involves a vision model round trip, so the timeout is generous.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Process uploads the image bytes and returns the extracted receipt.
func (c *Client) Process(ctx context.Context, filename, contentType string, image []byte) (*Receipt, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create multipart: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("extraction error %d: %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("extraction error %d: %s", resp.StatusCode, string(respBody))
	}

	var receipt Receipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}

	if receipt.MerchantName == "" {
		return nil, fmt.Errorf("extraction missing merchant_name")
	}

	return &receipt, nil
}
