package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GenAIClient produces free text from a prompt. The text is supposed to
// be a JSON array of event objects but nothing guarantees it; callers
// must run the output through schedule.Repair.
type GenAIClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GenAIHTTPClient talks to a Gemini-style generateContent REST API.
type GenAIHTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewGenAIHTTPClient(baseURL, apiKey, model string, httpClient *http.Client) *GenAIHTTPClient {
	return &GenAIHTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type genaiPart struct {
	Text string `json:"text"`
}

type genaiContent struct {
	Parts []genaiPart `json:"parts"`
}

type genaiRequest struct {
	Contents []genaiContent `json:"contents"`
}

type genaiResponse struct {
	Candidates []struct {
		Content genaiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GenAIHTTPClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.baseURL == "" || c.model == "" {
		return "", ErrInvalidInput
	}

	body, err := json.Marshal(genaiRequest{
		Contents: []genaiContent{{Parts: []genaiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generative backend unexpected status: %d", resp.StatusCode)
	}

	var parsed genaiResponse
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(&parsed); err != nil {
		return "", err
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generative backend returned no candidates")
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", errors.New("generative backend returned empty text")
	}
	return text, nil
}

func DefaultGenAIHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
