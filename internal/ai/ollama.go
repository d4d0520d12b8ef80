package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type OllamaClient struct {
	BaseURL string
	Model   string

	// client enforces the generous non-streaming timeout; streamClient has
	// none, the request context governs streaming.
	client       *http.Client
	streamClient *http.Client
}

func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaClient{
		BaseURL:      baseURL,
		Model:        model,
		client:       &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

type ollamaChatReq struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResp struct {
	Message  Message `json:"message"`
	Response string  `json:"response"`
	Error    string  `json:"error,omitempty"`
}

type ollamaStreamResp struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

const apologyFmt = "I apologize, but I'm unable to process your request at this time. Please try again later. Error: %v"

func (c *OllamaClient) Chat(ctx context.Context, messages []Message, temperature float64) Result {
	text, err := c.doChat(ctx, messages, temperature)
	if err != nil {
		return Result{
			Text:  fmt.Sprintf(apologyFmt, err),
			Model: "error",
		}
	}
	return Result{Text: text, Model: c.Model}
}

func (c *OllamaClient) doChat(ctx context.Context, messages []Message, temperature float64) (string, error) {
	resp, err := c.post(ctx, c.client, messages, temperature, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded ollamaChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != "" {
		return "", errors.New(decoded.Error)
	}

	text := decoded.Message.Content
	if text == "" {
		// older generate-style responses carry the text in "response"
		text = decoded.Response
	}
	if text == "" {
		text = "Unable to generate response."
	}
	return text, nil
}

func (c *OllamaClient) StreamChat(ctx context.Context, messages []Message, temperature float64) <-chan string {
	fragments := make(chan string, 16)

	go func() {
		defer close(fragments)

		resp, err := c.post(ctx, c.streamClient, messages, temperature, true)
		if err != nil {
			fragments <- fmt.Sprintf(apologyFmt, err)
			return
		}
		defer resp.Body.Close()

		sc := bufio.NewScanner(resp.Body)
		buf := make([]byte, 0, 64*1024)
		sc.Buffer(buf, 2*1024*1024)

		for sc.Scan() {
			line := sc.Bytes()
			if len(line) == 0 {
				continue
			}

			var decoded ollamaStreamResp
			if err := json.Unmarshal(line, &decoded); err != nil {
				// malformed lines are skipped, not fatal
				continue
			}
			if decoded.Error != "" {
				select {
				case fragments <- fmt.Sprintf(apologyFmt, errors.New(decoded.Error)):
				case <-ctx.Done():
				}
				return
			}
			if decoded.Message.Content != "" {
				select {
				case fragments <- decoded.Message.Content:
				case <-ctx.Done():
					return
				}
			}
			if decoded.Done {
				return
			}
		}
		// scanner errors and EOF both just end the sequence
	}()

	return fragments
}

func (c *OllamaClient) post(ctx context.Context, client *http.Client, messages []Message, temperature float64, stream bool) (*http.Response, error) {
	body, err := json.Marshal(ollamaChatReq{
		Model:    c.Model,
		Messages: messages,
		Stream:   stream,
		Options:  ollamaOptions{Temperature: temperature},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/chat", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("ollama: status %d", resp.StatusCode)
	}
	return resp, nil
}
