// Package ollama talks to an Ollama server for image captions and text
// generation.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/user/framescribe/pkg/ports"
)

const (
	// DefaultModel is a vision-capable model used for both oracles.
	DefaultModel = "llava"

	// CaptionPrompt asks the model for a JSON caption.
	CaptionPrompt = `Describe this image in JSON verbatim: {"description": string, "confidence": f32}: `

	defaultTimeout = 2 * time.Minute
)

// ErrEmptyCaption is returned when the model produced no caption text.
var ErrEmptyCaption = errors.New("ollama: empty caption")

// jsonFormat constrains caption output to a JSON object.
var jsonFormat = json.RawMessage(`"json"`)

// Options configures the client.
type Options struct {
	// BaseURL of the server. Empty uses OLLAMA_HOST, then the local default.
	BaseURL      string
	CaptionModel string
	SummaryModel string
	Timeout      time.Duration
}

// Client implements ports.Captioner and ports.TextGenerator on the
// official Ollama API client.
type Client struct {
	api          *api.Client
	captionModel string
	summaryModel string
}

// New creates a Client. Zero options fall back to defaults.
func New(opts Options) (*Client, error) {
	if opts.CaptionModel == "" {
		opts.CaptionModel = DefaultModel
	}
	if opts.SummaryModel == "" {
		opts.SummaryModel = opts.CaptionModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	var client *api.Client
	if opts.BaseURL == "" {
		var err error
		if client, err = api.ClientFromEnvironment(); err != nil {
			return nil, fmt.Errorf("ollama: %w", err)
		}
	} else {
		base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("ollama: base url: %w", err)
		}
		if base.Scheme == "" || base.Host == "" {
			return nil, fmt.Errorf("ollama: base url %q must be absolute", opts.BaseURL)
		}
		client = api.NewClient(base, &http.Client{Timeout: opts.Timeout})
	}

	return &Client{
		api:          client,
		captionModel: opts.CaptionModel,
		summaryModel: opts.SummaryModel,
	}, nil
}

// Caption encodes img as PNG and asks the model to describe it.
func (c *Client) Caption(ctx context.Context, img image.Image) (ports.Caption, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ports.Caption{}, fmt.Errorf("ollama: encode png: %w", err)
	}

	text, err := c.generate(ctx, &api.GenerateRequest{
		Model:  c.captionModel,
		Prompt: CaptionPrompt,
		Images: []api.ImageData{buf.Bytes()},
		Format: jsonFormat,
	})
	if err != nil {
		return ports.Caption{}, err
	}
	if strings.TrimSpace(text) == "" {
		return ports.Caption{}, ErrEmptyCaption
	}
	return ParseCaption(text)
}

// Generate asks the model to complete prompt. Blank output is returned as is.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, &api.GenerateRequest{Model: c.summaryModel, Prompt: prompt})
}

func (c *Client) generate(ctx context.Context, req *api.GenerateRequest) (string, error) {
	stream := false
	req.Stream = &stream

	var sb strings.Builder
	err := c.api.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return sb.String(), nil
}

// ParseCaption decodes a caption from model output, tolerating a Markdown
// code fence around the JSON.
func ParseCaption(text string) (ports.Caption, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var caption ports.Caption
	if err := json.Unmarshal([]byte(text), &caption); err != nil {
		return ports.Caption{}, fmt.Errorf("ollama: parse caption: %w", err)
	}
	return caption, nil
}

var (
	_ ports.Captioner     = (*Client)(nil)
	_ ports.TextGenerator = (*Client)(nil)
)
