// Package conclusion asks a hosted language model prompt for a short
// natural-language reading of a binned spectrum.
package conclusion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/ChrisMcGann/rosetta/pkg/config"
	"github.com/ChrisMcGann/rosetta/pkg/core"
)

// NotConfigured is returned as the conclusion text when no API key is set.
const NotConfigured = "OPENAI_API_KEY is not configured; set it in the environment or the config file to enable conclusions"

// ErrNoText is returned when a successful response carries no usable text.
var ErrNoText = errors.New("no conclusion text in response")

// Client sends spectra to a stored prompt through the Responses API.
type Client struct {
	api           openai.Client
	apiKey        string
	promptID      string
	promptVersion string
	model         string
	timeout       time.Duration
	maxInput      int
}

// New creates a client from cfg. Extra options are applied after the ones
// derived from cfg.
func New(cfg config.ConclusionConfig, opts ...option.RequestOption) *Client {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
	}
	return &Client{
		api:           openai.NewClient(append(base, opts...)...),
		apiKey:        cfg.APIKey,
		promptID:      cfg.PromptID,
		promptVersion: cfg.PromptVersion,
		model:         cfg.Model,
		timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxInput:      cfg.MaxInputLength,
	}
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// BuildInput renders the detector and bins as "x:cps" pairs with three
// decimals, truncated to maxLen bytes when maxLen is positive.
func BuildInput(det core.Detector, bins []core.SpectrumBin, maxLen int) string {
	pairs := make([]string, len(bins))
	for i, b := range bins {
		pairs[i] = fmt.Sprintf("%.3f:%.3f", b.X, b.CPS)
	}
	input := fmt.Sprintf("Detector: %s\nEspectro (m/z:cps): %s", det, strings.Join(pairs, " "))
	if maxLen > 0 && len(input) > maxLen {
		input = input[:maxLen]
	}
	return input
}

// Conclude sends the spectrum and returns the model's text. Without an API
// key it returns NotConfigured and no error.
func (c *Client) Conclude(ctx context.Context, det core.Detector, bins []core.SpectrumBin) (string, error) {
	if !c.Configured() {
		return NotConfigured, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := responses.ResponseNewParams{
		Prompt: responses.ResponsePromptParam{ID: c.promptID},
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(BuildInput(det, bins, c.maxInput)),
		},
	}
	if c.promptVersion != "" {
		params.Prompt.Version = openai.String(c.promptVersion)
	}
	if c.model != "" {
		params.Model = shared.ResponsesModel(c.model)
	}

	resp, err := c.api.Responses.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("API error: %d - %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("conclusion request failed: %w", err)
	}

	text := resp.OutputText()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
