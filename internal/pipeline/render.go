package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// Renderer serialises prediction results
type Renderer struct {
	format string
}

// NewRenderer creates a renderer for json, yaml or text output
func NewRenderer(format string) (*Renderer, error) {
	switch strings.ToLower(format) {
	case FormatJSON, FormatYAML, FormatText:
		return &Renderer{format: strings.ToLower(format)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: json, yaml, text)", format)
	}
}

// Render writes result to w in the renderer's format
func (r *Renderer) Render(w io.Writer, result *PredictResult) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return r.renderText(w, result)
	}
}

// RenderFile writes result to path
func (r *Renderer) RenderFile(path string, result *PredictResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return r.Render(f, result)
}

// Extension returns the file extension for the renderer's format
func (r *Renderer) Extension() string {
	if r.format == FormatText {
		return ".txt"
	}
	return "." + r.format
}

func (r *Renderer) renderText(w io.Writer, result *PredictResult) error {
	p := result.Prediction
	b := p.Breakdown

	var sb strings.Builder
	fmt.Fprintf(&sb, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(&sb, "  Market Viability: %s %q\n", result.Target, result.Key)
	fmt.Fprintf(&sb, "═══════════════════════════════════════════════════════════\n\n")
	fmt.Fprintf(&sb, "  Viability index:  %d/100\n", p.ViabilityIndex)
	fmt.Fprintf(&sb, "  Risk level:       %s\n", p.RiskLevel)
	fmt.Fprintf(&sb, "  Sentiment:        %.2f\n", p.SentimentScore)
	fmt.Fprintf(&sb, "  Traffic tier:     %s\n", p.TrafficTier)
	fmt.Fprintf(&sb, "  Ads status:       %s\n", p.AdsStatus)
	if result.Leads > 0 {
		fmt.Fprintf(&sb, "  Leads:            %d\n", result.Leads)
	}
	fmt.Fprintf(&sb, "  Competitors:      %d\n\n", p.CompetitorsAnalyzed)
	fmt.Fprintf(&sb, "  Breakdown:\n")
	fmt.Fprintf(&sb, "    sentiment  %5.1f × %.2f\n", b.SentimentNormalized, b.Weights.Sentiment)
	fmt.Fprintf(&sb, "    traffic    %5d × %.2f\n", b.TrafficScore, b.Weights.Traffic)
	fmt.Fprintf(&sb, "    ads        %5d × %.2f\n\n", b.AdsScore, b.Weights.Ads)
	fmt.Fprintf(&sb, "  %s\n", p.Recommendation)

	_, err := io.WriteString(w, sb.String())
	return err
}
