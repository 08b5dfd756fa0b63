package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/template"
	"github.com/ignite/cad-normalizer/internal/transform"
)

// ErrNoTemplate is returned when no stored template scores high enough
// for an export.
var ErrNoTemplate = errors.New("no matching template for export")

// Processor runs one export end to end: vendor detection, template
// selection, mapping resolution, transformation. All collaborators are
// injected; Processor holds no global state.
type Processor struct {
	detector   *template.VendorDetector
	matcher    *template.Matcher
	applier    *template.Applier
	engine     *transform.Engine
	targetTool string
}

// NewProcessor wires a processor from its collaborators.
func NewProcessor(detector *template.VendorDetector, matcher *template.Matcher, applier *template.Applier, targetTool string) *Processor {
	return &Processor{
		detector:   detector,
		matcher:    matcher,
		applier:    applier,
		engine:     transform.NewEngine(),
		targetTool: targetTool,
	}
}

// Result reports what one export run produced.
type Result struct {
	Vendor           string                     `json:"vendor"`
	VendorConfidence float64                    `json:"vendorConfidence"`
	TemplateID       string                     `json:"templateId,omitempty"`
	TemplateName     string                     `json:"templateName,omitempty"`
	SimilarityScore  int                        `json:"similarityScore,omitempty"`
	Header           []string                   `json:"header"`
	Rows             []transform.TransformedRow `json:"rows"`
}

// Process reads a CSV export and transforms it with the best stored
// template for the processor's target tool.
func (p *Processor) Process(ctx context.Context, r io.Reader) (*Result, error) {
	header, rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("export has no header row")
	}

	vendor, conf := p.detector.Detect(header)
	logger.Info("vendor detected", "vendor", vendor, "confidence", fmt.Sprintf("%.2f", conf))

	suggestions, err := p.matcher.Suggest(ctx, header, p.targetTool)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, ErrNoTemplate
	}
	best := suggestions[0]

	return p.runTemplate(ctx, header, rows, best.Template, &Result{
		Vendor:           vendor,
		VendorConfidence: conf,
		SimilarityScore:  best.Score,
	})
}

// ProcessWithTemplate reads a CSV export and transforms it with an
// explicitly chosen template, bypassing matching.
func (p *Processor) ProcessWithTemplate(ctx context.Context, r io.Reader, tmpl template.Template) (*Result, error) {
	header, rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, fmt.Errorf("export has no header row")
	}

	vendor, conf := p.detector.Detect(header)
	return p.runTemplate(ctx, header, rows, tmpl, &Result{
		Vendor:           vendor,
		VendorConfidence: conf,
	})
}

func (p *Processor) runTemplate(ctx context.Context, header []string, rows []transform.Row, tmpl template.Template, res *Result) (*Result, error) {
	mappings := p.applier.Resolve(ctx, tmpl, header)
	if len(mappings) == 0 {
		return nil, fmt.Errorf("template %s: %w", tmpl.ID, ErrNoTemplate)
	}

	res.TemplateID = tmpl.ID
	res.TemplateName = tmpl.Name
	res.Header = header
	res.Rows = p.engine.Transform(rows, mappings, nil)

	logger.Info("export transformed",
		"template_id", tmpl.ID, "rows", len(res.Rows), "mappings", len(mappings))
	return res, nil
}
