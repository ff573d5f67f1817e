package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/dialectica/internal/model"
)

// Renderer writes validated results as output records and digests.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the result record. An empty path or "-" writes to
// stdout.
func (r *Renderer) RenderJSON(result *model.Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RenderMarkdown writes a human-readable digest of the result.
func (r *Renderer) RenderMarkdown(query model.Query, result *model.Result, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", query.Text)
	fmt.Fprintf(&b, "Query ID: `%s`\n\n", result.QueryID)

	writeClaim(&b, "Pro", result.ClaimPro)
	writeClaim(&b, "Con", result.ClaimCon)

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("Every perspective above is grounded in the evidence documents it cites.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func writeClaim(b *strings.Builder, label string, claim *model.Claim) {
	fmt.Fprintf(b, "## %s: %s\n\n", label, claim.Text)
	for _, p := range claim.Perspectives {
		fmt.Fprintf(b, "- %s (evidence: %s)\n", p.Text, strings.Join(p.DocIDs, ", "))
	}
	b.WriteString("\n")
}

// RenderSummary prints a terse digest to stdout.
func (r *Renderer) RenderSummary(query model.Query, result *model.Result) {
	fmt.Printf("%s: %s\n", result.QueryID, query.Text)
	fmt.Printf("  PRO %s (%d perspectives, evidence %s)\n",
		result.ClaimPro.Text, len(result.ClaimPro.Perspectives), strings.Join(result.ClaimPro.DocIDs(), ","))
	fmt.Printf("  CON %s (%d perspectives, evidence %s)\n",
		result.ClaimCon.Text, len(result.ClaimCon.Perspectives), strings.Join(result.ClaimCon.DocIDs(), ","))
}
