package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doctriage/doctriage/internal/taxonomy"
	"github.com/doctriage/doctriage/pkg/models"
)

// maxExcerptChars caps how much extracted text goes into a prompt.
const maxExcerptChars = 4000

// firstPassPrompt asks for a single categorization in the marker format
// the parser expects.
func firstPassPrompt(ref string, f models.DocumentFeatures) string {
	var b strings.Builder
	b.WriteString("You are a document classification assistant.\n")
	b.WriteString("Classify the document into exactly one of these categories:\n")
	for _, c := range taxonomy.Categories() {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\n")
	writeDocumentBlock(&b, ref, f)
	b.WriteString("\nRespond in exactly this format:\n")
	b.WriteString("Category: <one category from the list>\n")
	b.WriteString("Confidence: <number between 0.0 and 1.0>\n")
	b.WriteString("Reasoning: <brief explanation of the evidence>\n")
	return b.String()
}

// detailedPrompt asks for per-category evidence scores before the final
// answer, seeded with the category the first pass produced.
func detailedPrompt(ref string, f models.DocumentFeatures, initial models.Category) string {
	var b strings.Builder
	b.WriteString("You are a document classification assistant performing a detailed second review.\n")
	fmt.Fprintf(&b, "An initial quick pass suggested the category %q with low confidence. Re-examine the evidence from scratch.\n\n", initial)
	writeDocumentBlock(&b, ref, f)
	b.WriteString("\nFor each category below, assign an evidence score from 0 (no evidence) to 10 (conclusive evidence):\n")
	for _, c := range taxonomy.Categories() {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nThen conclude in exactly this format:\n")
	b.WriteString("Category: <the category with the strongest evidence>\n")
	b.WriteString("Confidence: <number between 0.0 and 1.0>\n")
	b.WriteString("Reasoning: <which evidence decided it, and what you ruled out>\n")
	return b.String()
}

func writeDocumentBlock(b *strings.Builder, ref string, f models.DocumentFeatures) {
	fmt.Fprintf(b, "Document: %s\n", filepath.Base(ref))
	if f.Extension != "" {
		fmt.Fprintf(b, "File type: %s\n", f.Extension)
	}
	if f.Size > 0 {
		fmt.Fprintf(b, "Size: %d bytes\n", f.Size)
	}
	if f.TextContent != "" {
		excerpt := f.TextContent
		if len(excerpt) > maxExcerptChars {
			excerpt = excerpt[:maxExcerptChars]
		}
		fmt.Fprintf(b, "Content:\n---\n%s\n---\n", excerpt)
	}
}
