package rag

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"policyrag/internal/config"
	"policyrag/internal/domain/policymodel"
	"policyrag/internal/rag/vectorstore"
)

// selectContext keeps hits, in relevance order, while their combined text
// stays inside the character budget. The top hit is always kept even when it
// alone overflows the budget, otherwise a long chunk could starve the model
// of any context at all.
func selectContext(hits []vectorstore.Hit, budget int) []vectorstore.Hit {
	kept := make([]vectorstore.Hit, 0, len(hits))
	total := 0
	for _, hit := range hits {
		size := len(hit.Payload.Text)
		if len(kept) > 0 && total+size > budget {
			break
		}
		kept = append(kept, hit)
		total += size
	}
	return kept
}

// sourceTag renders the citation handle placed before each context chunk,
// e.g. "[S2] (Access Policy v2.1, p.3-4)".
func sourceTag(n int, p vectorstore.Payload) string {
	name := p.DocumentName
	if name == "" {
		name = p.DocumentId
	}
	if p.Version != "" {
		name = fmt.Sprintf("%s v%s", name, p.Version)
	}
	pages := strconv.Itoa(p.PageFirst)
	if p.PageLast > p.PageFirst {
		pages = fmt.Sprintf("%d-%d", p.PageFirst, p.PageLast)
	}
	return fmt.Sprintf("[S%d] (%s, p.%s)", n, name, pages)
}

// buildPrompt places the retrieved chunks, most relevant first and each
// tagged with its source, ahead of the question.
func buildPrompt(question string, kept []vectorstore.Hit) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, hit := range kept {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sourceTag(i+1, hit.Payload))
		b.WriteString(": ")
		b.WriteString(hit.Payload.Text)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

var citationMarker = regexp.MustCompile(`\[S(\d+)\]`)

// citedHits filters the supplied hits down to the ones the model cited via
// [Sn] markers. When the mode is "all", or the model emitted no markers, every
// supplied hit counts as cited.
func citedHits(answer string, kept []vectorstore.Hit, mode string) []vectorstore.Hit {
	if mode != "self-reported" {
		return kept
	}
	cited := make(map[int]bool)
	for _, match := range citationMarker.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(match[1])
		if err == nil && n >= 1 && n <= len(kept) {
			cited[n-1] = true
		}
	}
	if len(cited) == 0 {
		return kept
	}
	out := make([]vectorstore.Hit, 0, len(cited))
	for i, hit := range kept {
		if cited[i] {
			out = append(out, hit)
		}
	}
	return out
}

const excerptLimit = 240

// sourceRefs maps cited hits onto answer citations, deduplicated by
// (document, page range, version) with the first occurrence winning.
func sourceRefs(hits []vectorstore.Hit) []policymodel.SourceRef {
	type refKey struct {
		doc     string
		first   int
		last    int
		version string
	}
	seen := make(map[refKey]bool)
	refs := make([]policymodel.SourceRef, 0, len(hits))
	for _, hit := range hits {
		p := hit.Payload
		key := refKey{doc: p.DocumentId, first: p.PageFirst, last: p.PageLast, version: p.Version}
		if seen[key] {
			continue
		}
		seen[key] = true
		refs = append(refs, policymodel.SourceRef{
			DocumentId:   p.DocumentId,
			DocumentName: p.DocumentName,
			PageFirst:    p.PageFirst,
			PageLast:     p.PageLast,
			Excerpt:      excerpt(p.Text),
			PolicyType:   p.PolicyType,
			Version:      p.Version,
			Jurisdiction: p.Jurisdiction,
			Score:        hit.Score,
		})
	}
	return refs
}

// aggregateRoles merges the role mentions of every cited chunk, sorted and
// unique.
func aggregateRoles(hits []vectorstore.Hit) []string {
	seen := make(map[string]bool)
	for _, hit := range hits {
		for _, role := range hit.Payload.Roles {
			seen[role] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit]) + "..."
}

// noContextAnswer is returned without ever calling the model.
func noContextAnswer() *policymodel.Answer {
	return &policymodel.Answer{
		Text:         config.NoContextAnswer,
		ContextCount: 0,
	}
}
