package text

import "strings"

const (
	paragraphSeparator = "\n\n"

	leadingScanLimit      = 5
	eventTitleMaxRunes    = 80
	navFragmentMaxRunes   = 100
	authorBioMaxRunes     = 500
	authorBioScanWindow   = 3
	authorBioMinIndicator = 2
)

// CleanOptions carries per-article signals for the cleaner.
type CleanOptions struct {
	// Byline is the article's author attribution; empty disables bio removal.
	Byline string
}

// Pass is one independent cleaning step over normalized markdown.
type Pass func(text string, opts CleanOptions) string

// Passes returns the cleaning steps in the order Clean applies them.
// Later passes assume earlier ones already ran.
func Passes() []Pass {
	return []Pass{
		func(s string, _ CleanOptions) string { return RemoveLeadingMetadata(s) },
		func(s string, _ CleanOptions) string { return RemoveDuplicateParagraphs(s) },
		func(s string, _ CleanOptions) string { return RemoveEventPromotions(s) },
		func(s string, _ CleanOptions) string { return RemoveTrailingNavigation(s) },
		func(s string, _ CleanOptions) string { return RemoveCreditLines(s) },
		func(s string, _ CleanOptions) string { return RemoveCommentCounters(s) },
		func(s string, o CleanOptions) string { return RemoveTrailingAuthorBio(s, o.Byline) },
		func(s string, _ CleanOptions) string { return NormalizeWhitespace(s) },
	}
}

// Clean strips publisher boilerplate from extracted article markdown.
//
// Every pass only ever deletes text, so the pipeline is re-applied until the
// output stops changing. That makes Clean idempotent even when a late pass
// exposes work for an earlier one (a credit suffix turning two paragraphs into
// duplicates, for example). Passes that remove at most one match per run
// (trailing author bio, leading dateline) therefore remove every stacked
// match under Clean.
func Clean(text string, opts CleanOptions) string {
	passes := Passes()
	for {
		out := text
		for _, pass := range passes {
			out = pass(out, opts)
		}
		if out == text {
			return out
		}
		text = out
	}
}

func splitParagraphs(text string) []string {
	return strings.Split(text, paragraphSeparator)
}

func joinParagraphs(paragraphs []string) string {
	return strings.Join(paragraphs, paragraphSeparator)
}

func dropIndexes(paragraphs []string, remove map[int]bool) string {
	kept := make([]string, 0, len(paragraphs)-len(remove))
	for i, p := range paragraphs {
		if !remove[i] {
			kept = append(kept, p)
		}
	}
	return joinParagraphs(kept)
}

// RemoveLeadingMetadata removes a dateline such as "2:07 PM PST · February 28, 2026"
// found in the first five paragraphs, together with the blank paragraphs and
// bare labels ("In Brief", "Posted:") directly above it.
// Without the timestamp anchor nothing is removed.
func RemoveLeadingMetadata(text string) string {
	paragraphs := splitParagraphs(text)

	anchor := -1
	for i := 0; i < len(paragraphs) && i < leadingScanLimit; i++ {
		if timestampLine.MatchString(strings.TrimSpace(paragraphs[i])) {
			anchor = i
			break
		}
	}
	if anchor == -1 {
		return text
	}

	remove := map[int]bool{anchor: true}
	for i := anchor - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(paragraphs[i])
		if trimmed != "" && !metadataLabels.MatchString(trimmed) {
			break
		}
		remove[i] = true
	}

	return dropIndexes(paragraphs, remove)
}

// RemoveDuplicateParagraphs drops every paragraph whose trimmed text already
// appeared earlier. Blank paragraphs are always kept.
func RemoveDuplicateParagraphs(text string) string {
	paragraphs := splitParagraphs(text)
	seen := make(map[string]bool, len(paragraphs))
	result := make([]string, 0, len(paragraphs))

	for _, para := range paragraphs {
		normalized := strings.TrimSpace(para)
		if normalized == "" {
			result = append(result, para)
			continue
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, para)
	}

	return joinParagraphs(result)
}

// RemoveEventPromotions drops "City, ST | Month D, YYYY" lines and the short
// event title that usually precedes them.
func RemoveEventPromotions(text string) string {
	paragraphs := splitParagraphs(text)
	remove := make(map[int]bool)

	for i, para := range paragraphs {
		if !eventLocationDate.MatchString(strings.TrimSpace(para)) {
			continue
		}
		remove[i] = true

		if i == 0 {
			continue
		}
		prev := strings.TrimSpace(paragraphs[i-1])
		if prev != "" && CountRunes(prev) <= eventTitleMaxRunes && !strings.Contains(prev, ". ") {
			remove[i-1] = true
		}
	}

	if len(remove) == 0 {
		return text
	}
	return dropIndexes(paragraphs, remove)
}

// RemoveTrailingNavigation cuts "## Related", "## Latest in …" and similar
// sections off the end of the document. Once a blank paragraph or heading has
// been cut, short fragments without sentence structure are cut too; the scan
// stops at the first paragraph that reads like prose.
func RemoveTrailingNavigation(text string) string {
	paragraphs := splitParagraphs(text)
	cut := len(paragraphs)

	for i := len(paragraphs) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(paragraphs[i])

		if trimmed == "" || isNavigationHeading(trimmed) {
			cut = i
			continue
		}

		inNoiseZone := cut < len(paragraphs)
		if inNoiseZone &&
			CountRunes(trimmed) <= navFragmentMaxRunes &&
			!strings.Contains(trimmed, ". ") &&
			!sentenceEnd.MatchString(trimmed) {
			cut = i
			continue
		}

		break
	}

	if cut == len(paragraphs) {
		return text
	}
	return joinParagraphs(paragraphs[:cut])
}

func isNavigationHeading(s string) bool {
	for _, re := range navigationHeadings {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// RemoveCreditLines strips "Credit: …" photo credits, whether they fill a whole
// line or trail a caption.
func RemoveCreditLines(text string) string {
	text = creditLine.ReplaceAllString(text, "")
	return whitespaceLine.ReplaceAllString(text, "")
}

// RemoveCommentCounters strips "[80 Comments](…)" links and bare "42 Comments" lines.
func RemoveCommentCounters(text string) string {
	text = commentLink.ReplaceAllString(text, "")
	return commentCount.ReplaceAllString(text, "")
}

// RemoveTrailingAuthorBio removes at most one author bio among the last three
// paragraphs. A bio starts with the byline's first name, is at most 500
// characters and contains at least two indicator phrases ("is a", "reporter",
// "based in", ...).
func RemoveTrailingAuthorBio(text, byline string) string {
	fields := strings.Fields(byline)
	if len(fields) == 0 {
		return text
	}
	firstName := fields[0]
	if CountRunes(firstName) < 2 {
		return text
	}

	paragraphs := splitParagraphs(text)
	start := len(paragraphs) - authorBioScanWindow
	if start < 0 {
		start = 0
	}

	for i := len(paragraphs) - 1; i >= start; i-- {
		para := strings.TrimSpace(paragraphs[i])
		if para == "" || CountRunes(para) > authorBioMaxRunes {
			continue
		}
		if !strings.HasPrefix(para, firstName) {
			continue
		}
		if countBioIndicators(para) >= authorBioMinIndicator {
			return dropIndexes(paragraphs, map[int]bool{i: true})
		}
	}

	return text
}

func countBioIndicators(s string) int {
	n := 0
	for _, re := range authorBioIndicators {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// NormalizeWhitespace collapses runs of three or more newlines and trims the text.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(excessNewlines.ReplaceAllString(text, paragraphSeparator))
}
