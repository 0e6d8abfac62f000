package text

import "regexp"

// ws matches any Unicode space. Publishers pad datelines with &nbsp;, which
// \s alone does not match.
const ws = `[\s\p{Zs}\x{FEFF}]`

// Leading metadata: a timestamp line such as "2:07 PM PST · February 28, 2026"
// anchors the removal; bare labels are only removed next to that anchor.
var timestampLine = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}` + ws + `*(?:AM|PM)` + ws + `+[A-Z]{2,4}` + ws +
	`*[·•]` + ws + `*\w+` + ws + `+\d{1,2},?` + ws + `*\d{4}` + ws + `*$`)

var metadataLabels = regexp.MustCompile(`(?i)^(?:in` + ws + `+brief|posted|updated|published)` + ws + `*:?` + ws + `*$`)

// Event promotion: "Boston, MA | June 9, 2026", "San Francisco, CA | October 13-15, 2026".
var eventLocationDate = regexp.MustCompile(`^[A-Z][a-z]+(?:` + ws + `[A-Z][a-z]+)*,` + ws + `*[A-Z]{2}` + ws +
	`*\|` + ws + `*\w+` + ws + `+\d{1,2}(?:[–-]\d{1,2})?,?` + ws + `*\d{4}` + ws + `*$`)

// Section headings that introduce publisher navigation at the end of a page.
var navigationHeadings = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^#{1,3}\s+newsletters?\s*$`),
	regexp.MustCompile(`(?i)^#{1,3}\s+related\s*$`),
	regexp.MustCompile(`(?i)^#{1,3}\s+latest\s+(?:in\s+)?`),
	regexp.MustCompile(`(?i)^#{1,3}\s+more\s+(?:from|stories|in)\s+`),
	regexp.MustCompile(`(?i)^#{1,3}\s+recommended\s*$`),
	regexp.MustCompile(`(?i)^#{1,3}\s+trending\s*$`),
	regexp.MustCompile(`(?i)^#{1,3}\s+popular\s*$`),
	regexp.MustCompile(`(?i)^#{1,3}\s+subscribe\s*$`),
}

var sentenceEnd = regexp.MustCompile(`[.!?]$`)

// Credit lines are matched on the capitalized form only; "credit" in prose stays.
var (
	creditLine     = regexp.MustCompile(`(?m)[ \t]*\bCredit:\s+.+$`)
	whitespaceLine = regexp.MustCompile(`(?m)^[ \t]+$`)
)

var (
	commentLink  = regexp.MustCompile(`\[\d+\s+Comments?\]\(.*?\)`)
	commentCount = regexp.MustCompile(`(?m)^\d+[ \t]+Comments?[ \t]*$`)
)

var authorBioIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bis an?\b`),
	regexp.MustCompile(`(?i)\breporter\b`),
	regexp.MustCompile(`(?i)\beditor\b`),
	regexp.MustCompile(`(?i)\bwriter\b`),
	regexp.MustCompile(`(?i)\bjournalist\b`),
	regexp.MustCompile(`(?i)\bcorrespondent\b`),
	regexp.MustCompile(`(?i)\bcolumnist\b`),
	regexp.MustCompile(`(?i)\blives? in\b`),
	regexp.MustCompile(`(?i)\bbased in\b`),
	regexp.MustCompile(`(?i)\bcovers?\b`),
	regexp.MustCompile(`(?i)\bwrites? about\b`),
	regexp.MustCompile(`(?i)\bco-hosts?\b`),
	regexp.MustCompile(`(?i)\bpodcast\b`),
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)
