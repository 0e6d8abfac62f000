// Package text holds the paragraph-level noise cleaner applied to extracted
// article markdown, and the small string utilities it relies on.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Length thresholds in the cleaner are expressed in characters, so multi-byte
// text (Japanese, emoji, accented names) is measured the same way as ASCII.
//
// Examples:
//
//	CountRunes("hello")      // returns 5 (ASCII text)
//	CountRunes("こんにちは")  // returns 5 (Japanese text)
//	CountRunes("hello世界")   // returns 7 (mixed text)
//	CountRunes("")           // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}
