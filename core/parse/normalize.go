package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxNormalizeRounds bounds how many times the repair sequence is re-run
// while looking for a fixed point. Every repair only shortens the text, so
// real model output settles in one or two rounds.
const maxNormalizeRounds = 8

var (
	fenceRe         = regexp.MustCompile("```[ \t]*(?:json|JSON|Json)?")
	trailingCommaRe = regexp.MustCompile(`,(?:\s*,)*(\s*[}\]])`)
	keyValueGapRe   = regexp.MustCompile(`^\s*:\s*$`)
	precedingComma  = regexp.MustCompile(`,(\s*)$`)
)

type repair struct {
	name  string
	apply func(string) string
}

// repairs run in this order. Later steps assume earlier ones already ran:
// comments go before trailing commas so a comma inside a comment is never
// mistaken for a dangling one.
var repairs = []repair{
	{name: "extract_object", apply: extractObject},
	{name: "strip_control_chars", apply: stripControlChars},
	{name: "strip_comments", apply: stripComments},
	{name: "strip_trailing_commas", apply: stripTrailingCommas},
	{name: "collapse_digit_separators", apply: collapseDigitSeparators},
	{name: "strip_leading_plus", apply: stripLeadingPlus},
	{name: "drop_truncated_urls", apply: dropTruncatedURLs},
}

// Normalize repairs the syntactic defects generative models routinely add
// around and inside a JSON object. It never fails; text that cannot be
// improved is returned as is. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	out, _ := normalize(raw)
	return out
}

// normalize returns the repaired text and the names of the repairs that
// changed something, in the order they first fired.
func normalize(raw string) (string, []string) {
	var applied []string
	seen := make(map[string]bool, len(repairs))
	current := raw
	for round := 0; round < maxNormalizeRounds; round++ {
		before := current
		for _, r := range repairs {
			next := r.apply(current)
			if next != current && !seen[r.name] {
				seen[r.name] = true
				applied = append(applied, r.name)
			}
			current = next
		}
		if current == before {
			break
		}
	}
	return current, applied
}

// extractObject removes markdown fences and keeps only the first
// top-level {...} block together with its braces. When the first opening
// brace is never closed the fence-stripped text is returned whole.
func extractObject(text string) string {
	segs := scan(text)
	for i := range segs {
		if segs[i].kind == segCode {
			segs[i].text = fenceRe.ReplaceAllString(segs[i].text, "")
		}
	}
	stripped := join(segs)

	start, depth, offset := -1, 0, 0
	for _, s := range segs {
		if s.kind == segCode {
			for k := 0; k < len(s.text); k++ {
				switch s.text[k] {
				case '{':
					if start < 0 {
						start = offset + k
					}
					depth++
				case '}':
					if start < 0 {
						continue
					}
					depth--
					if depth == 0 {
						return stripped[start : offset+k+1]
					}
				}
			}
		}
		offset += len(s.text)
	}
	return stripped
}

// stripControlChars drops U+0000-U+001F and U+007F-U+009F. Tab, CR and LF
// survive outside string literals where JSON treats them as whitespace.
func stripControlChars(text string) string {
	segs := scan(text)
	for i := range segs {
		segs[i].text = dropControl(segs[i].text, segs[i].kind != segString)
	}
	return join(segs)
}

func dropControl(s string, keepWhitespace bool) string {
	var b strings.Builder
	changed := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isControl(r, size) && !(keepWhitespace && (r == '\t' || r == '\n' || r == '\r')) {
			if !changed {
				b.Grow(len(s))
				b.WriteString(s[:i])
				changed = true
			}
			i += size
			continue
		}
		if changed {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	if !changed {
		return s
	}
	return b.String()
}

func isControl(r rune, size int) bool {
	if r == utf8.RuneError && size == 1 {
		return false
	}
	return r <= 0x1F || (r >= 0x7F && r <= 0x9F)
}

// stripComments removes // line comments and replaces each /* */ block
// with a single space so the tokens on either side stay apart.
func stripComments(text string) string {
	segs := scan(text)
	kept := segs[:0]
	for _, s := range segs {
		switch s.kind {
		case segLineComment:
			continue
		case segBlockComment:
			s = segment{kind: segCode, text: " "}
		}
		kept = append(kept, s)
	}
	return join(kept)
}

func stripTrailingCommas(text string) string {
	return mapCode(text, func(code string) string {
		return trailingCommaRe.ReplaceAllString(code, "$1")
	})
}

// collapseDigitSeparators removes underscores between digits of a numeric
// literal such as 2_023. Words that start with a letter are left alone.
func collapseDigitSeparators(text string) string {
	return mapCode(text, func(code string) string {
		if !strings.Contains(code, "_") {
			return code
		}
		var b strings.Builder
		b.Grow(len(code))
		for i := 0; i < len(code); {
			if !isWordByte(code[i]) {
				b.WriteByte(code[i])
				i++
				continue
			}
			j := i
			for j < len(code) && isWordByte(code[j]) {
				j++
			}
			word := code[i:j]
			if isDigit(word[0]) {
				word = dropDigitUnderscores(word)
			}
			b.WriteString(word)
			i = j
		}
		return b.String()
	})
}

func dropDigitUnderscores(word string) string {
	var b strings.Builder
	for i := 0; i < len(word); {
		if word[i] != '_' {
			b.WriteByte(word[i])
			i++
			continue
		}
		j := i
		for j < len(word) && word[j] == '_' {
			j++
		}
		if i > 0 && isDigit(word[i-1]) && j < len(word) && isDigit(word[j]) {
			i = j
			continue
		}
		b.WriteString(word[i:j])
		i = j
	}
	return b.String()
}

// stripLeadingPlus turns +5 into 5 where a value is expected: at the start
// of the text or after a colon, comma or opening bracket.
func stripLeadingPlus(text string) string {
	segs := scan(text)
	var prev byte
	for i := range segs {
		if segs[i].kind != segCode {
			if segs[i].kind == segString {
				prev = '"'
			}
			continue
		}
		code := segs[i].text
		var b strings.Builder
		b.Grow(len(code))
		for k := 0; k < len(code); k++ {
			c := code[k]
			if c == '+' && k+1 < len(code) && isDigit(code[k+1]) &&
				(prev == 0 || prev == ':' || prev == ',' || prev == '[') {
				continue
			}
			b.WriteByte(c)
			if !isSpace(c) {
				prev = c
			}
		}
		segs[i].text = b.String()
	}
	return join(segs)
}

// dropTruncatedURLs removes a "key": "http... pair whose string value is
// never closed, along with the comma that separated it from the previous
// member. Completing such a string would mean guessing its content.
func dropTruncatedURLs(text string) string {
	segs := scan(text)
	drop := make([]bool, len(segs))
	changed := false
	for j := 2; j < len(segs); j++ {
		s := segs[j]
		if s.kind != segString || s.terminated || !hasURLScheme(s.text[1:]) {
			continue
		}
		gap, key := segs[j-1], segs[j-2]
		if gap.kind != segCode || !keyValueGapRe.MatchString(gap.text) {
			continue
		}
		if key.kind != segString || !key.terminated {
			continue
		}
		drop[j], drop[j-1], drop[j-2] = true, true, true
		if j >= 3 && segs[j-3].kind == segCode && !drop[j-3] {
			segs[j-3].text = precedingComma.ReplaceAllString(segs[j-3].text, "$1")
		}
		changed = true
	}
	if !changed {
		return text
	}
	kept := segs[:0]
	for i, s := range segs {
		if !drop[i] {
			kept = append(kept, s)
		}
	}
	return join(kept)
}

func hasURLScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "https:") || strings.HasPrefix(lower, "http:")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isWordByte(c byte) bool {
	return isDigit(c) || c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
