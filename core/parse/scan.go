package parse

import "strings"

type segmentKind int

const (
	segCode segmentKind = iota
	segString
	segLineComment
	segBlockComment
)

// segment is a contiguous run of text with a single lexical role. String
// segments include their quotes; an unterminated string has no closing
// quote and ends right before a line break or at the end of the text.
type segment struct {
	kind       segmentKind
	text       string
	terminated bool
}

// scan splits text into code, string and comment segments. Joining the
// text of every segment yields the input unchanged. Comments are only
// recognised after the first opening brace: prose before the object
// often holds URLs, and their "//" must not swallow the rest of the line.
func scan(text string) []segment {
	var segs []segment
	codeStart := 0
	inObject := false
	flushCode := func(end int) {
		if end > codeStart {
			segs = append(segs, segment{kind: segCode, text: text[codeStart:end]})
		}
	}

	i := 0
	for i < len(text) {
		switch {
		case text[i] == '"':
			flushCode(i)
			end, terminated := scanString(text, i)
			segs = append(segs, segment{kind: segString, text: text[i:end], terminated: terminated})
			i = end
			codeStart = i
		case inObject && strings.HasPrefix(text[i:], "//"):
			flushCode(i)
			end := strings.IndexAny(text[i:], "\r\n")
			if end < 0 {
				end = len(text)
			} else {
				end += i
			}
			segs = append(segs, segment{kind: segLineComment, text: text[i:end]})
			i = end
			codeStart = i
		case inObject && strings.HasPrefix(text[i:], "/*"):
			flushCode(i)
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text)
			} else {
				end += i + 4
			}
			segs = append(segs, segment{kind: segBlockComment, text: text[i:end]})
			i = end
			codeStart = i
		default:
			if text[i] == '{' {
				inObject = true
			}
			i++
		}
	}
	flushCode(len(text))
	return segs
}

// scanString returns the end offset of the string literal starting at the
// quote at start, and whether a closing quote was found.
func scanString(text string, start int) (int, bool) {
	i := start + 1
	for i < len(text) {
		switch text[i] {
		case '\\':
			if i+1 < len(text) && text[i+1] != '\n' && text[i+1] != '\r' {
				i += 2
				continue
			}
			i++
		case '"':
			return i + 1, true
		case '\n', '\r':
			return i, false
		default:
			i++
		}
	}
	return len(text), false
}

func join(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.text)
	}
	return b.String()
}

// mapCode rewrites every code segment with fn and leaves the others alone.
func mapCode(text string, fn func(code string) string) string {
	segs := scan(text)
	for i := range segs {
		if segs[i].kind == segCode {
			segs[i].text = fn(segs[i].text)
		}
	}
	return join(segs)
}
