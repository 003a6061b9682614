package parse

import "regexp"

// pairRe matches one "key": value pair. Values are limited to strings,
// plain numbers, literals, arrays without nested containers and objects
// without nested objects. Escaped quotes are honoured inside strings.
var pairRe = regexp.MustCompile(
	`"((?:[^"\\]|\\.)+)"\s*:\s*` +
		`("(?:[^"\\]|\\.)*"` +
		`|-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?` +
		`|true|false|null` +
		`|\[[^\[\]{}]*\]` +
		`|\{[^{}]*\})`)

// SalvageResult holds the pairs recovered from text that failed strict
// parsing.
type SalvageResult struct {
	// Fields maps each recovered key to its value, in order of first
	// appearance. A value that could not be parsed on its own is kept as
	// the raw matched substring.
	Fields *Object `json:"fields"`
	// Found counts every matched pair, duplicates included.
	Found int `json:"found"`
	// Typed and Untyped count matches whose value did or did not parse.
	Typed   int `json:"typed"`
	Untyped int `json:"untyped"`
}

// Empty reports whether no pair was found at all.
func (r *SalvageResult) Empty() bool {
	return r == nil || r.Found == 0
}

// Salvage scans text for top-level "key": value pairs and returns
// whatever it can recover. Pairs nested inside a member object are
// ignored so they can never overwrite the record's own fields. It never
// fails; text without any recognisable pair yields an empty result.
// Later duplicates overwrite earlier ones.
func Salvage(text string) *SalvageResult {
	result := &SalvageResult{Fields: NewObject()}
	depth := &depthCursor{segs: scan(text)}
	for _, m := range pairRe.FindAllStringSubmatchIndex(text, -1) {
		if depth.at(m[0]) > 1 {
			continue
		}
		key := salvageKey(text[m[2]:m[3]])
		rawValue := text[m[4]:m[5]]
		result.Found++

		value, err := ParseStrict(rawValue)
		if err != nil {
			result.Untyped++
			result.Fields.Set(key, rawValue)
			continue
		}
		result.Typed++
		result.Fields.Set(key, value)
	}
	return result
}

// depthCursor reports the brace depth of increasing offsets into the
// scanned text. Braces inside strings and comments do not count.
type depthCursor struct {
	segs  []segment
	seg   int // index of the segment holding pos
	start int // offset of segs[seg]
	pos   int
	depth int
}

func (c *depthCursor) at(offset int) int {
	for c.pos < offset && c.seg < len(c.segs) {
		s := c.segs[c.seg]
		end := c.start + len(s.text)
		if s.kind == segCode {
			for ; c.pos < end && c.pos < offset; c.pos++ {
				switch s.text[c.pos-c.start] {
				case '{':
					c.depth++
				case '}':
					if c.depth > 0 {
						c.depth--
					}
				}
			}
		} else {
			c.pos = min(end, offset)
		}
		if c.pos == end {
			c.seg++
			c.start = end
		}
	}
	return c.depth
}

// salvageKey decodes JSON escapes in a matched key, falling back to the
// key as written.
func salvageKey(raw string) string {
	if decoded, err := ParseStrict(`"` + raw + `"`); err == nil {
		if s, ok := decoded.(string); ok {
			return s
		}
	}
	return raw
}
