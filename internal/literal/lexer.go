// Package literal re-parses flat text from the metadata section into typed
// fragments: comments, recognized elements, and literal gaps.
package literal

import (
	"regexp"
	"strings"
)

// MatchKind identifies the construct a Match covers.
type MatchKind int

// MatchKind constants.
const (
	MatchNone    MatchKind = iota // Neither group populated
	MatchComment                  // <!-- --> or <%-- --%>
	MatchTag                      // Simple tag: self-closing or empty body
)

func (k MatchKind) String() string {
	switch k {
	case MatchComment:
		return "COMMENT"
	case MatchTag:
		return "TAG"
	default:
		return "NONE"
	}
}

// AttrForm records how an attribute value was written.
type AttrForm int

// AttrForm constants, in capture precedence order.
const (
	FormDoubleQuoted AttrForm = iota // name="value"
	FormSingleQuoted                 // name='value'
	FormBound                        // name=<%# expr %>
	FormBare                         // name=value
	FormValueless                    // name
)

// Position is a location in the scanned text.
type Position struct {
	Offset int
	Line   int // 1-based
	Column int // 1-based, in bytes
}

// AttrCapture is one attribute occurrence in source order.
type AttrCapture struct {
	Name  string
	Value string
	Form  AttrForm
}

// Match is a single lexical match.
type Match struct {
	Start int
	Len   int
	Kind  MatchKind
	Text  string

	TagName    string // as written
	EndTagName string // empty for self-closing and void forms
	Closing    string // end tag markup as written, with leading whitespace
	Attrs      []AttrCapture

	SelfClosing bool
	Mismatch    bool // end tag name differs from start tag name
}

// End returns the offset just past the match.
func (m Match) End() int { return m.Start + m.Len }

const attrValue = `(?:\s*=\s*"(?P<dq>[^"]*)"` +
	`|\s*=\s*'(?P<sq>[^']*)'` +
	`|\s*=\s*(?P<bound><%#.*?%>)` +
	`|\s*=\s*(?P<bare>[^\s=/>]*)` +
	`|(?P<none>\s*?))`

var (
	simpleTagPattern = regexp.MustCompile(`(?s)` +
		`(?P<comment><!--.*?-->|<%--.*?--%>)` +
		`|<(?P<tag>[\w:.]+)` +
		`(?P<attrs>(?:\s+\w[-\w:]*` + stripNames(attrValue) + `)*)` +
		`\s*(?:(?P<selfclosing>/>)|>(?P<closing>\s*</(?P<endtag>[\w:.]+)\s*>)?)`)

	attrPattern = regexp.MustCompile(`(?s)\s+(?P<name>\w[-\w:]*)` + attrValue)

	groupComment     = simpleTagPattern.SubexpIndex("comment")
	groupTag         = simpleTagPattern.SubexpIndex("tag")
	groupAttrs       = simpleTagPattern.SubexpIndex("attrs")
	groupSelfClosing = simpleTagPattern.SubexpIndex("selfclosing")
	groupEndTag      = simpleTagPattern.SubexpIndex("endtag")
	groupClosing     = simpleTagPattern.SubexpIndex("closing")

	groupName  = attrPattern.SubexpIndex("name")
	valueForms = []struct {
		group int
		form  AttrForm
	}{
		{attrPattern.SubexpIndex("dq"), FormDoubleQuoted},
		{attrPattern.SubexpIndex("sq"), FormSingleQuoted},
		{attrPattern.SubexpIndex("bound"), FormBound},
		{attrPattern.SubexpIndex("bare"), FormBare},
		{attrPattern.SubexpIndex("none"), FormValueless},
	}
)

// stripNames turns named groups into plain groups so a pattern fragment can
// be embedded more than once.
func stripNames(p string) string {
	return regexp.MustCompile(`\(\?P<\w+>`).ReplaceAllString(p, "(")
}

// voidElements may end with a bare ">" and no end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// IsVoid reports whether tag may be written without an end tag.
func IsVoid(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// NextMatch returns the next match at or after offset.
func NextMatch(text string, offset int) (Match, bool) {
	for offset < len(text) {
		loc := simpleTagPattern.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			return Match{}, false
		}
		m := buildMatch(text, offset, loc)
		if m.Kind == MatchTag && !m.SelfClosing && m.EndTagName == "" && !IsVoid(m.TagName) {
			// A bare ">" opens a body; only void elements may stop there.
			offset += loc[0] + 1
			continue
		}
		return m, true
	}
	return Match{}, false
}

func buildMatch(text string, base int, loc []int) Match {
	sub := text[base:]
	m := Match{
		Start: base + loc[0],
		Len:   loc[1] - loc[0],
		Text:  sub[loc[0]:loc[1]],
	}
	group := func(i int) (string, bool) {
		if loc[2*i] < 0 {
			return "", false
		}
		return sub[loc[2*i]:loc[2*i+1]], true
	}

	if _, ok := group(groupComment); ok {
		m.Kind = MatchComment
		return m
	}
	name, ok := group(groupTag)
	if !ok {
		return m
	}
	m.Kind = MatchTag
	m.TagName = name
	_, m.SelfClosing = group(groupSelfClosing)
	if end, ok := group(groupEndTag); ok {
		m.EndTagName = end
		m.Closing, _ = group(groupClosing)
		m.Mismatch = end != name
	}
	if attrs, ok := group(groupAttrs); ok {
		m.Attrs = parseAttrs(attrs)
	}
	return m
}

func parseAttrs(s string) []AttrCapture {
	var out []AttrCapture
	for _, loc := range attrPattern.FindAllStringSubmatchIndex(s, -1) {
		c := AttrCapture{Name: s[loc[2*groupName]:loc[2*groupName+1]]}
		for _, vf := range valueForms {
			if loc[2*vf.group] >= 0 {
				c.Value = s[loc[2*vf.group]:loc[2*vf.group+1]]
				c.Form = vf.form
				break
			}
		}
		if c.Form == FormValueless {
			c.Value = ""
		}
		out = append(out, c)
	}
	return out
}

// Lexer walks a text blob match by match.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next match and advances past it.
func (l *Lexer) Next() (Match, bool) {
	m, ok := NextMatch(l.input, l.pos)
	if !ok {
		l.pos = len(l.input)
		return Match{}, false
	}
	l.pos = m.End()
	return m, true
}

// Tokenize returns every match in the input.
func (l *Lexer) Tokenize() []Match {
	var out []Match
	for {
		m, ok := l.Next()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}

// PositionOf converts a byte offset in text into a line/column position.
func PositionOf(text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndex(before, "\n")
	return Position{Offset: offset, Line: line, Column: col}
}
