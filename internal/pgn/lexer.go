package pgn

import "strings"

// tokenType is the kind of a movetext or header token.
type tokenType int

const (
	tagToken tokenType = iota
	moveToken
	resultToken
)

type token struct {
	typ   tokenType
	text  string // SAN text, result token, or tag name
	value string // tag value
}

// lexer splits a single PGN game into tag pairs, SAN moves and the
// terminating result. Comments, NAGs, move numbers, annotation glyphs and
// variations (at any nesting depth) are dropped.
type lexer struct {
	src      string
	pos      int
	ravLevel int
	moves    int // SAN tokens seen so far, for error context
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func isResult(s string) bool {
	switch s {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

// isDelimiter reports whether c ends a movetext word.
func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '[', ']', '{', '}', '(', ')', ';', '$':
		return true
	}
	return false
}

func (l *lexer) atLineStart() bool {
	return l.pos == 0 || l.src[l.pos-1] == '\n'
}

func (l *lexer) skipLine() {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i + 1
	} else {
		l.pos = len(l.src)
	}
}

// all returns every token up to and including the result, if any.
func (l *lexer) all() ([]token, error) {
	var tokens []token
	for {
		tok, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			if l.ravLevel > 0 {
				return nil, plyErrorf(l.moves+1, "(", "unterminated variation")
			}
			return tokens, nil
		}
		tokens = append(tokens, tok)
		if tok.typ == resultToken {
			return tokens, nil
		}
	}
}

// next returns the next significant token; ok is false at end of input.
func (l *lexer) next() (token, bool, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++

		case c == '%' && l.atLineStart():
			l.skipLine()

		case c == ';':
			l.skipLine()

		case c == '{':
			end := strings.IndexByte(l.src[l.pos:], '}')
			if end < 0 {
				return token{}, false, plyErrorf(l.moves+1, "{", "unterminated comment")
			}
			l.pos += end + 1

		case c == '(':
			l.ravLevel++
			l.pos++

		case c == ')':
			if l.ravLevel == 0 {
				return token{}, false, plyErrorf(l.moves+1, ")", "unbalanced variation")
			}
			l.ravLevel--
			l.pos++

		case c == '$':
			l.pos++
			for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
				l.pos++
			}

		case c == '[':
			if l.ravLevel > 0 {
				return token{}, false, plyErrorf(l.moves+1, "[", "tag inside variation")
			}
			return l.tag()

		case c == ']' || c == '}':
			return token{}, false, plyErrorf(l.moves+1, string(c), "unexpected %q", c)

		default:
			tok, ok, err := l.word()
			if err != nil || ok {
				return tok, ok, err
			}
		}
	}
	return token{}, false, nil
}

// word reads a movetext word. Move numbers and glyphs yield ok == false so
// the caller keeps scanning.
func (l *lexer) word() (token, bool, error) {
	start := l.pos
	for l.pos < len(l.src) && !isDelimiter(l.src[l.pos]) {
		l.pos++
	}
	w := l.src[start:l.pos]

	if isResult(w) {
		if l.ravLevel > 0 {
			return token{}, false, nil
		}
		return token{typ: resultToken, text: w}, true, nil
	}

	// Move number, optionally glued to the move: "12.", "12...", "12.Nf3".
	if w[0] >= '1' && w[0] <= '9' {
		i := 0
		for i < len(w) && w[i] >= '0' && w[i] <= '9' {
			i++
		}
		j := i
		for j < len(w) && w[j] == '.' {
			j++
		}
		if j == i {
			return token{}, false, plyErrorf(l.moves+1, w, "unexpected token")
		}
		w = w[j:]
		if w == "" {
			return token{}, false, nil
		}
	}

	// Detached annotation glyphs such as "!?".
	if strings.Trim(w, "!?") == "" {
		return token{}, false, nil
	}

	if l.ravLevel > 0 {
		return token{}, false, nil
	}
	l.moves++
	return token{typ: moveToken, text: w}, true, nil
}

// tag reads `[Name "value"]`.
func (l *lexer) tag() (token, bool, error) {
	start := l.pos
	l.pos++ // '['
	l.skipSpaces()

	nameStart := l.pos
	for l.pos < len(l.src) && isTagNameChar(l.src[l.pos]) {
		l.pos++
	}
	name := l.src[nameStart:l.pos]
	if name == "" {
		return token{}, false, plyErrorf(0, l.snippet(start), "missing tag name")
	}

	l.skipSpaces()
	if l.pos >= len(l.src) || l.src[l.pos] != '"' {
		return token{}, false, plyErrorf(0, l.snippet(start), "tag %s has no quoted value", name)
	}
	l.pos++

	var sb strings.Builder
	for {
		if l.pos >= len(l.src) || l.src[l.pos] == '\n' {
			return token{}, false, plyErrorf(0, l.snippet(start), "unterminated tag value")
		}
		c := l.src[l.pos]
		l.pos++
		if c == '"' {
			break
		}
		if c == '\\' && l.pos < len(l.src) {
			c = l.src[l.pos]
			l.pos++
		}
		sb.WriteByte(c)
	}

	l.skipSpaces()
	if l.pos >= len(l.src) || l.src[l.pos] != ']' {
		return token{}, false, plyErrorf(0, l.snippet(start), "tag %s is not closed", name)
	}
	l.pos++

	return token{typ: tagToken, text: name, value: sb.String()}, true, nil
}

func (l *lexer) skipSpaces() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
}

// snippet returns the rest of the line from start, for error messages.
func (l *lexer) snippet(start int) string {
	s := l.src[start:]
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func isTagNameChar(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
