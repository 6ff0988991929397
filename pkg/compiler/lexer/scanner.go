package lexer

import "fmt"

// Pos locates a word in the source.
type Pos struct {
	File string
	Line int // 1-based
	Col  int // 0-based byte offset within the line
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Word is a run of non-whitespace bytes together with its origin.
type Word struct {
	Text string
	Pos  Pos
}

// Scanner splits source into words on ASCII whitespace.
// There is no quoting, escaping or comment syntax at this level.
type Scanner struct {
	file   string
	source []byte
	cursor int
	line   int
	bol    int // offset of the first byte of the current line
}

// NewScanner creates a new scanner for the given source.
func NewScanner(file string, source []byte) *Scanner {
	return &Scanner{
		file:   file,
		source: source,
		line:   1,
	}
}

// Reset rewinds the scanner, optionally onto new source.
func (s *Scanner) Reset(source []byte) {
	s.source = source
	s.cursor = 0
	s.line = 1
	s.bol = 0
}

// Next returns the next word. ok is false once the source is exhausted.
func (s *Scanner) Next() (w Word, ok bool) {
	s.skipWhitespace()

	if s.cursor >= len(s.source) {
		return Word{}, false
	}

	start := s.cursor
	for s.cursor < len(s.source) && !isSpace(s.source[s.cursor]) {
		s.cursor++
	}

	return Word{
		Text: string(s.source[start:s.cursor]),
		Pos:  Pos{File: s.file, Line: s.line, Col: start - s.bol},
	}, true
}

func (s *Scanner) skipWhitespace() {
	for s.cursor < len(s.source) {
		ch := s.source[s.cursor]
		if ch == '\n' {
			s.line++
			s.cursor++
			s.bol = s.cursor
		} else if isSpace(ch) {
			s.cursor++
		} else {
			break
		}
	}
}

// Lex scans the whole source into a slice of words.
func Lex(file string, source []byte) []Word {
	var words []Word
	s := NewScanner(file, source)
	for {
		w, ok := s.Next()
		if !ok {
			return words
		}
		words = append(words, w)
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}
