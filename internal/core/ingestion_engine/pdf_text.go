package ingestion_engine

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDFPages reads every page content stream with pdfcpu and concatenates
// the shown strings. It needs no external binaries, so it backs up docconv
// when pdftotext is missing or yields nothing.
func extractPDFPages(data []byte) (string, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var all strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil || len(content) == 0 {
			continue
		}
		if page := pageText(content); page != "" {
			if all.Len() > 0 {
				all.WriteByte('\n')
			}
			all.WriteString(page)
		}
	}
	return all.String(), nil
}

// pageText tokenizes a content stream and keeps the operands of the
// text-showing operators (Tj, TJ, ' and "). Operators may share a line.
func pageText(content []byte) string {
	var (
		sb       strings.Builder
		operands []pdfToken
	)
	sep := func(c byte) {
		if sb.Len() == 0 {
			return
		}
		if last := sb.String()[sb.Len()-1]; last == ' ' || last == '\n' {
			return
		}
		sb.WriteByte(c)
	}

	lx := pdfLexer{buf: content}
	for tok, ok := lx.next(); ok; tok, ok = lx.next() {
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}
		switch tok.text {
		case "Tj":
			writeStrings(&sb, operands)
		case "'", `"`:
			sep('\n')
			writeStrings(&sb, operands)
		case "TJ":
			writeStrings(&sb, operands)
		case "Td", "TD", "Tm":
			sep(' ')
		case "T*", "ET":
			sep('\n')
		case "ID":
			lx.skipInlineImage()
		}
		operands = operands[:0]
	}
	return strings.TrimSpace(sb.String())
}

// writeStrings appends the string operands. Inside a TJ array a kerning
// adjustment of -200 or less is treated as a word gap.
func writeStrings(sb *strings.Builder, operands []pdfToken) {
	for _, op := range operands {
		switch op.kind {
		case tokString:
			sb.WriteString(op.text)
		case tokNumber:
			if op.num <= -200 {
				sb.WriteByte(' ')
			}
		}
	}
}

type tokenKind int

const (
	tokOperator tokenKind = iota
	tokString
	tokNumber
	tokOther
)

type pdfToken struct {
	kind tokenKind
	text string
	num  float64
}

// pdfLexer splits a content stream into operands and operators. Array
// brackets are dropped so TJ sees its strings and numbers as operands.
type pdfLexer struct {
	buf []byte
	pos int
}

func isPDFWhite(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *pdfLexer) next() (pdfToken, bool) {
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		switch {
		case isPDFWhite(c), c == '[', c == ']', c == '{', c == '}':
			l.pos++
		case c == '%':
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' && l.buf[l.pos] != '\r' {
				l.pos++
			}
		case c == '(':
			return pdfToken{kind: tokString, text: decodePDFString(unescapePDF(l.literal()))}, true
		case c == '<' && l.pos+1 < len(l.buf) && l.buf[l.pos+1] == '<':
			l.pos += 2
			return pdfToken{kind: tokOther, text: "<<"}, true
		case c == '>' && l.pos+1 < len(l.buf) && l.buf[l.pos+1] == '>':
			l.pos += 2
			return pdfToken{kind: tokOther, text: ">>"}, true
		case c == '<':
			return pdfToken{kind: tokString, text: decodePDFString(l.hexString())}, true
		case c == '/':
			l.pos++
			return pdfToken{kind: tokOther, text: "/" + l.word()}, true
		case c == ')' || c == '>':
			l.pos++
		default:
			w := l.word()
			if n, err := strconv.ParseFloat(w, 64); err == nil {
				return pdfToken{kind: tokNumber, text: w, num: n}, true
			}
			if w == "" {
				l.pos++
				continue
			}
			return pdfToken{kind: tokOperator, text: w}, true
		}
	}
	return pdfToken{}, false
}

func (l *pdfLexer) word() string {
	start := l.pos
	for l.pos < len(l.buf) && !isPDFWhite(l.buf[l.pos]) && !isPDFDelim(l.buf[l.pos]) {
		l.pos++
	}
	return string(l.buf[start:l.pos])
}

// literal returns the raw bytes of a (...) string, honouring nested
// parentheses and backslash escapes.
func (l *pdfLexer) literal() []byte {
	l.pos++
	start, depth := l.pos, 1
	for l.pos < len(l.buf) {
		switch l.buf[l.pos] {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				raw := l.buf[start:l.pos]
				l.pos++
				return raw
			}
		}
		l.pos++
	}
	return l.buf[start:]
}

func (l *pdfLexer) hexString() string {
	l.pos++
	var digits []byte
	for l.pos < len(l.buf) && l.buf[l.pos] != '>' {
		if c := l.buf[l.pos]; !isPDFWhite(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, hex.DecodedLen(len(digits)))
	n, err := hex.Decode(out, digits)
	if err != nil {
		return ""
	}
	return string(out[:n])
}

// skipInlineImage moves past the binary data of a BI ... ID ... EI block.
func (l *pdfLexer) skipInlineImage() {
	for l.pos+2 < len(l.buf) {
		if l.buf[l.pos] == 'E' && l.buf[l.pos+1] == 'I' && isPDFWhite(l.buf[l.pos-1]) &&
			(l.pos+2 == len(l.buf) || isPDFWhite(l.buf[l.pos+2])) {
			l.pos += 2
			return
		}
		l.pos++
	}
	l.pos = len(l.buf)
}

// decodePDFString turns UTF-16BE strings (marked by a BOM) into UTF-8 and
// leaves single byte strings as they are.
func decodePDFString(s string) string {
	if len(s) < 2 || s[0] != 0xFE || s[1] != 0xFF {
		return s
	}
	b := []byte(s[2:])
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}

func unescapePDF(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '0', '1', '2', '3', '4', '5', '6', '7':
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}
