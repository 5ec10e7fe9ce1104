package fbx

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type tokenType int

const (
	Ident tokenType = iota
	Number
	String
	Operator
	BlockStart
	BlockEnd
	EOL
	EOF
)

type textParser struct {
	r    *bufio.Reader
	err  error
	line int
	last byte
}

func newTextParser(r io.Reader) *textParser {
	return &textParser{r: bufio.NewReader(r), line: 1}
}

func (p *textParser) errorf(f string, a ...interface{}) error {
	if p.err == nil {
		p.err = fmt.Errorf("line %d: %s", p.line, fmt.Sprintf(f, a...))
	}
	return p.err
}

func (p *textParser) read() byte {
	if p.err != nil {
		return 0
	}
	b, err := p.r.ReadByte()
	if err != nil {
		p.err = err
		return 0
	}
	if b == '\n' {
		p.line++
	}
	p.last = b
	return b
}

func (p *textParser) unread() {
	if p.err == nil {
		if p.last == '\n' {
			p.line--
		}
		p.r.UnreadByte()
	}
}

func isNumberChar(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}

func isIdentChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '|'
}

func (p *textParser) getToken() (tokenType, string) {
	for p.err == nil {
		c := p.read()
		switch {
		case c == ';':
			for p.err == nil && c != '\n' {
				c = p.read()
			}
			if c == '\n' {
				return EOL, ""
			}
		case c == '{':
			return BlockStart, "{"
		case c == '}':
			return BlockEnd, "}"
		case c == '*' || c == ':' || c == ',':
			return Operator, string(c)
		case c == '\n':
			return EOL, ""
		case c >= '0' && c <= '9' || c == '.' || c == '-':
			buf := []byte{c}
			for c = p.read(); isNumberChar(c) && p.err == nil; c = p.read() {
				buf = append(buf, c)
			}
			p.unread()
			return Number, string(buf)
		case c == '"':
			buf := []byte{}
			for c = p.read(); c != '"' && p.err == nil; c = p.read() {
				buf = append(buf, c)
			}
			return String, string(buf)
		case isIdentChar(c):
			buf := []byte{}
			for ; isIdentChar(c) && p.err == nil; c = p.read() {
				buf = append(buf, c)
			}
			p.unread()
			return Ident, string(buf)
		}
	}
	return EOF, ""
}

func (p *textParser) skip(t tokenType) bool {
	typ, s := p.getToken()
	if typ != t {
		p.errorf("unexpected token %q", s)
	}
	return typ == t
}

func isFloatLiteral(s string) bool {
	return strings.ContainsAny(s, ".eE")
}

func (p *textParser) parseArrayAttr() *Attribute {
	_, s := p.getToken()
	size, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		p.errorf("failed to parse array size: '%v'", s)
		return nil
	}
	p.skip(BlockStart)
	for p.err == nil {
		if typ, s := p.getToken(); s == ":" {
			break
		} else if typ == BlockEnd {
			return &Attribute{Value: []int64{}, ArraySize: 0}
		}
	}
	var literals []string
	var hasPoint bool
	for p.err == nil {
		typ, s := p.getToken()
		if typ == EOL || typ == Operator {
			continue
		} else if typ == BlockEnd {
			break
		} else if typ == Number {
			literals = append(literals, s)
			hasPoint = hasPoint || isFloatLiteral(s)
		} else {
			p.errorf("invalid token in array: %v", s)
			break
		}
	}
	if len(literals) != int(size) {
		p.errorf("array size mismatch: %v != %v", size, len(literals))
	}
	if hasPoint {
		values := make([]float64, len(literals))
		for i, s := range literals {
			values[i], _ = strconv.ParseFloat(s, 64)
		}
		return &Attribute{Value: values, ArraySize: uint(size)}
	}
	values := make([]int64, len(literals))
	for i, s := range literals {
		values[i], _ = strconv.ParseInt(s, 10, 64)
	}
	return &Attribute{Value: values, ArraySize: uint(size)}
}

func (p *textParser) parseNumber(s string) *Attribute {
	if isFloatLiteral(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			p.errorf("failed to parse num: '%v'", s)
		}
		return &Attribute{Value: v}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.errorf("failed to parse num: '%v'", s)
	}
	return &Attribute{Value: v}
}

func (p *textParser) parseNodeList() []*Node {
	var nodes []*Node
	for p.err == nil {
		typ, s := p.getToken()
		if typ == EOL {
			continue
		} else if typ == EOF || typ == BlockEnd {
			break
		} else if typ != Ident {
			p.errorf("unexpected token %q", s)
			break
		}
		p.skip(Operator)
		node := &Node{Name: s}
		nodes = append(nodes, node)
		for p.err == nil {
			typ, s := p.getToken()
			if typ == EOL || typ == EOF {
				break
			} else if typ == BlockStart {
				node.Children = p.parseNodeList()
				break
			} else if typ == Number {
				node.Attributes = append(node.Attributes, p.parseNumber(s))
			} else if typ == String || typ == Ident {
				node.Attributes = append(node.Attributes, &Attribute{Value: s})
			} else if typ == Operator && s == "*" {
				if a := p.parseArrayAttr(); a != nil {
					node.Attributes = append(node.Attributes, a)
				}
			}
		}
	}
	return nodes
}

func (p *textParser) Parse() (*Node, error) {
	root := &Node{Name: "_FBX_ROOT"}
	root.Children = p.parseNodeList()

	if p.err != nil && p.err != io.EOF {
		return nil, p.err
	}
	return root, nil
}
