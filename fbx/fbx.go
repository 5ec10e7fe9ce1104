package fbx

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

func Load(path string) (*Document, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}

// Parse reads a binary or ASCII FBX document.
func Parse(r io.Reader) (*Document, error) {
	root, err := ParseNodes(r)
	if err != nil {
		return nil, err
	}
	return BuildDocument(root)
}

// ParseNodes reads the raw node tree.
func ParseNodes(r io.Reader) (*Node, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(binaryMagic))
	if bytes.Equal(head, []byte(binaryMagic)) {
		p := binaryParser{r: &positionReader{r: br}}
		return p.Parse()
	}
	return newTextParser(br).Parse()
}
