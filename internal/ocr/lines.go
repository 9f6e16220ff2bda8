package ocr

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// linesPath selects the text of every recognized line in every region.
var linesPath = jp.MustParseString("$..lines[*].text")

// ExtractLines evaluates $..lines[*].text against the result document and
// returns the string matches in document order.
//
// Other "text" members, such as those of individual words, are ignored, and
// so are matches that are not strings.
func ExtractLines(doc []byte) ([]string, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return nil, errors.New("parse result document: empty document")
	}

	data, err := oj.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("parse result document: %w", err)
	}

	lines := []string{}
	for _, v := range linesPath.Get(data) {
		if s, ok := v.(string); ok {
			lines = append(lines, s)
		}
	}
	return lines, nil
}
