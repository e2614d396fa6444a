package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrInvalidDocument signals that the payload could not be parsed as a PDF.
var ErrInvalidDocument = errors.New("invalid document")

// Text extracts the text of every page in order, newline separated.
// A page without extractable text contributes an empty string rather than
// failing the whole document; only unparsable input is an error.
func Text(data []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrInvalidDocument, rec)
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if rerr != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, rerr)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, perr := page.GetPlainText(nil)
		if perr != nil {
			content = ""
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}
