package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/siherrmann/pdfrag/helper"
	"github.com/siherrmann/pdfrag/model"
)

// ErrUnknownMethod is returned for an extraction method that is not supported.
var ErrUnknownMethod = errors.New("unknown extraction method")

// wordGapRatio is the horizontal gap, relative to the font size, above which
// two text runs on one row are separated by a space.
const wordGapRatio = 0.15

// NewExtractor returns the extraction strategy registered for method
func NewExtractor(method string) (ExtractFunc, error) {
	switch method {
	case model.ExtractMethodFast:
		return ExtractFast, nil
	case model.ExtractMethodLayout:
		return ExtractLayout, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

// ExtractFast reads the text stream of every page in document order
// without looking at the position of the text.
func ExtractFast(data []byte) (text string, pages int, err error) {
	defer recoverPDF(&err)

	reader, err := openPDF(data)
	if err != nil {
		return "", 0, err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", 0, helper.NewError("get plain text", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", 0, helper.NewError("read plain text", err)
	}

	return buf.String(), reader.NumPage(), nil
}

// ExtractLayout rebuilds every page from its text rows, top to bottom and
// left to right. Rows become lines, pages are separated by a blank line.
func ExtractLayout(data []byte) (text string, pages int, err error) {
	defer recoverPDF(&err)

	reader, err := openPDF(data)
	if err != nil {
		return "", 0, err
	}

	pageTexts := []string{}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", 0, helper.NewError(fmt.Sprintf("read rows of page %d", i), err)
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			if line := rowText(row); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pageTexts = append(pageTexts, strings.Join(lines, "\n"))
		}
	}

	return strings.Join(pageTexts, "\n\n"), reader.NumPage(), nil
}

func openPDF(data []byte) (*pdf.Reader, error) {
	if len(data) == 0 {
		return nil, helper.NewError("open pdf", errors.New("empty document"))
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, helper.NewError("open pdf", err)
	}
	return reader, nil
}

// rowText joins the text runs of a row, inserting a space where runs are
// visibly apart.
func rowText(row *pdf.Row) string {
	var sb strings.Builder
	var prevEnd float64
	for i, t := range row.Content {
		if i > 0 && t.X-prevEnd > t.FontSize*wordGapRatio && !strings.HasPrefix(t.S, " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return sb.String()
}

// recoverPDF converts a panic of the pdf parser on malformed input into an error
func recoverPDF(err *error) {
	if r := recover(); r != nil {
		*err = helper.NewError("parse pdf", fmt.Errorf("%v", r))
	}
}
