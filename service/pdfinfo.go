package service

import (
	"bytes"
	"fmt"

	"github.com/anothercodingguy/vidhived/model"
	"github.com/ledongthuc/pdf"
)

// InspectPDF validates that data is a well-formed PDF and returns its page
// count and each page's native dimensions (from the MediaBox). The parser
// panics on some malformed files, so the whole inspection runs under recover.
func InspectPDF(data []byte) (pages []model.PageInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	numPages := reader.NumPage()
	if numPages < 1 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = make([]model.PageInfo, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		info := model.PageInfo{Page: i}
		mediaBox := page.V.Key("MediaBox")
		if mediaBox.Len() == 4 {
			llx := mediaBox.Index(0).Float64()
			lly := mediaBox.Index(1).Float64()
			urx := mediaBox.Index(2).Float64()
			ury := mediaBox.Index(3).Float64()
			info.Width = urx - llx
			info.Height = ury - lly
		}
		pages = append(pages, info)
	}

	return pages, nil
}
