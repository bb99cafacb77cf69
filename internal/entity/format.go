package entity

import "fmt"

// ResultFormat selects the export format for the interview summary.
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "md"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

func (rf ResultFormat) Validate() error {
	switch rf {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return nil
	default:
		return fmt.Errorf("unsupported result format: %s", rf)
	}
}
