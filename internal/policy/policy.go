// Package policy decides whether a question's collected evidence permits
// submission. The truth table below is the single source of truth; every
// question type goes through it identically.
package policy

import "github.com/claimwise/intake-backend/internal/entity"

// CanProceed reports whether the (text, file) evidence combination satisfies
// the question's declared document requirement.
//
//	none              -> text
//	document-optional -> text or file
//	document-required -> text and file
//	document-only     -> file (text is ignored)
func CanProceed(req entity.DocRequirement, hasText, hasFile bool) bool {
	switch req {
	case entity.DocNone:
		return hasText
	case entity.DocOptional:
		return hasText || hasFile
	case entity.DocRequired:
		return hasText && hasFile
	case entity.DocOnly:
		return hasFile
	default:
		return false
	}
}

// CanProceedAnswer applies the truth table to a committed answer shape.
func CanProceedAnswer(req entity.DocRequirement, answer entity.Answer) bool {
	return CanProceed(req, answer.Text != "", answer.DocumentID != "")
}
