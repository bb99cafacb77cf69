package entity

import "errors"

// Domain errors
var (
	// Interview errors
	ErrInterviewNotFound  = errors.New("interview not found")
	ErrInterviewNotActive = errors.New("interview is not active")
	ErrInterviewCanceled  = errors.New("interview is cancelled")
	ErrInterviewComplete  = errors.New("interview is already complete")
	ErrInterviewNotDone   = errors.New("interview is not complete yet")
	ErrNoResult           = errors.New("scoring result not available")

	// Catalog and queue errors
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionNotInCatalog = errors.New("question id not present in catalog")
	ErrEmptyStartSequence   = errors.New("start sequence is empty")

	// Submission errors
	ErrQuestionNotCurrent = errors.New("question is not the current question")

	// Voice errors
	ErrInvalidInputMode = errors.New("unknown input mode")
	ErrVoiceNotActive   = errors.New("no active voice capture session")

	// File errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
