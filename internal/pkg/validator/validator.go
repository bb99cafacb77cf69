package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/claimwise/intake-backend/internal/config"
	"github.com/claimwise/intake-backend/internal/entity"
)

// AllowedDocumentExtensions lists the evidence file types a claimant may
// upload.
var AllowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".docx": true,
}

// Validator validates API requests and file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateStartInterview validates StartInterviewRequest
func (v *Validator) ValidateStartInterview(req *entity.StartInterviewRequest) error {
	if req.InputMode != "" {
		if err := req.InputMode.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSubmitAnswer validates a typed answer submission. An empty text is
// allowed: document-only questions submit with no text at all.
func (v *Validator) ValidateSubmitAnswer(req *entity.SubmitAnswerRequest) error {
	if len(req.Text) > maxAnswerLength {
		return fmt.Errorf("%w: answer text exceeds %d characters", entity.ErrInvalidParameter, maxAnswerLength)
	}
	return nil
}

const maxAnswerLength = 20000

// ValidateGoTo validates a navigation request.
func (v *Validator) ValidateGoTo(req *entity.GoToRequest) error {
	if req.Index < 0 {
		return fmt.Errorf("%w: index must not be negative", entity.ErrInvalidParameter)
	}
	return nil
}

// ValidateAudioFile validates audio answer uploads (WAV format only)
func (v *Validator) ValidateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return fmt.Errorf("%w: audio file", entity.ErrMissingField)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".wav" {
		return fmt.Errorf("%w: %s (only .wav files are allowed)", entity.ErrInvalidExtension, ext)
	}

	if file.Size > v.cfg.MaxAudioFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, file.Filename, file.Size, v.cfg.MaxAudioFileSize)
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "" &&
		contentType != "audio/wav" &&
		contentType != "audio/x-wav" &&
		contentType != "application/octet-stream" {
		return fmt.Errorf("%w: content type '%s' (expected audio/wav, audio/x-wav or application/octet-stream)", entity.ErrInvalidExtension, contentType)
	}

	return nil
}

// ValidateDocumentFile validates evidence document uploads
func (v *Validator) ValidateDocumentFile(file *multipart.FileHeader) error {
	if file == nil {
		return fmt.Errorf("%w: document file", entity.ErrMissingField)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !AllowedDocumentExtensions[ext] {
		return fmt.Errorf("%w: %s (allowed: pdf, png, jpg, jpeg, docx)", entity.ErrInvalidExtension, ext)
	}

	if file.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, file.Filename, file.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// SanitizeFilename sanitizes a filename for safe storage
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "",
		")", "",
		"[", "",
		"]", "",
		"{", "",
		"}", "",
	)
	return replacer.Replace(filename)
}
