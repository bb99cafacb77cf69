package validator

import (
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/claimwise/intake-backend/internal/config"
	"github.com/claimwise/intake-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	return NewValidator(config.FileUploadConfig{
		MaxFileSize:      5 << 20,
		MaxAudioFileSize: 25 << 20,
		MaxUploadSize:    32 << 20,
	})
}

func header(name string, size int64, contentType string) *multipart.FileHeader {
	h := &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{},
	}
	if contentType != "" {
		h.Header.Set("Content-Type", contentType)
	}
	return h
}

func TestValidateStartInterview(t *testing.T) {
	v := newTestValidator()

	require.NoError(t, v.ValidateStartInterview(&entity.StartInterviewRequest{}))
	require.NoError(t, v.ValidateStartInterview(&entity.StartInterviewRequest{InputMode: entity.InputModeVoice}))

	err := v.ValidateStartInterview(&entity.StartInterviewRequest{InputMode: "SHOUTED"})
	assert.ErrorIs(t, err, entity.ErrInvalidInputMode)
}

func TestValidateSubmitAnswer(t *testing.T) {
	v := newTestValidator()

	require.NoError(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{Text: "chemical"}))
	// Empty text is a legal submission for document-only questions.
	require.NoError(t, v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{}))

	err := v.ValidateSubmitAnswer(&entity.SubmitAnswerRequest{Text: strings.Repeat("a", maxAnswerLength+1)})
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}

func TestValidateGoTo(t *testing.T) {
	v := newTestValidator()

	require.NoError(t, v.ValidateGoTo(&entity.GoToRequest{Index: 0}))
	assert.ErrorIs(t, v.ValidateGoTo(&entity.GoToRequest{Index: -1}), entity.ErrInvalidParameter)
}

func TestValidateAudioFile(t *testing.T) {
	v := newTestValidator()
	const oversize = 26 << 20

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr error
	}{
		{"valid wav", header("answer.wav", 1024, "audio/wav"), nil},
		{"valid x-wav", header("answer.WAV", 1024, "audio/x-wav"), nil},
		{"octet stream accepted", header("answer.wav", 1024, "application/octet-stream"), nil},
		{"missing content type accepted", header("answer.wav", 1024, ""), nil},
		{"nil file", nil, entity.ErrMissingField},
		{"wrong extension", header("answer.mp3", 1024, "audio/mpeg"), entity.ErrInvalidExtension},
		{"wrong content type", header("answer.wav", 1024, "video/mp4"), entity.ErrInvalidExtension},
		{"too large", header("answer.wav", oversize, "audio/wav"), entity.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAudioFile(tt.file)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocumentFile(t *testing.T) {
	v := newTestValidator()
	const oversize = 6 << 20

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr error
	}{
		{"pdf", header("report.pdf", 1024, "application/pdf"), nil},
		{"png", header("photo.PNG", 1024, "image/png"), nil},
		{"docx", header("statement.docx", 1024, ""), nil},
		{"nil file", nil, entity.ErrMissingField},
		{"executable", header("malware.exe", 64, ""), entity.ErrInvalidExtension},
		{"no extension", header("README", 64, ""), entity.ErrInvalidExtension},
		{"too large", header("scan.pdf", oversize, "application/pdf"), entity.ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDocumentFile(tt.file)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "msds_sheet_final.pdf", SanitizeFilename("msds sheet (final).pdf"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "scan1.png", SanitizeFilename("scan[1].png"))
}