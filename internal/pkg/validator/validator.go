package validator

import (
	"fmt"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
)

const minPasswordLength = 6

// DocumentContentTypes maps accepted upload MIME types to their file extension.
var DocumentContentTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// Validator validates request payloads that carry more than a required field
type Validator struct {
	cfg config.UploadConfig
}

func NewValidator(cfg config.UploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateUpload checks that a document upload names its conversation and is
// a PDF or Word file within the size limit.
func (v *Validator) ValidateUpload(req *entity.UploadRequest) error {
	if req.ConversationID == "" {
		return fmt.Errorf("%w: conversationId", entity.ErrMissingField)
	}
	if req.File.Filename == "" || len(req.File.Content) == 0 {
		return fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	if _, ok := DocumentContentTypes[req.File.ContentType]; !ok {
		return fmt.Errorf("%w: %q (only PDF and Word documents are allowed)", entity.ErrInvalidFileType, req.File.ContentType)
	}

	if size := int64(len(req.File.Content)); size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file '%s' is %d bytes (max %d)", entity.ErrFileTooLarge, req.File.Filename, size, v.cfg.MaxFileSize)
	}

	return nil
}

// ValidateStoredFilename rejects names that could escape the uploads directory.
func ValidateStoredFilename(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", entity.ErrInvalidFilename, name)
	}
	return nil
}

// ContentTypeByName picks the document MIME type from a stored file's extension.
func ContentTypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for contentType, e := range DocumentContentTypes {
		if e == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}

// SanitizeExtension returns the lower-cased extension of the client filename,
// falling back to the one implied by the content type.
func SanitizeExtension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "" || strings.ContainsAny(ext, ` ()[]{}`) {
		return DocumentContentTypes[contentType]
	}
	return ext
}

func (v *Validator) ValidateRegister(req *entity.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name", entity.ErrMissingField)
	}
	if req.Email == "" {
		return fmt.Errorf("%w: email", entity.ErrMissingField)
	}
	if req.Password == "" {
		return fmt.Errorf("%w: password", entity.ErrMissingField)
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: email", entity.ErrInvalidFormat)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", entity.ErrInvalidFormat, minPasswordLength)
	}

	return nil
}

func (v *Validator) ValidateAddMessage(req *entity.AddMessageRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content", entity.ErrMissingField)
	}
	if req.Role != "" && !req.Role.IsValid() {
		return fmt.Errorf("%w: role must be %q or %q", entity.ErrInvalidFormat, entity.RoleUser, entity.RoleAssistant)
	}
	return nil
}
