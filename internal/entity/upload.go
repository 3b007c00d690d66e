package entity

type UploadRequest struct {
	ConversationID string
	File           FileData
}

type UploadResponse struct {
	Message  string `json:"message"`
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// StoredFile is a previously uploaded file read back from disk.
type StoredFile struct {
	Name        string
	ContentType string
	Content     []byte
}
