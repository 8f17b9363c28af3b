package dto

type AddDocumentRequest struct {
	Type     string `json:"type"`
	FileName string `json:"file_name,omitempty"`
	URL      string `json:"url,omitempty"`
}

type RejectDocumentRequest struct {
	Reason string `json:"reason"`
}

type RequestDocumentInfoRequest struct {
	Message string `json:"message"`
}
