package dto

type SubmitApplicationRequest struct {
	Program    string   `json:"program"`
	Motivation string   `json:"motivation"`
	Experience string   `json:"experience,omitempty"`
	Portfolio  string   `json:"portfolio,omitempty"`
	Skills     []string `json:"skills,omitempty"`
}

// UpdateApplicationRequest patches a pending application. Nil means
// "leave as is".
type UpdateApplicationRequest struct {
	Program    *string   `json:"program,omitempty"`
	Motivation *string   `json:"motivation,omitempty"`
	Experience *string   `json:"experience,omitempty"`
	Portfolio  *string   `json:"portfolio,omitempty"`
	Skills     *[]string `json:"skills,omitempty"`
}

type ReviewDecisionRequest struct {
	Notes string `json:"notes"`
}

type BulkReviewRequest struct {
	IDs   []string `json:"ids"`
	Notes string   `json:"notes,omitempty"`
}
