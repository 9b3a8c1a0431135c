package resumes

import "time"

// SummaryResponse is the outward-facing list and upload representation.
type SummaryResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	ByteSize  int64     `json:"byte_size"`
	CreatedAt time.Time `json:"created_at"`
}

// DetailResponse is a single record with its text. The embedding is never returned.
type DetailResponse struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	ExtractedText string    `json:"extracted_text"`
	ByteSize      int64     `json:"byte_size"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func toSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{
		ID:        s.ID,
		Filename:  s.Filename,
		ByteSize:  s.ByteSize,
		CreatedAt: s.CreatedAt,
	}
}

func toDetailResponse(r Resume) DetailResponse {
	return DetailResponse{
		ID:            r.ID,
		Filename:      r.Filename,
		ExtractedText: r.ExtractedText,
		ByteSize:      r.ByteSize,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
