package seedmodels

import "quiz-runner/internal/dto"

// SeedSource is one question bank in the JSON seed file.
type SeedSource struct {
	Name      string                `json:"source"`
	Questions []dto.QuestionPayload `json:"questions"`
}

// SeedFile is the whole seed document.
type SeedFile struct {
	Sources []SeedSource `json:"sources"`
}
