package dto

// QuestionPayload is a full question record as exchanged with the admin editor.
// Options may be given as a list or, as in the editor form, a comma-separated string.
type QuestionPayload struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	Options       []string `json:"options"`
	OptionsCSV    *string  `json:"options_csv,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	ImagePath     *string  `json:"image_path"`
}

// QuestionEditPayload is a partial update. Absent fields are left unchanged.
type QuestionEditPayload struct {
	ID            string   `json:"id"`
	Question      *string  `json:"question,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Difficulty    *string  `json:"difficulty,omitempty"`
	Options       []string `json:"options,omitempty"`
	OptionsCSV    *string  `json:"options_csv,omitempty"`
	CorrectAnswer *string  `json:"correct_answer,omitempty"`
	ImagePath     *string  `json:"image_path,omitempty"`
}

// QuestionEditsRequest groups edits that are applied and saved together.
type QuestionEditsRequest struct {
	Edits []QuestionEditPayload `json:"edits" validate:"required,min=1,dive"`
}

type QuestionListResponse struct {
	Source    string            `json:"source"`
	Questions []QuestionPayload `json:"questions"`
	Warnings  []WarningResponse `json:"warnings,omitempty"`
}
