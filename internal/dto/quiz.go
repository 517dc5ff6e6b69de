package dto

// SourcesResponse lists the available question banks.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

// SettingsRequest changes the stored default difficulty.
type SettingsRequest struct {
	Difficulty string `json:"difficulty" validate:"required,quizlevel"`
}

type SettingsResponse struct {
	Difficulty string `json:"difficulty"`
}

// PrepareQuizRequest selects a bank and, optionally, a difficulty. Without a
// difficulty the stored setting is used.
type PrepareQuizRequest struct {
	Source     string `json:"source" validate:"required,max=255"`
	Difficulty string `json:"difficulty" validate:"omitempty,quizlevel"`
}

// WarningResponse is a non-fatal problem reported alongside a successful result.
type WarningResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// QuizStateResponse describes the player's current quiz session.
type QuizStateResponse struct {
	Source       string            `json:"source"`
	Difficulty   string            `json:"difficulty"`
	State        string            `json:"state"`
	CurrentIndex int               `json:"current_index"`
	Total        int               `json:"total"`
	CorrectCount int               `json:"correct_count"`
	Warnings     []WarningResponse `json:"warnings,omitempty"`
}

// QuestionResponse is the question under the cursor with its frozen option order.
type QuestionResponse struct {
	Index     int               `json:"index"`
	Total     int               `json:"total"`
	ID        string            `json:"id"`
	Question  string            `json:"question"`
	Category  string            `json:"category"`
	Options   []string          `json:"options"`
	ImagePath *string           `json:"image_path"`
	Warnings  []WarningResponse `json:"warnings,omitempty"`
}

// AnswerRequest carries the selected option text. An empty string is a valid choice.
type AnswerRequest struct {
	Option *string `json:"option" validate:"required"`
}

type AnswerResponse struct {
	QuestionID    string `json:"question_id"`
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Finished      bool   `json:"finished"`
}

type ReportResponse struct {
	CorrectCount int      `json:"correct_count"`
	Total        int      `json:"total"`
	WrongIDs     []string `json:"wrong_ids"`
}

// ErrorResponse is the body written by the central error handler.
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Details interface{} `json:"details,omitempty"`
}
