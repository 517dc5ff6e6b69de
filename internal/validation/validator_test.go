package validation

import (
	"testing"

	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Credentials(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(&dto.CredentialsRequest{Username: "alice", Password: "pw"}))

	err := v.Struct(&dto.CredentialsRequest{Username: "", Password: ""})
	require.ErrorIs(t, err, domain.ErrValidation)

	var fields domain.ValidationErrors
	require.ErrorAs(t, err, &fields)
	require.Len(t, fields, 2)
	assert.Equal(t, "username", fields[0].Field)
	assert.Equal(t, domain.CodeMissingField, fields[0].Code)
	assert.Equal(t, "username is a required field", fields[0].Message)
	assert.Equal(t, "password", fields[1].Field)
}

func TestValidator_QuizLevel(t *testing.T) {
	v := NewValidator()

	for _, level := range []string{"low", "easy", "medium", "HARD"} {
		assert.NoError(t, v.Struct(&dto.SettingsRequest{Difficulty: level}), level)
	}

	err := v.Struct(&dto.SettingsRequest{Difficulty: "extreme"})
	var fields domain.ValidationErrors
	require.ErrorAs(t, err, &fields)
	require.Len(t, fields, 1)
	assert.Equal(t, domain.CodeInvalidFormat, fields[0].Code)
	assert.Equal(t, "difficulty must be one of low, medium, hard", fields[0].Message)

	assert.NoError(t, v.Struct(&dto.PrepareQuizRequest{Source: "python.json"}))
}

func TestValidator_NestedFieldPath(t *testing.T) {
	v := NewValidator()

	err := v.Struct(&dto.QuestionEditsRequest{})
	var fields domain.ValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Equal(t, "edits", fields[0].Field)

	opt := ""
	assert.NoError(t, v.Struct(&dto.AnswerRequest{Option: &opt}), "empty option text is allowed")
	assert.Error(t, v.Struct(&dto.AnswerRequest{}))
}
