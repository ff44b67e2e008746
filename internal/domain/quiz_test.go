package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizItem_Validate(t *testing.T) {
	valid := QuizItem{Question: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2}
	assert.NoError(t, valid.Validate())

	threeOptions := valid
	threeOptions.Options = []string{"a", "b", "c"}
	assert.Error(t, threeOptions.Validate())

	badIndex := valid
	badIndex.CorrectAnswer = 4
	assert.Error(t, badIndex.Validate())

	negative := valid
	negative.CorrectAnswer = -1
	assert.Error(t, negative.Validate())

	empty := valid
	empty.Question = "   "
	assert.Error(t, empty.Validate())
}

func newTestQuiz() *Quiz {
	return &Quiz{
		TotalQuestions: 3,
		Questions: []QuizItem{
			{Question: "1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
			{Question: "2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1},
			{Question: "3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3},
		},
	}
}

func TestQuiz_ValidateAnswers(t *testing.T) {
	q := newTestQuiz()

	assert.NoError(t, q.ValidateAnswers([]int{0, 1, 2}))

	err := q.ValidateAnswers([]int{0, 1})
	require.Error(t, err)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeInvalidAnswer, de.Code)

	assert.Error(t, q.ValidateAnswers([]int{0, 1, 2, 3}))
	assert.Error(t, q.ValidateAnswers([]int{0, 4, 1}))
	assert.Error(t, q.ValidateAnswers([]int{-1, 0, 1}))
}

func TestQuiz_Grade(t *testing.T) {
	q := newTestQuiz()
	results, correct := q.Grade([]int{0, 2, 3})

	assert.Equal(t, 2, correct)
	require.Len(t, results, 3)
	assert.True(t, results[0].IsCorrect)
	assert.False(t, results[1].IsCorrect)
	assert.Equal(t, 2, results[1].UserAnswer)
	assert.Equal(t, 1, results[1].CorrectAnswer)
	assert.Equal(t, []string{"a", "b", "c", "d"}, results[2].Options)
}
