// Package prompt holds the text templates sent to the language model.
package prompt

import (
	"fmt"

	"interview-prep/internal/domain"

	json "github.com/goccy/go-json"
)

const questionAnswerTemplate = `
You are an AI trained to generate technical interview questions and answers.

Task:
- Role: %s
- Candidate Experience: %s years
- Focus Topics: %s
- Write %d interview questions.
- For each question, generate a detailed but beginner-friendly answer.
- If the answer needs a code example, ALWAYS wrap it in markdown code blocks with language.
- Keep formatting very clean.

Return a pure JSON array like:
[
    {
        "question": "Question here?",
        "answer": "Answer here.\n\n` + "```js\\ncode here\\n```" + `"
    }
]

Important: Do NOT add any extra text. Only return valid JSON.
`

// QuestionAnswer asks for count question/answer pairs.
func QuestionAnswer(role, experience, topics string, count int) string {
	return fmt.Sprintf(questionAnswerTemplate, role, experience, topics, count)
}

const explanationTemplate = `
You are an AI trained to generate explanations for interview questions.

Task:
- Explain the following interview question in depth for a beginner%s.
- Question: "%s"
- Provide a short and clear title.
- If the explanation includes a code example, ALWAYS use markdown code blocks with language.

Return a valid JSON object like:
{
    "title": "Short title here?",
    "explanation": "Explanation here.\n\n` + "```js\\ncode here\\n```" + `"
}

Important: Do NOT add any extra text outside the JSON.
`

// Explanation asks for a titled explanation. experience may be empty.
func Explanation(question, experience string) string {
	level := ""
	if experience != "" {
		level = fmt.Sprintf(" with %s years of experience", experience)
	}
	return fmt.Sprintf(explanationTemplate, level, question)
}

const followupTemplate = `
You are an interview coach continuing a conversation about a technical interview question.

Context:
%s

Follow-up question: "%s"

Answer clearly and concisely. Use markdown code blocks with language for any code.

Return a valid JSON object like:
{
    "answer": "Answer here."
}

Important: Do NOT add any extra text outside the JSON.
`

func Followup(context, question string) string {
	return fmt.Sprintf(followupTemplate, context, question)
}

// ContextPair is one question/answer shown to the model as quiz source material.
type ContextPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const quizTemplate = `
You are an expert technical interviewer creating a multiple-choice quiz.

Source material (question and answer pairs from the candidate's study session):
%s

Task:
- Create exactly %d multiple-choice questions based on the source material.
- Target a candidate with %s years of experience.
- Each question must have exactly 4 options.
- "correctAnswer" is the zero-based index (0-3) of the correct option.
- Provide a one or two sentence "explanation" of why the answer is correct.
- Vary the position of the correct option.

Return a pure JSON array like:
[
    {
        "question": "Question text?",
        "options": ["Option A", "Option B", "Option C", "Option D"],
        "correctAnswer": 2,
        "explanation": "Why option C is correct."
    }
]

Important: Do NOT add any extra text. Only return valid JSON.
`

// Quiz asks for count multiple-choice items built from the given pairs.
func Quiz(pairs []ContextPair, count int, experience string) (string, error) {
	raw, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("encode quiz context: %w", err)
	}
	return fmt.Sprintf(quizTemplate, string(raw), count, experience), nil
}

type evaluationItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	UserAnswer    int      `json:"userAnswer"`
}

const evaluationTemplate = `
You are grading a multiple-choice technical quiz.

Questions with the candidate's answers (indexes are zero-based):
%s

Task:
- Count the correct answers.
- For every question write a short "explanation" of the correct option, addressing the candidate's choice when it is wrong.
- Write encouraging overall "feedback" (2-4 sentences) naming strengths and topics to review.

Return a valid JSON object like:
{
    "score": 3,
    "total": 5,
    "percentage": 60,
    "questions": [
        { "explanation": "..." }
    ],
    "feedback": "..."
}

Important: Do NOT add any extra text outside the JSON.
`

// QuizEvaluation asks the model to grade answers against the stored items.
func QuizEvaluation(items []domain.QuizItem, answers []int) (string, error) {
	payload := make([]evaluationItem, 0, len(items))
	for i, it := range items {
		ua := -1
		if i < len(answers) {
			ua = answers[i]
		}
		payload = append(payload, evaluationItem{
			Question:      it.Question,
			Options:       it.Options,
			CorrectAnswer: it.CorrectAnswer,
			UserAnswer:    ua,
		})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode quiz answers: %w", err)
	}
	return fmt.Sprintf(evaluationTemplate, string(raw)), nil
}

const searchQueriesTemplate = `
You help candidates prepare for technical interviews.

Interview question: "%s"
Target role: %s
Experience: %s years

Generate 3 concise web search queries that would find the best study resources
(videos, articles, official documentation, practice problems) for this question.

Return a pure JSON array of strings like:
["query one", "query two", "query three"]

Important: Do NOT add any extra text. Only return valid JSON.
`

func SearchQueries(question, role, experience string) string {
	return fmt.Sprintf(searchQueriesTemplate, question, role, experience)
}

const selectionTemplate = `
You are curating study resources for a technical interview question.

Interview question: "%s"
Target role: %s
Experience: %s years

Candidate resources grouped by category:
%s

Task:
- For each category keep at most 3 of the most relevant, high quality resources.
- Only use resources from the candidate list; never invent URLs.
- Keep each resource's existing fields and you may add "difficulty" (beginner, intermediate, advanced).
- Suggest up to 5 "keywords" and the single best "search_query" for this question.

Return a valid JSON object like:
{
    "youtube_links": [],
    "articles": [],
    "documentation": [],
    "practice_links": [],
    "books": [],
    "courses": [],
    "keywords": ["..."],
    "search_query": "..."
}

Important: Do NOT add any extra text outside the JSON.
`

// Selection asks the model to pick the best resources from each bucket.
func Selection(question, role, experience string, buckets domain.MaterialBuckets) (string, error) {
	raw, err := json.Marshal(buckets)
	if err != nil {
		return "", fmt.Errorf("encode study materials: %w", err)
	}
	return fmt.Sprintf(selectionTemplate, question, role, experience, string(raw)), nil
}
