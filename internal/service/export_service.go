package service

import (
	"bytes"
	"context"
	"html/template"
	"regexp"
	"strings"

	"interview-prep/internal/domain"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exportStyle = "github"

var fencedBlock = regexp.MustCompile("(?s)```([\\w+#.-]*)[ \\t]*\\n(.*?)```")

// ExportedDocument is a rendered, downloadable session.
type ExportedDocument struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders a session's questions and answers as a standalone HTML page.
type ExportService interface {
	ExportSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*ExportedDocument, error)
}

type exportServiceImpl struct {
	sessions  domain.SessionRepository
	questions domain.QuestionRepository
	markdown  goldmark.Markdown
	formatter *chromahtml.Formatter
	style     *chroma.Style
	page      *template.Template
}

func NewExportService(sessions domain.SessionRepository, questions domain.QuestionRepository) ExportService {
	return &exportServiceImpl{
		sessions:  sessions,
		questions: questions,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
		style:     styles.Get(exportStyle),
		page:      template.Must(template.New("session").Parse(sessionPage)),
	}
}

type exportQuestion struct {
	Number   int
	Question string
	Answer   template.HTML
}

type exportPage struct {
	Role        string
	Experience  string
	Topics      string
	Description string
	Date        string
	Questions   []exportQuestion
}

func (s *exportServiceImpl) ExportSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*ExportedDocument, error) {
	session, err := ownedSession(ctx, s.sessions, sessionID, userID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.FirstBySession(ctx, sessionID, 0)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load questions", err)
	}

	page := exportPage{
		Role:        session.Role,
		Experience:  session.Experience,
		Topics:      session.TopicsToFocus,
		Description: session.Description,
		Date:        session.CreatedAt.Format("January 2, 2006"),
		Questions:   make([]exportQuestion, 0, len(questions)),
	}
	for i, q := range questions {
		answer, err := s.renderAnswer(q.Answer)
		if err != nil {
			return nil, domain.NewInternalError("Failed to render answer", err)
		}
		page.Questions = append(page.Questions, exportQuestion{Number: i + 1, Question: q.Question, Answer: answer})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, page); err != nil {
		return nil, domain.NewInternalError("Failed to render session", err)
	}
	return &ExportedDocument{
		Filename:    exportFilename(session.Role),
		ContentType: "text/html; charset=utf-8",
		Body:        buf.Bytes(),
	}, nil
}

// renderAnswer converts markdown prose with goldmark and replaces every fenced
// block with chroma-highlighted markup. goldmark omits raw HTML by default.
func (s *exportServiceImpl) renderAnswer(answer string) (template.HTML, error) {
	var out strings.Builder
	rest := answer
	for {
		loc := fencedBlock.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		if err := s.renderProse(&out, rest[:loc[0]]); err != nil {
			return "", err
		}
		lang := rest[loc[2]:loc[3]]
		if err := s.renderCode(&out, lang, rest[loc[4]:loc[5]]); err != nil {
			return "", err
		}
		rest = rest[loc[1]:]
	}
	if err := s.renderProse(&out, rest); err != nil {
		return "", err
	}
	return template.HTML(out.String()), nil
}

func (s *exportServiceImpl) renderProse(out *strings.Builder, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		return err
	}
	out.Write(buf.Bytes())
	return nil
}

func (s *exportServiceImpl) renderCode(out *strings.Builder, lang, code string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return err
	}
	badge := lang
	if badge == "" {
		badge = "code"
	}
	out.WriteString(`<div class="code-block"><span class="lang">`)
	out.WriteString(template.HTMLEscapeString(badge))
	out.WriteString(`</span>`)
	var buf bytes.Buffer
	if err := s.formatter.Format(&buf, s.style, iter); err != nil {
		return err
	}
	out.Write(buf.Bytes())
	out.WriteString(`</div>`)
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

func exportFilename(role string) string {
	slug := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(role), "-"), "-")
	if slug == "" {
		slug = "session"
	}
	return slug + "-interview.html"
}

const sessionPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Role}} Interview Preparation</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 860px; margin: 2rem auto; color: #1f2328; line-height: 1.6; }
header { border-bottom: 2px solid #d0d7de; margin-bottom: 2rem; }
.meta span { margin-right: 1.5rem; color: #57606a; }
.question { margin-bottom: 2.5rem; page-break-inside: avoid; }
.question h2 { font-size: 1.15rem; }
.number { color: #0969da; margin-right: .5rem; }
.code-block { position: relative; border: 1px solid #d0d7de; border-radius: 6px; margin: 1rem 0; overflow-x: auto; }
.code-block pre { margin: 0; padding: 1rem; }
.lang { position: absolute; top: .25rem; right: .5rem; font-size: .75rem; text-transform: uppercase; color: #57606a; }
code { background: #f6f8fa; padding: .1rem .3rem; border-radius: 4px; }
</style>
</head>
<body>
<header>
<h1>{{.Role}} Interview Preparation</h1>
<p class="meta"><span>Experience: {{.Experience}} years</span><span>Generated: {{.Date}}</span></p>
{{if .Topics}}<p>Topics: {{.Topics}}</p>{{end}}
{{if .Description}}<p>{{.Description}}</p>{{end}}
</header>
{{range .Questions}}
<section class="question">
<h2><span class="number">Q{{.Number}}.</span>{{.Question}}</h2>
<div class="answer">{{.Answer}}</div>
</section>
{{else}}
<p>This session has no questions yet.</p>
{{end}}
</body>
</html>
`
