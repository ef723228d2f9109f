package contentgen

import (
	"bytes"
	"strings"
	"text/template"
)

const sentenceSystemPrompt = `You write practice sentences for language learners.

Rules:
- Write one natural sentence in the requested language.
- The sentence must contain the practice word in a correct grammatical form.
- Relate the sentence to the learner's topics when possible.
- Keep vocabulary and grammar appropriate for a learner.
- Use only words of the requested language.
- If grammar patterns to practice are listed, prefer a sentence that exercises them.`

const translationSystemPrompt = `You translate single sentences for language learners.

Rules:
- Translate faithfully and naturally into the requested language.
- Keep the meaning and tense of the original.
- Return only the translation.`

const distractorsSystemPrompt = `You write wrong options for multiple-choice vocabulary questions.

Rules:
- Each option must be a single word or short phrase in the requested language.
- Options must be plausible to a learner but clearly not the correct answer.
- Prefer words of the same part of speech and similar length.
- Never repeat the correct answer, in any form or case.`

const classifySystemPrompt = `You grade answers in a vocabulary trainer. The learner was asked for one word.

Instructions:
- "correct": the answer is the expected word, ignoring case and surrounding space.
- "morphological_error": the answer is the expected word in a wrong grammatical form.
- "synonym_accepted": the answer is a different word with the same meaning in this context.
- "incorrect": anything else.
- For incorrect answers, describe the mistake as "Category: detail" using categories such as Spelling, Grammar, Vocabulary.
- Keep the explanation to one sentence.`

var sentenceUserTemplate = template.Must(template.New("sentence").Funcs(template.FuncMap{
	"topics": topicList,
}).Parse(`Language: {{.Language}}
Practice word: {{.Word}}
Topics: {{topics .Topics}}
{{- if .GrammarHint}}
Grammar patterns to practice: {{.GrammarHint}}
{{- end}}`))

var translationUserTemplate = template.Must(template.New("translation").Parse(`Translate into {{.Language}}:
{{.Sentence}}`))

var distractorsUserTemplate = template.Must(template.New("distractors").Parse(`Language: {{.Language}}
Correct answer: {{.Correct}}
Number of wrong options: {{.Count}}`))

var classifyUserTemplate = template.Must(template.New("classify").Parse(`Language: {{.Language}}
Expected word: {{.Expected}}
Learner's answer: {{.Actual}}`))

func topicList(topics []string) string {
	var kept []string
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return "general topics"
	}
	return strings.Join(kept, ", ")
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
