package format

import (
	"html/template"
	"strings"
)

type Kind string

const (
	KindDiscard       Kind = "discard"
	KindOption        Kind = "option"
	KindCorrectAnswer Kind = "correct_answer"
	KindPlain         Kind = "plain"
)

type TaggedLine struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

const (
	// preamble the model puts in front of the list, e.g.
	// "Вот 10 вопросов с вариантами ответов по теме ..."
	DiscardMarker = "Вот 10 вопросов"
	AnswerMarker  = "Ответ:"
)

// Cyrillic А Б В Г, not Latin look-alikes.
var OptionPrefixes = []string{"А)", "Б)", "В)", "Г)"}

// ClassifyLine returns the kind of a single line. First match wins.
func ClassifyLine(line string) Kind {
	switch {
	case strings.Contains(line, DiscardMarker):
		return KindDiscard
	case strings.Contains(line, AnswerMarker):
		return KindCorrectAnswer
	}
	for _, p := range OptionPrefixes {
		if strings.HasPrefix(line, p) {
			return KindOption
		}
	}
	return KindPlain
}

// Classify splits raw on "\n" and tags every line, dropping discard lines.
// Relative order is preserved.
func Classify(raw string) []TaggedLine {
	lines := strings.Split(raw, "\n")
	out := make([]TaggedLine, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSuffix(l, "\r")
		k := ClassifyLine(l)
		if k == KindDiscard {
			continue
		}
		out = append(out, TaggedLine{Kind: k, Text: l})
	}
	return out
}

// RenderHTML wraps every line in a div. Text is escaped.
func RenderHTML(lines []TaggedLine) template.HTML {
	var b strings.Builder
	for _, l := range lines {
		switch l.Kind {
		case KindCorrectAnswer:
			b.WriteString(`<div class="mcq-correct-answer">`)
		case KindOption:
			b.WriteString(`<div class="mcq-answers">`)
		default:
			b.WriteString(`<div>`)
		}
		b.WriteString(template.HTMLEscapeString(l.Text))
		b.WriteString(`</div>`)
	}
	return template.HTML(b.String())
}
