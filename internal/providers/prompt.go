package providers

import (
	"fmt"
)

// Prompt is a fixed persona plus a user template with exactly one %s for the topic.
type Prompt struct {
	Persona  string
	Template string
}

var (
	// used by the OpenAI and Perplexity pages
	MentorPrompt = Prompt{
		Persona: "Ты эксперт по подготовке учебных материалов. Твоя задача — разработать 10 вопросов (MCQ) " +
			"с вариантами ответов и дать на них ответы. Отвечать нужно только на русском языке.",
		Template: "Ваша задача — разработать 10 ВОПРОСОВ (MCQ) по %s, а также, дать на них ответы. " +
			"Отвечать нужно только на русском языке. Give 10 MCQ Questions with answers",
	}

	CotypePrompt = Prompt{
		Persona: "Ты помощник, создающий вопросы MCQ с вариантами ответов по предоставленной теме. " +
			"Весь ответ, включая вопросы, варианты ответов и любые пояснения, должен быть на русском языке.",
		Template: "Сгенерируй 10 вопросов с вариантами ответов по теме: %s. " +
			"Весь ответ, включая вопросы и варианты ответов, должен быть только на русском языке.",
	}
)

// Messages builds the system + user pair for topic.
func (p Prompt) Messages(topic string) []Message {
	return []Message{
		{Role: RoleSystem, Content: p.Persona},
		{Role: RoleUser, Content: fmt.Sprintf(p.Template, topic)},
	}
}
