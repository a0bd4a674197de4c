// Package analysis — тематический анализ записей через LLM.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrDisabled — анализ не настроен (нет ключа API).
var ErrDisabled = errors.New("analysis service is not configured")

const systemPrompt = "You are a sophisticated qualitative researcher. Provide an in-depth thematic analysis " +
	"of journal entries, highlighting main themes, emotions, and patterns with clarity."

const userPrompt = "Analyze the following journal entries and provide a comprehensive thematic analysis. " +
	"Include main themes, emotions, patterns, and a summary. Format the response as a JSON object with keys: " +
	"main_themes (list), emotions (list), patterns (list), and summary (string).\n\n"

// EntryView — то, что уходит в модель по каждой записи.
type EntryView struct {
	Title       string
	Project     string
	Location    string
	Observation string
	Reflection  string
	Tags        []string
	CreatedAt   time.Time
}

// Summary — структурированный результат анализа.
type Summary struct {
	MainThemes []string `json:"main_themes"`
	Emotions   []string `json:"emotions"`
	Patterns   []string `json:"patterns"`
	Summary    string   `json:"summary"`
}

// Model — часть llms.Model, которая нужна клиенту.
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client строит промпт, вызывает модель и разбирает JSON-ответ.
type Client struct {
	model     Model
	maxTokens int
}

func NewClient(model Model) *Client {
	return &Client{model: model, maxTokens: 2000}
}

// NewOpenAIClient создаёт клиента поверх OpenAI.
func NewOpenAIClient(apiKey, modelName string) (*Client, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if modelName != "" {
		opts = append(opts, openai.WithModel(modelName))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return NewClient(llm), nil
}

func (c *Client) Analyze(ctx context.Context, entries []EntryView) (*Summary, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(entries)),
	}
	resp, err := c.model.GenerateContent(ctx, messages, llms.WithMaxTokens(c.maxTokens))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}
	return ParseSummary(resp.Choices[0].Content)
}

// BuildPrompt собирает текст запроса по записям.
func BuildPrompt(entries []EntryView) string {
	var b strings.Builder
	b.WriteString(userPrompt)
	for _, e := range entries {
		fmt.Fprintf(&b, "Title: %s\n", e.Title)
		if e.Project != "" {
			fmt.Fprintf(&b, "Project: %s\n", e.Project)
		}
		if !e.CreatedAt.IsZero() {
			fmt.Fprintf(&b, "Date: %s\n", e.CreatedAt.Format(time.RFC3339))
		}
		if e.Location != "" {
			fmt.Fprintf(&b, "Location: %s\n", e.Location)
		}
		if len(e.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(e.Tags, ", "))
		}
		fmt.Fprintf(&b, "Content: %s\n", e.Observation)
		if e.Reflection != "" {
			fmt.Fprintf(&b, "Reflection: %s\n", e.Reflection)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ParseSummary разбирает ответ модели. Обёртку ```json ... ``` снимаем.
func ParseSummary(content string) (*Summary, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	var out Summary
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if out.Summary == "" && len(out.MainThemes) == 0 {
		return nil, errors.New("analysis response has no content")
	}
	return &out, nil
}

// Disabled отвечает ErrDisabled на любой запрос.
type Disabled struct{}

func (Disabled) Analyze(context.Context, []EntryView) (*Summary, error) {
	return nil, ErrDisabled
}
