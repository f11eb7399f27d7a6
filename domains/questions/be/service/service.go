package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/openai"
)

var ErrInvalidInput = errors.New("invalid input")

var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// QuizQuestion is one multiple-choice question. The numbered option and
// description field names match the quiz storage schema downstream.
type QuizQuestion struct {
	Question      string `json:"Question"`
	Option1       string `json:"options__001"`
	Description1  string `json:"description__001"`
	Option2       string `json:"options__002"`
	Description2  string `json:"description__002"`
	Option3       string `json:"options__003"`
	Description3  string `json:"description__003"`
	Option4       string `json:"options__004"`
	Description4  string `json:"description__004"`
	CorrectAnswer int    `json:"CorrectAnswer"`
}

type quizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

// GenerateRequest describes the question to generate.
type GenerateRequest struct {
	Subject           string `json:"subject"`
	Topic             string `json:"topic"`
	Subtopic          string `json:"subtopic"`
	GradeLevel        string `json:"grade_level"`
	Difficulty        string `json:"difficulty"`
	LearningStyle     string `json:"learning_style"`
	AdditionalContext string `json:"additional_context"`
}

// RegenerateRequest asks for an edited version of an existing question.
type RegenerateRequest struct {
	CurrentQuestion map[string]any `json:"current_question"`
	EditInstruction string         `json:"edit_instruction"`
	Subject         string         `json:"subject"`
	Topic           string         `json:"topic"`
	GradeLevel      string         `json:"grade_level"`
	Difficulty      string         `json:"difficulty"`
}

// Service generates quiz questions through a structured-output model call.
// Model output is validated against the same schema the model was asked to
// follow before anything is decoded from it.
type Service struct {
	ai     openai.Client
	schema *jsonschema.Schema
	logger *zap.Logger
}

// New constructs a Service instance.
func New(ai openai.Client, logger *zap.Logger) *Service {
	if ai == nil {
		panic("openai client is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Service{ai: ai, schema: compileQuizSchema(), logger: logger}
}

func (r GenerateRequest) validate() error {
	if r.Subject == "" || r.Topic == "" || r.GradeLevel == "" {
		return fmt.Errorf("%w: subject, topic and grade_level are required", ErrInvalidInput)
	}
	if !difficulties[r.Difficulty] {
		return fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrInvalidInput)
	}
	return nil
}

func (r RegenerateRequest) validate() error {
	if len(r.CurrentQuestion) == 0 || r.EditInstruction == "" {
		return fmt.Errorf("%w: current_question and edit_instruction are required", ErrInvalidInput)
	}
	if r.Subject == "" || r.Topic == "" || r.GradeLevel == "" {
		return fmt.Errorf("%w: subject, topic and grade_level are required", ErrInvalidInput)
	}
	if !difficulties[r.Difficulty] {
		return fmt.Errorf("%w: difficulty must be easy, medium or hard", ErrInvalidInput)
	}
	return nil
}

// Generate produces one new quiz question.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (QuizQuestion, error) {
	if err := req.validate(); err != nil {
		return QuizQuestion{}, err
	}
	return s.requestQuestion(ctx, generatePrompt(req))
}

// Regenerate edits an existing question per the instruction and summarizes
// what changed.
func (s *Service) Regenerate(ctx context.Context, req RegenerateRequest) (QuizQuestion, []string, error) {
	if err := req.validate(); err != nil {
		return QuizQuestion{}, nil, err
	}

	question, err := s.requestQuestion(ctx, regeneratePrompt(req))
	if err != nil {
		return QuizQuestion{}, nil, err
	}
	return question, detectChanges(req.CurrentQuestion, question), nil
}

func (s *Service) requestQuestion(ctx context.Context, userPrompt string) (QuizQuestion, error) {
	raw, err := s.ai.GenerateJSON(ctx, systemPrompt, userPrompt, "quiz_response", quizSchema())
	if err != nil {
		return QuizQuestion{}, fmt.Errorf("generate question: %w", err)
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return QuizQuestion{}, fmt.Errorf("decode generated question: %w", err)
	}
	if err := s.schema.Validate(document); err != nil {
		return QuizQuestion{}, fmt.Errorf("model response schema validation: %w", err)
	}

	var parsed quizResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return QuizQuestion{}, fmt.Errorf("decode generated question: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return QuizQuestion{}, errors.New("model returned no questions")
	}
	return parsed.Questions[0], nil
}

const systemPrompt = `You are an expert educator creating high-quality quiz questions.

Requirements:
1. Educationally valuable, not rote
2. Clear, age-appropriate language
3. Use LaTeX for math/science
4. Explanations: 2-3 sentences
5. Exactly one correct option
`

func generatePrompt(req GenerateRequest) string {
	var b strings.Builder
	topic := req.Topic
	if req.Subtopic != "" {
		topic += " - " + req.Subtopic
	}
	fmt.Fprintf(&b, "Create a %s quiz question for %s on %s for %s students.\n\n",
		req.Difficulty, req.Subject, topic, req.GradeLevel)
	b.WriteString("- 4 MCQ options\n- Detailed explanations\n- Only one correct answer\n")
	if req.LearningStyle != "" {
		fmt.Fprintf(&b, "- Adapt for %s learners\n", req.LearningStyle)
	}
	if req.AdditionalContext != "" {
		fmt.Fprintf(&b, "Additional context: %s\n", req.AdditionalContext)
	}
	return b.String()
}

func regeneratePrompt(req RegenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Modify this quiz question with instruction: %s\n", req.EditInstruction)
	if current, err := json.Marshal(req.CurrentQuestion); err == nil {
		fmt.Fprintf(&b, "Current question: %s\n", current)
	}
	fmt.Fprintf(&b, "Keep subject=%s, topic=%s, grade=%s, difficulty=%s.\n",
		req.Subject, req.Topic, req.GradeLevel, req.Difficulty)
	b.WriteString("Ensure all options and explanations are coherent and only one is correct.\n")
	return b.String()
}

func detectChanges(current map[string]any, next QuizQuestion) []string {
	var changes []string
	if text, _ := current["Question"].(string); text != next.Question {
		changes = append(changes, "Question text updated")
	}
	changes = append(changes, "All options and explanations regenerated")
	return changes
}

// quizSchema is the strict structured-output schema for one batch of quiz
// questions.
func quizSchema() map[string]any {
	questionProps := map[string]any{
		"Question": map[string]any{"type": "string"},
	}
	required := []string{"Question"}
	for i := 1; i <= 4; i++ {
		opt := fmt.Sprintf("options__%03d", i)
		desc := fmt.Sprintf("description__%03d", i)
		questionProps[opt] = map[string]any{"type": "string"}
		questionProps[desc] = map[string]any{"type": "string"}
		required = append(required, opt, desc)
	}
	questionProps["CorrectAnswer"] = map[string]any{"type": "integer", "minimum": 1, "maximum": 4}
	required = append(required, "CorrectAnswer")

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"properties":           questionProps,
					"required":             required,
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	}
}

// compileQuizSchema compiles the structured-output schema so model responses
// can be checked against exactly what the model was asked for. The schema is
// static, so a compile failure is a programming error.
func compileQuizSchema() *jsonschema.Schema {
	raw, err := json.Marshal(quizSchema())
	if err != nil {
		panic(fmt.Sprintf("encode quiz schema: %v", err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("memory://schemas/quiz_response.json", bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("register quiz schema: %v", err))
	}
	compiled, err := compiler.Compile("memory://schemas/quiz_response.json")
	if err != nil {
		panic(fmt.Sprintf("compile quiz schema: %v", err))
	}
	return compiled
}
