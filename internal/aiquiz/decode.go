package aiquiz

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"hero-quiz-service/internal/domain"
)

// Shape classifies how much work decoding took.
type Shape string

const (
	// ShapeStrict means the text parsed directly and matched the schema.
	ShapeStrict Shape = "strict"
	// ShapeRepaired means extraction or normalization was needed.
	ShapeRepaired Shape = "repaired"
	// ShapeFallback means nothing usable was found and the placeholder was used.
	ShapeFallback Shape = "fallback"
)

// DefaultQuestionCount is used when the caller does not ask for a count.
const DefaultQuestionCount = 5

const choicesPerQuestion = 3

var (
	objectSpan          = regexp.MustCompile(`(?s)\{.*\}`)
	placeholderChoices  = [choicesPerQuestion]string{"A", "B", "C"}
	fallbackChoiceTexts = []any{"Perjuangan", "Kelahiran", "Wafat"}
)

// Decoded is the normalized result of a model response.
type Decoded struct {
	Questions []domain.Question
	Shape     Shape
}

// Decode turns raw model text into at most requested questions. It never
// fails: unusable text degrades to a single placeholder question about the hero.
func Decode(raw, heroName string, requested int) Decoded {
	if requested <= 0 {
		requested = DefaultQuestionCount
	}

	shape := ShapeStrict
	doc, ok := parseObject(raw)
	if !ok {
		shape = ShapeRepaired
		if m := objectSpan.FindString(raw); m != "" {
			doc, ok = parseObject(m)
		}
	}
	if ok && shape == ShapeStrict && !conforms(doc) {
		shape = ShapeRepaired
	}

	var items []any
	if obj, isObj := doc.(map[string]any); ok && isObj {
		items, _ = obj["questions"].([]any)
	}
	if len(items) == 0 {
		shape = ShapeFallback
		items = []any{map[string]any{
			"prompt":      fmt.Sprintf("Apa fakta utama tentang %s?", heroName),
			"choices":     fallbackChoiceTexts,
			"answerIndex": float64(0),
		}}
	}

	if len(items) > requested {
		items = items[:requested]
	}
	questions := make([]domain.Question, 0, len(items))
	for i, item := range items {
		questions = append(questions, normalizeQuestion(i+1, item))
	}
	return Decoded{Questions: questions, Shape: shape}
}

func parseObject(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

func normalizeQuestion(n int, item any) domain.Question {
	q, _ := item.(map[string]any)
	qid := "q" + strconv.Itoa(n)

	prompt := ""
	if v, present := q["prompt"]; present && v != nil {
		prompt = strings.TrimSpace(stringify(v))
	}
	if prompt == "" {
		prompt = "Pertanyaan " + strconv.Itoa(n)
	}

	texts := placeholderChoices[:]
	if raw, isArr := q["choices"].([]any); isArr {
		texts = make([]string, choicesPerQuestion)
		for m := range texts {
			if m < len(raw) {
				texts[m] = stringify(raw[m])
			} else {
				texts[m] = placeholderChoices[m]
			}
		}
	}

	answer := 0
	if f, isNum := q["answerIndex"].(float64); isNum && !math.IsNaN(f) {
		answer = int(max(0, min(choicesPerQuestion-1, math.Trunc(f))))
	}

	options := make([]domain.Option, len(texts))
	for m, text := range texts {
		options[m] = domain.Option{ID: choiceID(qid, m), Text: text}
	}

	explanation := ""
	if v, present := q["explanation"]; present && v != nil {
		explanation = stringify(v)
	}

	return domain.Question{
		ID:          qid,
		Prompt:      prompt,
		Options:     options,
		AnswerID:    choiceID(qid, answer),
		Explanation: explanation,
	}
}

func choiceID(qid string, m int) string {
	return qid + "_c" + strconv.Itoa(m)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
