package actionable

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	AnswerKnow     = "know"
	AnswerCanDo    = "can_do"
	AnswerDontKnow = "dont_know"

	questionRadio    = "radio"
	questionTextarea = "textarea"
)

type ChecklistQuestion struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type ChecklistCategory struct {
	ID        string              `json:"category_id"`
	Title     string              `json:"category_title"`
	Questions []ChecklistQuestion `json:"questions"`
}

// Checklist is the self-checklist question catalog, in display order.
type Checklist []ChecklistCategory

// LoadChecklist reads a question catalog from a JSON file.
func LoadChecklist(path string) (Checklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist catalog: %w", err)
	}
	var c Checklist
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode checklist catalog %s: %w", path, err)
	}
	return c, nil
}

type AnswerItem struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type DescriptionItem struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
	Category string `json:"category"`
}

// CategorizedAnswers groups a submission by how confident the staff member
// said they were, plus the free-text answers.
type CategorizedAnswers struct {
	Know         []AnswerItem      `json:"know"`
	CanDo        []AnswerItem      `json:"can_do"`
	DontKnow     []AnswerItem      `json:"dont_know"`
	Descriptions []DescriptionItem `json:"descriptions"`
}

type questionInfo struct {
	ChecklistQuestion
	category string
}

// Categorize sorts answers into the catalog's groups in catalog order.
// Answers to unknown questions, unknown radio values and empty text
// answers are dropped. A question id listed twice takes its last entry.
func (c Checklist) Categorize(answers map[string]string) CategorizedAnswers {
	out := CategorizedAnswers{
		Know:         []AnswerItem{},
		CanDo:        []AnswerItem{},
		DontKnow:     []AnswerItem{},
		Descriptions: []DescriptionItem{},
	}

	index := map[string]questionInfo{}
	var order []string
	for _, cat := range c {
		for _, q := range cat.Questions {
			if _, seen := index[q.ID]; !seen {
				order = append(order, q.ID)
			}
			index[q.ID] = questionInfo{ChecklistQuestion: q, category: cat.Title}
		}
	}

	for _, id := range order {
		answer, ok := answers[id]
		if !ok {
			continue
		}
		q := index[id]
		item := AnswerItem{Text: q.Text, Category: q.category}
		switch q.Type {
		case questionRadio:
			switch answer {
			case AnswerKnow:
				out.Know = append(out.Know, item)
			case AnswerCanDo:
				out.CanDo = append(out.CanDo, item)
			case AnswerDontKnow:
				out.DontKnow = append(out.DontKnow, item)
			}
		case questionTextarea:
			if answer != "" {
				out.Descriptions = append(out.Descriptions, DescriptionItem{Question: q.Text, Answer: answer, Category: q.category})
			}
		}
	}
	return out
}
