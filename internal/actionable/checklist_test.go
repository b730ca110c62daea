package actionable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
  {"category_id":"c1","category_title":"食事","questions":[
    {"id":"q1","text":"嚥下の評価","type":"radio"},
    {"id":"q2","text":"食事形態","type":"radio"},
    {"id":"q3","text":"気づいたこと","type":"textarea"}
  ]},
  {"category_id":"c2","category_title":"移動","questions":[
    {"id":"q4","text":"車椅子移乗","type":"radio"},
    {"id":"q5","text":"歩行介助","type":"radio"},
    {"id":"q6","text":"工夫","type":"textarea"}
  ]}
]`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checklist.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadChecklist(t *testing.T) {
	c, err := LoadChecklist(writeCatalog(t, catalogJSON))
	require.NoError(t, err)
	require.Len(t, c, 2)
	assert.Equal(t, "移動", c[1].Title)
	assert.Equal(t, ChecklistQuestion{ID: "q3", Text: "気づいたこと", Type: "textarea"}, c[0].Questions[2])

	_, err = LoadChecklist(writeCatalog(t, `{"not":"a list"}`))
	assert.Error(t, err)
	_, err = LoadChecklist(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCategorize(t *testing.T) {
	c, err := LoadChecklist(writeCatalog(t, catalogJSON))
	require.NoError(t, err)

	got := c.Categorize(map[string]string{
		"q5":      AnswerKnow,
		"q1":      AnswerKnow,
		"q2":      AnswerDontKnow,
		"q4":      "maybe",
		"q3":      "",
		"q6":      "声かけを増やした",
		"unknown": AnswerCanDo,
	})

	assert.Equal(t, []AnswerItem{{Text: "嚥下の評価", Category: "食事"}, {Text: "歩行介助", Category: "移動"}}, got.Know)
	assert.Empty(t, got.CanDo)
	assert.Equal(t, []AnswerItem{{Text: "食事形態", Category: "食事"}}, got.DontKnow)
	assert.Equal(t, []DescriptionItem{{Question: "工夫", Answer: "声かけを増やした", Category: "移動"}}, got.Descriptions)
}

func TestCategorizeEmpty(t *testing.T) {
	got := Checklist(nil).Categorize(map[string]string{"q1": AnswerKnow})
	assert.NotNil(t, got.Know)
	assert.Empty(t, got.Know)
	assert.NotNil(t, got.Descriptions)
}

func TestCategorizeDuplicateQuestionTakesLastEntry(t *testing.T) {
	c := Checklist{
		{Title: "A", Questions: []ChecklistQuestion{{ID: "q1", Text: "旧", Type: questionRadio}}},
		{Title: "B", Questions: []ChecklistQuestion{{ID: "q1", Text: "新", Type: questionRadio}}},
	}
	got := c.Categorize(map[string]string{"q1": AnswerCanDo})
	assert.Equal(t, []AnswerItem{{Text: "新", Category: "B"}}, got.CanDo)
}
