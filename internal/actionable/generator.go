package actionable

import (
	"strings"

	"care-feedback-go/internal/types"
)

// Advice is the coaching shown next to a staff member's chart.
type Advice struct {
	WeakestCategory string `json:"weakest_category"`
	Message         string `json:"message"`
}

const (
	DefaultMessage  = "今日も一日頑張りましょう！"
	fallbackMessage = "あなたの強みをさらに伸ばしていきましょう！"
	fallbackExample = "関連するケアプランの例"
)

var messages = map[string]string{
	types.CategorySpeech:        "今日は入居者様ともっとお話してみませんか？小さな会話が信頼に繋がります。",
	types.CategoryPersonal:      "Aさんの好きな食べ物、知っていますか？パーソナルな情報に注目してみましょう。",
	types.CategoryBADL:          "食事や着替えの介助で、新しい工夫ができないか考えてみるのはどうでしょう？",
	types.CategoryIADL:          "買い物や掃除など、入居者様ができることを増やす支援を意識してみましょう。",
	types.CategoryCommunication: "ご家族との連携や、他のスタッフへの情報共有を工夫すると良いかもしれません。",
	types.CategoryEnvironment:   "居室の環境整備や、共有スペースの安全確認など、周りを見渡してみましょう。",
}

var examplePlans = map[string]string{
	types.CategoryBADL:          "例：食事介助、入浴の支援",
	types.CategoryIADL:          "例：買い物支援、服薬管理",
	types.CategoryCommunication: "例：他者との会話機会の創出",
	types.CategoryEnvironment:   "例：居室の環境整備、手すりの設置",
}

// Generate picks the category where the staff member scored lowest. On a tie
// the later category wins. Without a comparison only the greeting is set, and
// only when a staff member was selected.
func Generate(cmp *types.StaffComparison, staffSelected bool) Advice {
	if cmp == nil || len(cmp.Categories) == 0 {
		if staffSelected {
			return Advice{Message: DefaultMessage}
		}
		return Advice{}
	}

	lowest := cmp.Categories[0]
	for _, c := range cmp.Categories[1:] {
		if !(lowest.Individual < c.Individual) {
			lowest = c
		}
	}

	msg, ok := messages[lowest.Subject]
	if !ok {
		msg = fallbackMessage
	}
	return Advice{WeakestCategory: lowest.Subject, Message: msg}
}

// SuggestPlans collects, per resident, the care plans that reference an ICF
// code in category. Categories not measured by ICF codes yield an empty map.
func SuggestPlans(residents []types.Resident, category string) map[string][]string {
	out := map[string][]string{}
	cat, ok := types.LookupCategory(category)
	if !ok || !cat.IsICF() {
		return out
	}
	for _, res := range residents {
		for _, p := range res.CareplanICF {
			if planMatches(p, cat) {
				out[res.Name] = append(out[res.Name], p.Plan)
			}
		}
	}
	return out
}

func planMatches(p types.CarePlan, cat types.Category) bool {
	for _, code := range p.ICFCodes {
		for _, prefix := range cat.ICFPrefixes {
			if strings.HasPrefix(code, prefix) {
				return true
			}
		}
	}
	return false
}

// ExamplePlan is a sample plan text for a category with no matching plans.
func ExamplePlan(category string) string {
	if cat, ok := types.LookupCategory(category); ok {
		if ex, ok := examplePlans[cat.Key]; ok {
			return ex
		}
	}
	return fallbackExample
}
