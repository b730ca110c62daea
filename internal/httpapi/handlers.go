package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"care-feedback-go/internal/actionable"
	"care-feedback-go/internal/pipeline"
	"care-feedback-go/internal/types"
)

func requireParams(r *http.Request, names ...string) (map[string]string, error) {
	q := r.URL.Query()
	out := make(map[string]string, len(names))
	for _, n := range names {
		v := q.Get(n)
		if v == "" {
			return nil, fmt.Errorf("%w: %s is required", pipeline.ErrInvalidQuery, n)
		}
		out[n] = v
	}
	return out, nil
}

func parseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, types.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", pipeline.ErrInvalidQuery, s)
	}
	return t, nil
}

// HandleResidents serves GET /residents?floor=.
func (h *Handler) HandleResidents(w http.ResponseWriter, r *http.Request) {
	p, err := requireParams(r, "floor")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	residents, err := h.roster.ListResidents(r.Context(), p["floor"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, residents)
}

// HandleStaff serves GET /staff?floor=.
func (h *Handler) HandleStaff(w http.ResponseWriter, r *http.Request) {
	p, err := requireParams(r, "floor")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	staff, err := h.roster.ListStaff(r.Context(), p["floor"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, staff)
}

func (h *Handler) HandleListAnalyses(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.loader.ListAnalyses(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, catalog)
}

func (h *Handler) HandleAvailableDates(w http.ResponseWriter, r *http.Request) {
	p, err := requireParams(r, "staffName")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dates, err := h.loader.AvailableDates(r.Context(), p["staffName"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dates)
}

// HandleFeedback serves GET /feedback?floor=&staff=&from=&to=. Requests
// carrying SessionHeader go through that viewer's session.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	p, err := requireParams(r, "floor", "from")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := types.FeedbackQuery{Floor: p["floor"], Staff: r.URL.Query().Get("staff")}
	if q.Range.From, err = parseDay(p["from"]); err != nil {
		h.fail(w, r, err)
		return
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if q.Range.To, err = parseDay(to); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	var report *types.FeedbackReport
	if id := r.Header.Get(SessionHeader); id != "" {
		report, err = h.sessions.Get(id).Run(r.Context(), q)
	} else {
		report, err = h.pipeline.Feedback(r.Context(), q)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// HandleResidentInfo serves GET /resident-info?floor=&name=&month=YYYYMM.
func (h *Handler) HandleResidentInfo(w http.ResponseWriter, r *http.Request) {
	p, err := requireParams(r, "floor", "name", "month")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	month, err := h.pipeline.ResidentMonth(r.Context(), p["floor"], p["name"], p["month"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, month)
}

func (h *Handler) HandlePlanSuggestions(w http.ResponseWriter, r *http.Request) {
	p, err := requireParams(r, "floor", "category")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	suggestions, err := h.pipeline.PlanSuggestions(r.Context(), p["floor"], p["category"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestions)
}

type checklistResponse struct {
	Submission  *types.ChecklistSubmission     `json:"submission"`
	Categorized *actionable.CategorizedAnswers `json:"categorized"`
}

// HandleChecklist serves GET /checklist?profileId=&date=YYYY-MM-DD. Without
// date the newest submission is returned.
func (h *Handler) HandleChecklist(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		h.fail(w, r, errNoProfiles)
		return
	}
	p, err := requireParams(r, "profileId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var day time.Time
	if d := r.URL.Query().Get("date"); d != "" {
		if day, err = parseDay(d); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	sub, err := h.profiles.LatestChecklist(r.Context(), p["profileId"], day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := checklistResponse{Submission: sub}
	if sub != nil {
		c := h.checklist.Categorize(sub.Answers)
		resp.Categorized = &c
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleGoalHistory serves GET /goal-history?profileId=, newest first.
func (h *Handler) HandleGoalHistory(w http.ResponseWriter, r *http.Request) {
	if h.profiles == nil {
		h.fail(w, r, errNoProfiles)
		return
	}
	p, err := requireParams(r, "profileId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	goals, err := h.profiles.GoalHistory(r.Context(), p["profileId"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goals)
}
