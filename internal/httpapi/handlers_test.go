package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"care-feedback-go/internal/actionable"
	"care-feedback-go/internal/dataset"
	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/pipeline"
	"care-feedback-go/internal/roster"
	"care-feedback-go/internal/storage"
	"care-feedback-go/internal/types"
)

type mapStore map[string]string

func (m mapStore) Download(_ context.Context, name string) ([]byte, error) {
	b, ok := m[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return []byte(b), nil
}

func (m mapStore) List(context.Context) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for k := range m {
		out = append(out, storage.ObjectInfo{Name: k})
	}
	return out, nil
}

type staticRoster struct {
	mu        sync.Mutex
	residents map[string][]types.Resident
	staff     map[string][]types.Staff
	down      bool
}

func (s *staticRoster) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *staticRoster) ListResidents(_ context.Context, floor string) ([]types.Resident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, roster.ErrUnavailable
	}
	return s.residents[floor], nil
}

func (s *staticRoster) ListStaff(_ context.Context, floor string) ([]types.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, roster.ErrUnavailable
	}
	return s.staff[floor], nil
}

type staticProfiles struct {
	submissions map[string]types.ChecklistSubmission
	goals       map[string][]types.GoalEntry

	mu   sync.Mutex
	days []time.Time
}

func (p *staticProfiles) requestedDays() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.days...)
}

func (p *staticProfiles) LatestChecklist(_ context.Context, profileID string, day time.Time) (*types.ChecklistSubmission, error) {
	p.mu.Lock()
	p.days = append(p.days, day)
	p.mu.Unlock()
	sub, ok := p.submissions[profileID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (p *staticProfiles) GoalHistory(_ context.Context, profileID string) ([]types.GoalEntry, error) {
	if profileID == "down" {
		return nil, roster.ErrUnavailable
	}
	goals := p.goals[profileID]
	if goals == nil {
		goals = []types.GoalEntry{}
	}
	return goals, nil
}

type HandlerSuite struct {
	suite.Suite
	prevLoc  *time.Location
	roster   *staticRoster
	profiles *staticProfiles
	srv      *httptest.Server
}

func (s *HandlerSuite) SetupTest() {
	loc, err := time.LoadLocation("Asia/Tokyo")
	s.Require().NoError(err)
	s.prevLoc = types.Location
	types.Location = loc

	store := mapStore{
		"202501_shokibo_analysis.json": `[
			{"記録時間":45678.4,"フロア名":"小規模多機能","登録者苗字":"佐藤","登録者名前":"花子","利用者苗字":"山田","利用者名前":"太郎",
			 "speech":"おはよう","icf1":"d450","emotion1":"喜び","person1":"孫の話"},
			{"記録時間":45679,"フロア名":"小規模多機能","登録者苗字":"鈴木","登録者名前":"一郎","icf1":"d640"}
		]`,
	}
	s.roster = &staticRoster{
		residents: map[string][]types.Resident{"小規模多機能": {{
			Name:        "山田太郎",
			CareplanICF: []types.CarePlan{{Plan: "歩行練習", ICFCodes: []string{"d450"}}},
		}}},
		staff: map[string][]types.Staff{"小規模多機能": {{Name: "佐藤花子", Floor: "小規模多機能"}}},
	}
	loader := dataset.NewLoader(store, dataset.NewFloorNames(map[string]string{"小規模多機能": "shokibo"}), logger.Nop())
	p := pipeline.New(loader, s.roster, logger.Nop())
	s.profiles = &staticProfiles{
		submissions: map[string]types.ChecklistSubmission{"p-1": {
			Answers:     map[string]string{"q1": actionable.AnswerKnow, "q2": actionable.AnswerDontKnow, "q3": "見守りを増やす"},
			SubmittedAt: time.Date(2025, 1, 21, 9, 0, 0, 0, loc),
		}},
		goals: map[string][]types.GoalEntry{"p-1": {
			{ID: "2", ProfileID: "p-1", GoalText: "笑顔で声かけ", Status: "achieved", CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "1", ProfileID: "p-1", GoalText: "記録を毎日書く", Status: "changed", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		}},
	}
	checklist := actionable.Checklist{{
		ID:    "c1",
		Title: "食事",
		Questions: []actionable.ChecklistQuestion{
			{ID: "q1", Text: "嚥下の評価", Type: "radio"},
			{ID: "q2", Text: "食事形態", Type: "radio"},
			{ID: "q3", Text: "気づいたこと", Type: "textarea"},
		},
	}}
	s.srv = httptest.NewServer(NewHandler(p, loader, s.roster, logger.Nop()).WithProfiles(s.profiles, checklist).Routes())
}

func (s *HandlerSuite) TearDownTest() {
	s.srv.Close()
	types.Location = s.prevLoc
}

func (s *HandlerSuite) url(path string) string {
	u, err := url.Parse(path)
	s.Require().NoError(err)
	u.RawQuery = u.Query().Encode()
	return s.srv.URL + u.String()
}

func (s *HandlerSuite) get(path string, out any) *http.Response {
	resp, err := http.Get(s.url(path))
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *HandlerSuite) TestHealthz() {
	resp := s.get("/healthz", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *HandlerSuite) TestFeedback() {
	var report types.FeedbackReport
	resp := s.get("/feedback?floor=小規模多機能&staff=佐藤花子&from=2025-01-01&to=2025-01-31", &report)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Empty(report.NoData)
	s.Require().NotNil(report.Comparison)
	s.Len(report.Comparison.Categories, 6)
	s.Equal(1, report.TotalStaffRecords)
	s.Require().Len(report.ResidentRecordInfo, 1)
	s.Equal(100, report.ResidentRecordInfo[0].CareplanMatchRate)
}

func (s *HandlerSuite) TestFeedbackWithSession() {
	req, err := http.NewRequest(http.MethodGet, s.url("/feedback?floor=小規模多機能&staff=佐藤花子&from=2025-01-21"), nil)
	s.Require().NoError(err)
	req.Header.Set(SessionHeader, "tab-1")
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerSuite) TestFeedbackBadRequest() {
	for _, path := range []string{
		"/feedback?staff=佐藤花子&from=2025-01-01",
		"/feedback?floor=1F",
		"/feedback?floor=1F&from=01/02/2025",
		"/feedback?floor=1F&from=2025-01-01&to=tomorrow",
	} {
		var body errorBody
		resp := s.get(path, &body)
		s.Equal(http.StatusBadRequest, resp.StatusCode, path)
		s.NotEmpty(body.Error, path)
	}
}

func (s *HandlerSuite) TestRosterEndpoints() {
	var residents []types.Resident
	resp := s.get("/residents?floor=小規模多機能", &residents)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(residents, 1)

	var staff []types.Staff
	resp = s.get("/staff?floor=小規模多機能", &staff)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal([]types.Staff{{Name: "佐藤花子", Floor: "小規模多機能"}}, staff)

	s.roster.setDown(true)
	var body errorBody
	resp = s.get("/residents?floor=小規模多機能", &body)
	s.Equal(http.StatusBadGateway, resp.StatusCode)

	resp = s.get("/staff", &body)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestCatalog() {
	var catalog map[string][]string
	resp := s.get("/analyses", &catalog)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(map[string][]string{"202501": {"小規模多機能"}}, catalog)

	var dates []types.AvailableDate
	resp = s.get("/available-dates?staffName=鈴木一郎", &dates)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal([]types.AvailableDate{{YearMonth: "202501", Floor: "小規模多機能"}}, dates)
}

func (s *HandlerSuite) TestResidentInfo() {
	var month types.ResidentMonth
	resp := s.get("/resident-info?floor=小規模多機能&name=山田太郎&month=202501", &month)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal([]types.PersonalRecord{{Time: "2025年1月21日 09:36", Content: "孫の話"}}, month.PersonalRecords)

	resp = s.get("/resident-info?floor=小規模多機能&name=山田太郎&month=2025", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestPlanSuggestions() {
	var got map[string][]string
	resp := s.get("/care-plan-suggestions?floor=小規模多機能&category=BADL", &got)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(map[string][]string{"山田太郎": {"歩行練習"}}, got)

	var none map[string][]string
	resp = s.get("/care-plan-suggestions?floor=小規模多機能&category=発話率", &none)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Empty(none)
}

func (s *HandlerSuite) TestChecklist() {
	var body struct {
		Submission  *types.ChecklistSubmission     `json:"submission"`
		Categorized *actionable.CategorizedAnswers `json:"categorized"`
	}
	resp := s.get("/checklist?profileId=p-1", &body)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().NotNil(body.Submission)
	s.Require().NotNil(body.Categorized)
	s.Equal([]actionable.AnswerItem{{Text: "嚥下の評価", Category: "食事"}}, body.Categorized.Know)
	s.Equal([]actionable.AnswerItem{{Text: "食事形態", Category: "食事"}}, body.Categorized.DontKnow)
	s.Empty(body.Categorized.CanDo)
	s.Equal([]actionable.DescriptionItem{{Question: "気づいたこと", Answer: "見守りを増やす", Category: "食事"}}, body.Categorized.Descriptions)
	s.True(s.profiles.requestedDays()[0].IsZero())

	var none map[string]any
	resp = s.get("/checklist?profileId=nobody&date=2025-01-21", &none)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Nil(none["submission"])
	s.Nil(none["categorized"])
	s.Equal(time.Date(2025, 1, 21, 0, 0, 0, 0, types.Location), s.profiles.requestedDays()[1])

	resp = s.get("/checklist?profileId=p-1&date=21/01", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	resp = s.get("/checklist", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestGoalHistory() {
	var goals []types.GoalEntry
	resp := s.get("/goal-history?profileId=p-1", &goals)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().Len(goals, 2)
	s.Equal("笑顔で声かけ", goals[0].GoalText)
	s.Equal("記録を毎日書く", goals[1].GoalText)

	var empty []types.GoalEntry
	resp = s.get("/goal-history?profileId=p-9", &empty)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotNil(empty)
	s.Empty(empty)

	resp = s.get("/goal-history?profileId=down", nil)
	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func TestProfileRoutesWithoutProfileSource(t *testing.T) {
	loader := dataset.NewLoader(mapStore{}, dataset.NewFloorNames(nil), logger.Nop())
	rs := &staticRoster{}
	srv := httptest.NewServer(NewHandler(pipeline.New(loader, rs, logger.Nop()), loader, rs, logger.Nop()).Routes())
	defer srv.Close()

	for _, path := range []string{"/goal-history?profileId=p-1", "/checklist?profileId=p-1"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		var body errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode, path)
		assert.NotEmpty(t, body.Error, path)
	}
}

func (s *HandlerSuite) TestMetrics() {
	s.get("/healthz", nil)
	resp, err := http.Get(s.srv.URL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(pipeline.ErrSuperseded))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	require.Equal(t, http.StatusBadRequest, statusFor(pipeline.ErrInvalidQuery))
}
