package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/suPer8Hu/client-portal/internal/apperr"
	"github.com/suPer8Hu/client-portal/internal/profile"
	"github.com/suPer8Hu/client-portal/internal/prompts"
	"github.com/suPer8Hu/client-portal/internal/testutil"
)

type staticProfiles map[string]*profile.ClientProfile

func (s staticProfiles) GetByID(ctx context.Context, id string) (*profile.ClientProfile, error) {
	p, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("Client not found")
	}
	return p, nil
}

func newService(gen *testutil.Generator) *Service {
	return NewService(staticProfiles{
		"c-1": {
			ID:          "c-1",
			CompanyName: "Acme Fitness",
			Industry:    "Fitness",
			Competitors: profile.ListOf("Gym A", "Gym B"),
		},
	}, gen, nil)
}

func TestCatalogHasTemplatesForEveryAgent(t *testing.T) {
	cat := Catalog()
	if len(cat) != 9 {
		t.Fatalf("expected 9 agents, got %d", len(cat))
	}
	for _, d := range cat {
		if d.Name == "" || d.ResultKey == "" || d.MaxTokens == 0 {
			t.Fatalf("incomplete definition: %+v", d)
		}
		for _, part := range []string{".system", ".user"} {
			if !prompts.Has(d.Name + part) {
				t.Errorf("%s: missing %s template", d.Name, part)
			}
		}
	}
}

func TestRunAppliesDefaults(t *testing.T) {
	gen := &testutil.Generator{Replies: []string{"ads"}}
	res, err := newService(gen).Run(context.Background(), "c-1", "ad-creative", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Key != "adCreative" || res.Value != "ads" {
		t.Fatalf("unexpected result: %+v", res)
	}
	req := gen.Text[0]
	if req.Temperature != 0.8 || req.MaxTokens != 3500 {
		t.Fatalf("unexpected options: %+v", req)
	}
	user := req.Messages[0].Content
	for _, want := range []string{"Create 3 ad variations for Facebook.", "Objective: Conversions"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
	if !strings.Contains(req.System, "Acme Fitness") {
		t.Errorf("system prompt missing client context")
	}
}

func TestRunHonoursExplicitFalse(t *testing.T) {
	gen := &testutil.Generator{Replies: []string{"emails"}}
	svc := newService(gen)

	if _, err := svc.Run(context.Background(), "c-1", "email-sequence", []byte(`{}`)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := svc.Run(context.Background(), "c-1", "email-sequence", []byte(`{"includeSubjectVariations":false,"numberOfEmails":2}`)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(gen.Text[0].System, "A/B testing") {
		t.Errorf("subject variations should default on")
	}
	if strings.Contains(gen.Text[1].System, "A/B testing") {
		t.Errorf("explicit false was ignored")
	}
	if !strings.Contains(gen.Text[1].Messages[0].Content, "Create a 2-email") {
		t.Errorf("email count not applied: %s", gen.Text[1].Messages[0].Content)
	}
}

func TestCompetitorDefaultsToProfile(t *testing.T) {
	gen := &testutil.Generator{Replies: []string{"analysis"}}
	if _, err := newService(gen).Run(context.Background(), "c-1", "competitor-analyzer", []byte(`{"focusAreas":["pricing","seo"]}`)); err != nil {
		t.Fatalf("run: %v", err)
	}
	user := gen.Text[0].Messages[0].Content
	if !strings.Contains(user, "Analyze these competitors: Gym A, Gym B") || !strings.Contains(user, "Focus Areas: pricing, seo") {
		t.Fatalf("unexpected prompt:\n%s", user)
	}
}

func TestRunValidation(t *testing.T) {
	gen := &testutil.Generator{Replies: []string{"x"}}
	svc := newService(gen)
	ctx := context.Background()

	cases := []struct {
		agent string
		body  string
		want  error
	}{
		{"nope", `{}`, apperr.ErrNotFound},
		{"qa-compliance", `{}`, apperr.ErrInvalidArgument},
		{"persona-builder", `{"numberOfPersonas":50}`, apperr.ErrInvalidArgument},
		{"ad-creative", `{"numberOfVariations":"three"}`, apperr.ErrInvalidArgument},
	}
	for _, tc := range cases {
		if _, err := svc.Run(ctx, "c-1", tc.agent, []byte(tc.body)); !errors.Is(err, tc.want) {
			t.Errorf("%s %s: got %v, want %v", tc.agent, tc.body, err, tc.want)
		}
	}
	if _, err := svc.Run(ctx, "missing", "sop-drafter", nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing client: got %v", err)
	}
	if gen.Calls() != 0 {
		t.Fatalf("generator called %d times for rejected requests", gen.Calls())
	}
}

func TestQAReviewParsed(t *testing.T) {
	gen := &testutil.Generator{Replies: []string{"```json\n" + `{"overallScore":8,"status":"pass","summary":"Solid","criticalIssues":[{"issue":"claim"}],"recommendations":["shorten"],"edits":[{"type":"suggestion","issue":"tone"}]}` + "\n```"}}
	res, err := newService(gen).Run(context.Background(), "c-1", "qa-compliance", []byte(`{"contentToReview":"Buy now!"}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	review, ok := res.Value.(map[string]any)
	if !ok {
		t.Fatalf("unexpected value %T", res.Value)
	}
	if review["overallScore"] != float64(8) || review["status"] != "pass" || len(review["edits"].([]any)) != 1 {
		t.Fatalf("unexpected review: %+v", review)
	}
	issues := review["criticalIssues"].([]any)
	if len(issues) != 1 || issues[0].(map[string]any)["issue"] != "claim" {
		t.Fatalf("unexpected issues: %v", issues)
	}
	req := gen.Struct[0]
	if req.Temperature != 0.3 || !strings.Contains(req.System, "BRAND STANDARDS") || !strings.Contains(req.System, "Fitness industry") {
		t.Fatalf("unexpected review request: %+v", req)
	}
}

func TestQAReviewKeepsUnexpectedShapes(t *testing.T) {
	replies := []string{
		`{"overallScore":7,"status":"conditional_pass","compliance":{"legal":{"status":"pass","notes":"ok"},"brand":"warning"}}`,
		`{"overallScore":"8/10","status":"pass","summary":"Good"}`,
		`{"overallScore":6,"status":"fail","criticalIssues":"none"}`,
	}
	for _, reply := range replies {
		gen := &testutil.Generator{Replies: []string{reply}}
		res, err := newService(gen).Run(context.Background(), "c-1", "qa-compliance", []byte(`{"contentToReview":"Buy now!"}`))
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		review, ok := res.Value.(map[string]any)
		if !ok {
			t.Fatalf("%s: returned %T %+v", reply, res.Value, res.Value)
		}
		if review["status"] == "error" {
			t.Fatalf("%s: valid JSON was treated as unparseable", reply)
		}
	}

	gen := &testutil.Generator{Replies: []string{replies[0]}}
	res, _ := newService(gen).Run(context.Background(), "c-1", "qa-compliance", []byte(`{"contentToReview":"Buy now!"}`))
	legal := res.Value.(map[string]any)["compliance"].(map[string]any)["legal"].(map[string]any)
	if legal["status"] != "pass" || legal["notes"] != "ok" {
		t.Fatalf("nested compliance lost: %v", legal)
	}
}

func TestQAReviewDegradesOnBadJSON(t *testing.T) {
	gen := &testutil.Generator{Replies: []string{"I think it is fine"}}
	res, err := newService(gen).Run(context.Background(), "c-1", "qa-compliance", []byte(`{"contentToReview":"Buy now!"}`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	review := res.Value.(*QAReview)
	if review.Status != "error" || review.OverallScore != 0 || review.Summary != "Failed to parse QA review" || review.Error != "I think it is fine" {
		t.Fatalf("unexpected degraded review: %+v", review)
	}
}

func TestQAProviderFailureIsAnError(t *testing.T) {
	gen := &testutil.Generator{Err: apperr.GenerationFailed(errors.New("down"), "generation call failed")}
	_, err := newService(gen).Run(context.Background(), "c-1", "qa-compliance", []byte(`{"contentToReview":"x"}`))
	if !errors.Is(err, apperr.ErrGenerationFailed) {
		t.Fatalf("expected generation failure, got %v", err)
	}
}

func TestEmptyReplyUsesFallback(t *testing.T) {
	gen := &testutil.Generator{Replies: []string{""}}
	res, err := newService(gen).Run(context.Background(), "c-1", "sop-drafter", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Value != "Failed to generate SOP." {
		t.Fatalf("unexpected value %v", res.Value)
	}
}
