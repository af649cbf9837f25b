package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/suPer8Hu/client-portal/internal/apperr"
)

type scriptedProvider struct {
	reply    string
	err      error
	lastMsgs []Message
	lastOpts Options
	calls    int
}

func (p *scriptedProvider) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	p.calls++
	p.lastMsgs = append([]Message(nil), messages...)
	p.lastOpts = opts
	return p.reply, p.err
}

func newTestInvoker(p Provider) *Invoker {
	reg := NewRegistry()
	reg.Register("fake", func(ctx context.Context, model string) (Provider, error) {
		return p, nil
	})
	return NewInvoker(reg, "fake", "default", nil)
}

func TestGenerateTextPrependsSystem(t *testing.T) {
	prov := &scriptedProvider{reply: "hello"}
	inv := newTestInvoker(prov)

	out, err := inv.GenerateText(context.Background(), TextRequest{
		System:      "be nice",
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "hello" {
		t.Fatalf("out = %q", out)
	}
	if len(prov.lastMsgs) != 2 || prov.lastMsgs[0].Role != RoleSystem || prov.lastMsgs[1].Content != "hi" {
		t.Fatalf("unexpected messages: %+v", prov.lastMsgs)
	}
	if prov.lastOpts.Temperature != 0.7 || prov.lastOpts.MaxTokens != 4000 || prov.lastOpts.JSON {
		t.Fatalf("unexpected options: %+v", prov.lastOpts)
	}
}

func TestGenerateTextWrapsProviderErrors(t *testing.T) {
	inv := newTestInvoker(&scriptedProvider{err: errors.New("upstream 502: internal prompt leaked")})
	_, err := inv.GenerateText(context.Background(), TextRequest{})
	if !errors.Is(err, apperr.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if msg := apperr.PublicMessage(err, "Failed"); msg != "Failed" {
		t.Fatalf("provider detail leaked: %q", msg)
	}
}

func TestUnknownProviderIsGenerationFailure(t *testing.T) {
	inv := NewInvoker(NewRegistry(), "missing", "", nil)
	_, err := inv.GenerateText(context.Background(), TextRequest{})
	if !errors.Is(err, apperr.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestGenerateStructured(t *testing.T) {
	prov := &scriptedProvider{reply: "```json\n{\"score\": 7, \"status\": \"pass\"}\n```"}
	inv := newTestInvoker(prov)

	var out struct {
		Score  int    `json:"score"`
		Status string `json:"status"`
	}
	err := inv.GenerateStructured(context.Background(), StructuredRequest{
		System:     "review",
		User:       "check this",
		SchemaHint: `{"score": number}`,
	}, &out)
	if err != nil {
		t.Fatalf("structured: %v", err)
	}
	if out.Score != 7 || out.Status != "pass" {
		t.Fatalf("unexpected decode: %+v", out)
	}
	if !prov.lastOpts.JSON {
		t.Fatalf("expected JSON mode")
	}
}

func TestGenerateStructuredDecodeError(t *testing.T) {
	inv := newTestInvoker(&scriptedProvider{reply: "not json at all"})
	var out map[string]any
	err := inv.GenerateStructured(context.Background(), StructuredRequest{User: "x"}, &out)

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if de.Raw != "not json at all" {
		t.Fatalf("raw = %q", de.Raw)
	}
	if !errors.Is(err, apperr.ErrGenerationFailed) {
		t.Fatalf("decode errors must match ErrGenerationFailed")
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1,2]\n```":         `[1,2]`,
		"  ```{\"a\":1}```  ":     `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Errorf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistryReusesBuiltProviders(t *testing.T) {
	reg := NewRegistry()
	builds := 0
	reg.Register("Fake ", func(ctx context.Context, model string) (Provider, error) {
		builds++
		if model == "broken" {
			return nil, errors.New("no key")
		}
		return &scriptedProvider{reply: model}, nil
	})
	if !reg.Has("fake") || reg.Has("other") {
		t.Fatalf("Has: %v", reg.Names())
	}

	a, _ := reg.Get(context.Background(), "FAKE", "m1")
	b, _ := reg.Get(context.Background(), "fake", "m1")
	if a != b || builds != 1 {
		t.Fatalf("provider rebuilt: builds=%d", builds)
	}
	if c, _ := reg.Get(context.Background(), "fake", "m2"); c == a {
		t.Fatalf("models share a provider")
	}
	for i := 0; i < 2; i++ {
		if _, err := reg.Get(context.Background(), "fake", "broken"); err == nil {
			t.Fatalf("expected factory error")
		}
	}
	if builds != 4 {
		t.Fatalf("builds = %d", builds)
	}
}
