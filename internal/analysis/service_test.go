package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"aura/internal/llmconfig"
	"aura/internal/logging"
	"aura/internal/prompt"
)

func newTestService(remote Remote) (*Service, *llmconfig.Resolver) {
	resolver := llmconfig.NewResolver(llmconfig.WithSource(llmconfig.StaticSource{}))
	pipeline := NewPipeline(remote, NewMockAnalyzer(0), logging.NewNop())
	return NewService(resolver, pipeline, logging.NewNop()), resolver
}

func TestReverseEngineerDesignEpicScenario(t *testing.T) {
	service, _ := newTestService(nil)
	req, err := DecodeRequest([]byte(`{"inputType":"image","designData":"...","analysisLevel":"epic","useRealLLM":false}`))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	result, err := service.ReverseEngineerDesign(context.Background(), req)
	if err != nil {
		t.Fatalf("ReverseEngineerDesign: %v", err)
	}
	data, _ := json.Marshal(result)
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var stories, epics []json.RawMessage
	_ = json.Unmarshal(raw["stories"], &stories)
	_ = json.Unmarshal(raw["epics"], &epics)
	if len(stories) != 2 || len(epics) != 1 {
		t.Fatalf("expected 2 stories and 1 epic, got %d and %d", len(stories), len(epics))
	}
	for _, key := range []string{"features", "initiatives", "businessBrief", "analysisMode"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("unexpected key %s in %s", key, data)
		}
	}
}

func TestReverseEngineerDesignUsesDesignSelection(t *testing.T) {
	remote := &stubRemote{data: json.RawMessage(`{"stories":[]}`)}
	service, resolver := newTestService(remote)
	resolver.SetAPIKey("sk-user")
	resolver.SetReverseEngineeringLLM(llmconfig.KindDesign, "openai", "gpt-4-turbo")

	req := NewRequest(prompt.InputFigma, "frame data", LevelStory)
	req.FigmaURL = "https://figma.com/file/xyz"
	req.ImageData = "aGVsbG8="
	req.ImageType = "image/png"
	req.UseRealLLM = true
	if _, err := service.ReverseEngineerDesign(context.Background(), req); err != nil {
		t.Fatalf("ReverseEngineerDesign: %v", err)
	}
	if remote.last.Provider != "openai" || remote.last.Model != "gpt-4-turbo" || remote.last.APIKey != "sk-user" {
		t.Fatalf("unexpected gateway credentials: %+v", remote.last)
	}
	if !remote.last.HasImage || remote.last.ImageType != "image/png" || remote.last.AnalysisLevel != "story" {
		t.Fatalf("unexpected envelope: %+v", remote.last)
	}
}

func TestReverseEngineerDesignRejectsBadShape(t *testing.T) {
	service, _ := newTestService(nil)
	_, err := service.ReverseEngineerDesign(context.Background(), Request{InputType: "sketch", Level: "saga"})
	shape, ok := AsRequestShapeError(err)
	if !ok {
		t.Fatalf("expected shape error, got %v", err)
	}
	if len(shape.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", shape.Fields)
	}
}

func TestDecodeRequestDefaults(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"inputType":"upload","designData":"","analysisLevel":"feature","fileData":[{"filename":"a.png","content":"eA=="}]}`))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if !req.ExtractUserFlows || !req.IncludeAccessibility || req.UseRealLLM {
		t.Fatalf("unexpected defaults: %+v", req)
	}
	if len(req.Files) != 1 || req.Files[0].Filename != "a.png" {
		t.Fatalf("unexpected files: %+v", req.Files)
	}

	req, err = DecodeRequest([]byte(`{"inputType":"image","designData":"x","analysisLevel":"story","extractUserFlows":false,"includeAccessibility":null}`))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if req.ExtractUserFlows || !req.IncludeAccessibility {
		t.Fatalf("expected explicit false and null default, got %+v", req)
	}
}

func TestEmptyFilenameDecodesAndValidates(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"inputType":"upload","designData":"","analysisLevel":"story","fileData":[{"filename":"","content":"eA=="}]}`))
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if len(req.Files) != 1 || req.Files[0].Filename != "" {
		t.Fatalf("unexpected files: %+v", req.Files)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate rejected a decoded request: %v", err)
	}
}

func TestDecodeRequestListsEveryViolation(t *testing.T) {
	body := `{"inputType":"sketch","analysisLevel":7,"useRealLLM":"yes","fileData":[{"filename":"a.png"}]}`
	_, err := DecodeRequest([]byte(body))
	var shape *RequestShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("expected RequestShapeError, got %v", err)
	}
	paths := make(map[string]bool)
	for _, field := range shape.Fields {
		paths[field.Path] = true
	}
	for _, want := range []string{"inputType", "analysisLevel", "designData", "useRealLLM", "fileData.0.content"} {
		if !paths[want] {
			t.Fatalf("missing violation for %s in %+v", want, shape.Fields)
		}
	}
	if len(shape.Fields) != 5 {
		t.Fatalf("expected exactly 5 violations, got %+v", shape.Fields)
	}
}

func TestDecodeRequestRejectsNonObject(t *testing.T) {
	if _, err := DecodeRequest([]byte(`[1,2]`)); err == nil {
		t.Fatal("expected error for array body")
	}
}
