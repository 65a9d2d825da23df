package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"aura/internal/prompt"
)

// Request is a design reverse-engineering request after defaults are applied.
type Request struct {
	InputType            prompt.InputType `json:"inputType"`
	FigmaURL             string           `json:"figmaUrl,omitempty"`
	DesignData           string           `json:"designData"`
	ImageData            string           `json:"imageData,omitempty"`
	ImageType            string           `json:"imageType,omitempty"`
	Files                []prompt.File    `json:"fileData,omitempty"`
	Level                Level            `json:"analysisLevel"`
	ExtractUserFlows     bool             `json:"extractUserFlows"`
	IncludeAccessibility bool             `json:"includeAccessibility"`
	UseRealLLM           bool             `json:"useRealLLM"`
}

// NewRequest returns a request with the documented defaults: user flows and
// accessibility on, real LLM off.
func NewRequest(inputType prompt.InputType, designData string, level Level) Request {
	return Request{
		InputType:            inputType,
		DesignData:           designData,
		Level:                level,
		ExtractUserFlows:     true,
		IncludeAccessibility: true,
	}
}

// FieldError describes one violated request field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// RequestShapeError lists every field that failed validation.
type RequestShapeError struct {
	Fields []FieldError
}

func (e *RequestShapeError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Path+": "+field.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *RequestShapeError) add(path, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (e *RequestShapeError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	sort.SliceStable(e.Fields, func(i, j int) bool { return e.Fields[i].Path < e.Fields[j].Path })
	return e
}

var validInputTypes = []prompt.InputType{prompt.InputFigma, prompt.InputImage, prompt.InputUpload}

// Validate checks the enum fields of a programmatically built request. File
// names may be empty, matching what DecodeRequest accepts.
func (r Request) Validate() error {
	shape := &RequestShapeError{}
	if !validInputType(r.InputType) {
		shape.add("inputType", "expected one of figma, image, upload; got %q", r.InputType)
	}
	if !r.Level.Valid() {
		shape.add("analysisLevel", "expected one of story, epic, feature, initiative, business-brief; got %q", r.Level)
	}
	return shape.errOrNil()
}

func validInputType(t prompt.InputType) bool {
	for _, candidate := range validInputTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// DecodeRequest parses a JSON request body, applies defaults, and reports
// every malformed field at once.
func DecodeRequest(body []byte) (Request, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Request{}, &RequestShapeError{Fields: []FieldError{{Path: "", Message: "body must be a JSON object: " + err.Error()}}}
	}

	shape := &RequestShapeError{}
	req := Request{ExtractUserFlows: true, IncludeAccessibility: true}

	var inputType string
	if decodeRequired(raw, "inputType", &inputType, shape) {
		req.InputType = prompt.InputType(inputType)
		if !validInputType(req.InputType) {
			shape.add("inputType", "expected one of figma, image, upload; got %q", inputType)
		}
	}
	var level string
	if decodeRequired(raw, "analysisLevel", &level, shape) {
		req.Level = Level(level)
		if !req.Level.Valid() {
			shape.add("analysisLevel", "expected one of story, epic, feature, initiative, business-brief; got %q", level)
		}
	}
	decodeRequired(raw, "designData", &req.DesignData, shape)
	decodeOptional(raw, "figmaUrl", &req.FigmaURL, shape)
	decodeOptional(raw, "imageData", &req.ImageData, shape)
	decodeOptional(raw, "imageType", &req.ImageType, shape)
	decodeOptional(raw, "extractUserFlows", &req.ExtractUserFlows, shape)
	decodeOptional(raw, "includeAccessibility", &req.IncludeAccessibility, shape)
	decodeOptional(raw, "useRealLLM", &req.UseRealLLM, shape)
	decodeFiles(raw, &req, shape)

	if err := shape.errOrNil(); err != nil {
		return Request{}, err
	}
	return req, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func decodeRequired(raw map[string]json.RawMessage, key string, target any, shape *RequestShapeError) bool {
	return decodeRequiredAt(raw, "", key, target, shape)
}

func decodeRequiredAt(raw map[string]json.RawMessage, prefix, key string, target any, shape *RequestShapeError) bool {
	value, ok := raw[key]
	if !ok || isNull(value) {
		shape.add(prefix+key, "required")
		return false
	}
	if err := json.Unmarshal(value, target); err != nil {
		shape.add(prefix+key, "expected %s", typeName(target))
		return false
	}
	return true
}

// decodeOptional leaves target at its default when key is absent or null.
func decodeOptional(raw map[string]json.RawMessage, key string, target any, shape *RequestShapeError) {
	value, ok := raw[key]
	if !ok || isNull(value) {
		return
	}
	if err := json.Unmarshal(value, target); err != nil {
		shape.add(key, "expected %s", typeName(target))
	}
}

func decodeFiles(raw map[string]json.RawMessage, req *Request, shape *RequestShapeError) {
	value, ok := raw["fileData"]
	if !ok || isNull(value) {
		return
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(value, &entries); err != nil {
		shape.add("fileData", "expected array of {filename, content}")
		return
	}
	files := make([]prompt.File, 0, len(entries))
	for i, entry := range entries {
		prefix := fmt.Sprintf("fileData.%d.", i)
		var file prompt.File
		okName := decodeRequiredAt(entry, prefix, "filename", &file.Filename, shape)
		okContent := decodeRequiredAt(entry, prefix, "content", &file.Content, shape)
		if okName && okContent {
			files = append(files, file)
		}
	}
	req.Files = files
}

func typeName(target any) string {
	switch target.(type) {
	case *string:
		return "string"
	case *bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", target)
	}
}
