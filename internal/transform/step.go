package transform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/tabular/internal/model"
	"github.com/tidwall/gjson"
)

// Step is an atomic document change.
type Step interface {
	// Apply applies the step to doc.
	Apply(doc *model.Node) Result

	// GetMap returns the map describing how the step moves positions.
	GetMap() *StepMap

	// Invert returns the step that undoes this one. doc is the document
	// the step was applied to.
	Invert(doc *model.Node) (Step, error)

	// Map rebases the step through mapping. It returns nil when the
	// content the step targets no longer exists.
	Map(mapping Mappable) Step

	// StepType returns the registered JSON tag.
	StepType() string

	// MarshalJSON encodes the step, including its "stepType" tag.
	MarshalJSON() ([]byte, error)
}

// Result is the outcome of applying a step: a document or an error.
type Result struct {
	Doc *model.Node
	Err error
}

// OK returns a successful result.
func OK(doc *model.Node) Result {
	return Result{Doc: doc}
}

// Fail returns a failed result.
func Fail(err error) Result {
	return Result{Err: err}
}

// Failed reports whether the step could not be applied.
func (r Result) Failed() bool {
	return r.Err != nil
}

// FromReplace replaces [from, to) of doc with content and wraps the
// outcome in a Result.
func FromReplace(doc *model.Node, from, to int, content *model.Fragment) Result {
	out, err := doc.Replace(from, to, content)
	if err != nil {
		return Fail(err)
	}
	return OK(out)
}

// StepDecoder decodes a step's JSON form.
type StepDecoder func(schema *model.Schema, data gjson.Result) (Step, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]StepDecoder)
)

// RegisterStep registers the decoder for a step type tag.
// It panics if the tag is already registered.
func RegisterStep(stepType string, decode StepDecoder) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[stepType]; dup {
		panic(fmt.Sprintf("transform: duplicate step type %q", stepType))
	}
	registry[stepType] = decode
}

// RegisteredStepTypes returns the registered step type tags, sorted.
func RegisteredStepTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// StepFromJSON decodes a step, dispatching on its "stepType" field.
func StepFromJSON(schema *model.Schema, data []byte) (Step, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidStepJSON)
	}
	return StepFromResult(schema, gjson.ParseBytes(data))
}

// StepFromResult decodes a step from an already parsed JSON value.
func StepFromResult(schema *model.Schema, r gjson.Result) (Step, error) {
	tag := r.Get("stepType")
	if !tag.Exists() {
		return nil, fmt.Errorf("%w: missing stepType", ErrInvalidStepJSON)
	}

	registryMu.RLock()
	decode, ok := registry[tag.String()]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStepType, tag.String())
	}
	return decode(schema, r)
}

// IntsFromJSON reads a JSON array of integers.
func IntsFromJSON(r gjson.Result) ([]int, error) {
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrInvalidStepJSON, r.Type)
	}
	arr := r.Array()
	out := make([]int, len(arr))
	for i, v := range arr {
		if v.Type != gjson.Number {
			return nil, fmt.Errorf("%w: expected number at index %d", ErrInvalidStepJSON, i)
		}
		out[i] = int(v.Int())
	}
	return out, nil
}
