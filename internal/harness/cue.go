package harness

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// ScriptError is a script load error with source position, when known.
type ScriptError struct {
	Message string
	Pos     token.Pos
}

func (e *ScriptError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadCUEScript reads a script written in CUE. The file must define a
// top-level "script" struct with the same fields as the YAML form:
//
//	script: {
//	    name:        "append_two"
//	    description: "Appends two items"
//	    steps: [{op: "append", item: "a"}, {op: "append", item: "b"}]
//	    assertions: [{type: "final_items", items: ["a", "b"]}]
//	}
//
// CUE constraints and references may be used freely; the value must be
// concrete once evaluated.
func LoadCUEScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	scriptVal := value.LookupPath(cue.ParsePath("script"))
	if !scriptVal.Exists() {
		return nil, &ScriptError{Message: "missing top-level \"script\" field"}
	}
	if err := scriptVal.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var script Script
	if err := scriptVal.Decode(&script); err != nil {
		return nil, formatCUEError(err)
	}

	if err := validateScript(&script); err != nil {
		return nil, &ScriptError{
			Message: fmt.Sprintf("invalid script: %v", err),
			Pos:     scriptVal.Pos(),
		}
	}

	return &script, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ScriptError{Message: err.Error()}
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &ScriptError{Message: first.Error(), Pos: positions[0]}
	}
	return &ScriptError{Message: first.Error()}
}
