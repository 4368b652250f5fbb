package models

import "fmt"

// Function tag values accepted by the parser. The set is closed: anything
// else is rejected before execution starts. Concrete custom handlers are
// resolved at dispatch time, not parse time.
const (
	FunctionCLICommand = "cli_command"
	FunctionUserInput  = "user_input"
	FunctionCustom     = "custom"
)

// KnownFunctions lists the function tags the parser accepts.
var KnownFunctions = []string{FunctionCLICommand, FunctionUserInput, FunctionCustom}

// Function is the tagged union over a task's executable behavior. Input
// carries the variant-specific payload; for the custom variant it must
// contain a "name" entry naming the registered handler.
type Function struct {
	Name  string         `json:"name"            validate:"required"`
	Input map[string]any `json:"input,omitempty"`
}

// IsKnown reports whether the function tag is one of the closed variants.
func (f Function) IsKnown() bool {
	switch f.Name {
	case FunctionCLICommand, FunctionUserInput, FunctionCustom:
		return true
	}

	return false
}

// HandlerName resolves the registry key for this function. For the custom
// variant the key is the nested input name.
func (f Function) HandlerName() string {
	if f.Name == FunctionCustom {
		if name, ok := f.Input["name"].(string); ok {
			return name
		}

		return ""
	}

	return f.Name
}

// CLICommandInput is the typed view of a cli_command function's input.
type CLICommandInput struct {
	Command string   `json:"command" validate:"required"`
	Args    []string `json:"args"`
}

// InputRequest describes what a suspended user_input task is waiting for.
// It is surfaced to the caller as part of the waiting frontier.
type InputRequest struct {
	Prompt    string `json:"prompt"`
	InputType string `json:"input_type,omitempty"`
	Required  bool   `json:"required,omitempty"`
	Default   any    `json:"default,omitempty"`
}

// InputResponse is the caller-supplied answer that resumes a suspended
// task. A non-accepted response cancels the task and prunes its subtree.
type InputResponse struct {
	TaskID   string `json:"task_id"  validate:"required"`
	Accepted bool   `json:"accepted"`
	Response any    `json:"response,omitempty"`
}

// DecodeCLICommandInput extracts the typed cli_command payload from a raw
// function input map.
func DecodeCLICommandInput(input map[string]any) (CLICommandInput, error) {
	command, ok := input["command"].(string)
	if !ok || command == "" {
		return CLICommandInput{}, fmt.Errorf("cli_command input requires a 'command' string")
	}

	decoded := CLICommandInput{Command: command}

	if rawArgs, ok := input["args"].([]any); ok {
		decoded.Args = make([]string, 0, len(rawArgs))
		for _, arg := range rawArgs {
			decoded.Args = append(decoded.Args, fmt.Sprintf("%v", arg))
		}
	}

	return decoded, nil
}

// DecodeInputRequest extracts the typed user_input payload from a raw
// function input map.
func DecodeInputRequest(input map[string]any) InputRequest {
	request := InputRequest{InputType: "text"}

	if prompt, ok := input["prompt"].(string); ok {
		request.Prompt = prompt
	}

	if inputType, ok := input["input_type"].(string); ok && inputType != "" {
		request.InputType = inputType
	}

	if required, ok := input["required"].(bool); ok {
		request.Required = required
	}

	if def, ok := input["default"]; ok {
		request.Default = def
	}

	return request
}
