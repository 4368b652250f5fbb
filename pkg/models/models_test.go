package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree() *Workflow {
	return &Workflow{
		ID:   "wf-1",
		Name: "tree",
		Tasks: []*Task{
			{
				ID:       "root-a",
				Function: Function{Name: FunctionCLICommand},
				NextTasks: []*Task{
					{ID: "a-1", Function: Function{Name: FunctionCLICommand}},
					{
						ID:       "a-2",
						Function: Function{Name: FunctionUserInput},
						NextTasks: []*Task{
							{ID: "a-2-1", Function: Function{Name: FunctionCLICommand}},
						},
					},
				},
			},
			{ID: "root-b", Function: Function{Name: FunctionCLICommand}},
		},
	}
}

func TestWorkflowFindTask(t *testing.T) {
	wf := buildTree()

	found := wf.FindTask("a-2-1")
	require.NotNil(t, found)
	assert.Equal(t, "a-2-1", found.ID)

	assert.Nil(t, wf.FindTask("missing"))
}

func TestWorkflowTaskIDs(t *testing.T) {
	wf := buildTree()

	assert.Equal(t, []string{"root-a", "a-1", "a-2", "a-2-1", "root-b"}, wf.TaskIDs())
}

func TestTaskWalkStops(t *testing.T) {
	wf := buildTree()

	visited := make([]string, 0)
	wf.Tasks[0].Walk(func(task *Task) bool {
		visited = append(visited, task.ID)

		return task.ID != "a-1"
	})

	assert.Equal(t, []string{"root-a", "a-1"}, visited)
}

func TestFunctionHandlerName(t *testing.T) {
	tests := []struct {
		name     string
		function Function
		expected string
	}{
		{
			name:     "builtin cli_command",
			function: Function{Name: FunctionCLICommand},
			expected: "cli_command",
		},
		{
			name:     "builtin user_input",
			function: Function{Name: FunctionUserInput},
			expected: "user_input",
		},
		{
			name:     "custom resolves nested name",
			function: Function{Name: FunctionCustom, Input: map[string]any{"name": "log"}},
			expected: "log",
		},
		{
			name:     "custom without nested name",
			function: Function{Name: FunctionCustom, Input: map[string]any{}},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.function.HandlerName())
		})
	}
}

func TestFunctionIsKnown(t *testing.T) {
	assert.True(t, Function{Name: FunctionCLICommand}.IsKnown())
	assert.True(t, Function{Name: FunctionUserInput}.IsKnown())
	assert.True(t, Function{Name: FunctionCustom}.IsKnown())
	assert.False(t, Function{Name: "teleport"}.IsKnown())
}

func TestDecodeCLICommandInput(t *testing.T) {
	decoded, err := DecodeCLICommandInput(map[string]any{
		"command": "echo",
		"args":    []any{"hello", 42},
	})
	require.NoError(t, err)
	assert.Equal(t, "echo", decoded.Command)
	assert.Equal(t, []string{"hello", "42"}, decoded.Args)

	_, err = DecodeCLICommandInput(map[string]any{"args": []any{"x"}})
	require.Error(t, err)
}

func TestDecodeInputRequest(t *testing.T) {
	request := DecodeInputRequest(map[string]any{
		"prompt":   "Continue?",
		"required": true,
		"default":  "yes",
	})

	assert.Equal(t, "Continue?", request.Prompt)
	assert.Equal(t, "text", request.InputType)
	assert.True(t, request.Required)
	assert.Equal(t, "yes", request.Default)
}

func TestTaskStatusIsTerminal(t *testing.T) {
	assert.True(t, TaskStatusComplete.IsTerminal())
	assert.True(t, TaskStatusFailed.IsTerminal())
	assert.True(t, TaskStatusCancelled.IsTerminal())
	assert.False(t, TaskStatusPending.IsTerminal())
	assert.False(t, TaskStatusRunning.IsTerminal())
	assert.False(t, TaskStatusWaitingForInput.IsTerminal())
}
