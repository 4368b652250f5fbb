package parser

// workflowSchema is the JSON Schema every workflow document must satisfy
// before the tree walk runs. Structural checks only; id uniqueness and
// function-tag membership are enforced by the walk, where better error
// locations are available.
const workflowSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "tasks"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "tasks": {
      "type": "array",
      "items": {"$ref": "#/definitions/task"}
    }
  },
  "definitions": {
    "task": {
      "type": "object",
      "required": ["id", "function"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "function": {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "input": {"type": "object"}
          }
        },
        "next_tasks": {
          "type": "array",
          "items": {"$ref": "#/definitions/task"}
        }
      }
    }
  }
}`
