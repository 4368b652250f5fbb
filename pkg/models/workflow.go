package models

// Workflow is the parsed, immutable definition of a run. Tasks is the root
// set; each root is an independent tree and roots execute concurrently.
type Workflow struct {
	ID    string  `json:"id"    validate:"required"`
	Name  string  `json:"name"  validate:"required"`
	Tasks []*Task `json:"tasks" validate:"required"`
}

// FindTask locates a task anywhere in the tree by id. Ids are globally
// unique, so the first match is the only match.
func (w *Workflow) FindTask(id string) *Task {
	var found *Task

	for _, root := range w.Tasks {
		root.Walk(func(t *Task) bool {
			if t.ID == id {
				found = t

				return false
			}

			return true
		})

		if found != nil {
			break
		}
	}

	return found
}

// TaskIDs returns every task id in the tree in declaration order.
func (w *Workflow) TaskIDs() []string {
	ids := make([]string, 0)

	for _, root := range w.Tasks {
		root.Walk(func(t *Task) bool {
			ids = append(ids, t.ID)

			return true
		})
	}

	return ids
}
