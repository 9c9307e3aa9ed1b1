// internal/models/task.go
package models

import "strings"

// TaskStatus is one of the three columns of the board.
type TaskStatus string

const (
	StatusToDo       TaskStatus = "ToDo"
	StatusInProgress TaskStatus = "InProgress"
	StatusDone       TaskStatus = "Done"
)

// Workflow lists the statuses in board order.
var Workflow = []TaskStatus{StatusToDo, StatusInProgress, StatusDone}

// persisted labels, kept for stores created by older versions of the app
var statusLabels = map[TaskStatus]string{
	StatusToDo:       "A Fazer",
	StatusInProgress: "Em Progresso",
	StatusDone:       "Concluído",
}

// Valid reports whether s is one of the workflow statuses.
func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the value written to the tarefas.status column.
func (s TaskStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return statusLabels[StatusToDo]
}

// ParseStatus accepts the enum name, the persisted label or the snake-case form.
func ParseStatus(v string) (TaskStatus, bool) {
	v = strings.TrimSpace(v)
	for st, label := range statusLabels {
		if v == string(st) || v == label {
			return st, true
		}
	}
	switch strings.ToLower(v) {
	case "todo", "to_do":
		return StatusToDo, true
	case "in_progress", "inprogress":
		return StatusInProgress, true
	case "done":
		return StatusDone, true
	}
	return "", false
}

// DecodeStatus maps a stored column value to a status. Rows written by
// other tools may carry anything; those read as ToDo and are left as is.
func DecodeStatus(stored string) TaskStatus {
	if st, ok := ParseStatus(stored); ok {
		return st
	}
	return StatusToDo
}

// Task is a card on a single account's board.
type Task struct {
	ID          int64      `json:"id"`
	OwnerEmail  string     `json:"owner_email"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    bool       `json:"priority"`
}

// Column is one status lane of a Board.
type Column struct {
	Status TaskStatus `json:"status"`
	Tasks  []Task     `json:"tasks"`
}

// Board groups an owner's tasks by status, in Workflow order.
type Board struct {
	OwnerEmail string   `json:"owner_email"`
	Columns    []Column `json:"columns"`
}

// Count returns the number of tasks over all columns.
func (b Board) Count() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}
