package services

import "taskdesk/internal/models"

// TaskTransitions lists the moves the board offers from each column.
// SetStatus itself accepts any workflow status; the table drives MoveTask
// and the actions a front end shows.
var TaskTransitions = map[models.TaskStatus]map[models.TaskStatus]bool{
	models.StatusToDo:       {models.StatusInProgress: true},
	models.StatusInProgress: {models.StatusToDo: true, models.StatusDone: true},
	models.StatusDone:       {models.StatusInProgress: true},
}

type Direction int

const (
	Forward Direction = 1
	Back    Direction = -1
)

func canTransition(from, to models.TaskStatus) bool {
	nexts, ok := TaskTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

// Moves returns the statuses reachable in one step, in board order.
func Moves(from models.TaskStatus) []models.TaskStatus {
	var out []models.TaskStatus
	for _, st := range models.Workflow {
		if canTransition(from, st) {
			out = append(out, st)
		}
	}
	return out
}

// Step returns the adjacent status in the given direction, if there is one.
func Step(from models.TaskStatus, dir Direction) (models.TaskStatus, bool) {
	for i, st := range models.Workflow {
		if st != from {
			continue
		}
		j := i + int(dir)
		if j < 0 || j >= len(models.Workflow) {
			return "", false
		}
		to := models.Workflow[j]
		return to, canTransition(from, to)
	}
	return "", false
}
