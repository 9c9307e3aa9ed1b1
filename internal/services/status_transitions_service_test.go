package services

import (
	"reflect"
	"testing"

	"taskdesk/internal/models"
)

func TestMoves(t *testing.T) {
	cases := map[models.TaskStatus][]models.TaskStatus{
		models.StatusToDo:       {models.StatusInProgress},
		models.StatusInProgress: {models.StatusToDo, models.StatusDone},
		models.StatusDone:       {models.StatusInProgress},
	}
	for from, want := range cases {
		if got := Moves(from); !reflect.DeepEqual(got, want) {
			t.Fatalf("Moves(%s) = %v, want %v", from, got, want)
		}
	}
	if got := Moves("Archived"); len(got) != 0 {
		t.Fatalf("unknown status should have no moves, got %v", got)
	}
}

func TestStep(t *testing.T) {
	cases := []struct {
		from models.TaskStatus
		dir  Direction
		to   models.TaskStatus
		ok   bool
	}{
		{models.StatusToDo, Forward, models.StatusInProgress, true},
		{models.StatusToDo, Back, "", false},
		{models.StatusInProgress, Forward, models.StatusDone, true},
		{models.StatusInProgress, Back, models.StatusToDo, true},
		{models.StatusDone, Forward, "", false},
		{models.StatusDone, Back, models.StatusInProgress, true},
	}
	for _, c := range cases {
		to, ok := Step(c.from, c.dir)
		if to != c.to || ok != c.ok {
			t.Fatalf("Step(%s, %d) = %q,%v want %q,%v", c.from, c.dir, to, ok, c.to, c.ok)
		}
	}
}
