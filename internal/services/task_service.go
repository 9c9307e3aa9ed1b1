package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"taskdesk/internal/authz"
	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
)

// NewTask carries the fields of a task being created. A zero Status means ToDo.
type NewTask struct {
	OwnerEmail  string
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    bool
}

// TaskBoard manages tasks scoped by owner. Mutations take an optional
// actor; nil skips the ownership check and is meant for trusted callers.
type TaskBoard interface {
	AddTask(ctx context.Context, in NewTask) (int64, Outcome, error)
	ListTasks(ctx context.Context, ownerEmail string) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	Board(ctx context.Context, ownerEmail string) (models.Board, error)

	GetPriority(ctx context.Context, id int64) (bool, error)
	SetPriority(ctx context.Context, id int64, value bool, actor *authz.Session) (Outcome, error)
	SetStatus(ctx context.Context, id int64, to models.TaskStatus, actor *authz.Session) (Outcome, error)
	MoveTask(ctx context.Context, id int64, dir Direction, actor *authz.Session) (Outcome, error)
	DeleteTask(ctx context.Context, id int64, actor *authz.Session) (Outcome, error)
	CheckOwnership(ctx context.Context, id int64, actorEmail string) (bool, error)
}

type taskBoard struct {
	store Store
}

func NewTaskBoard(store Store) TaskBoard {
	return &taskBoard{store: store}
}

func (b *taskBoard) AddTask(ctx context.Context, in NewTask) (int64, Outcome, error) {
	if strings.TrimSpace(in.Title) == "" {
		log.Printf("[task][create][deny] empty title owner=%q", in.OwnerEmail)
		return 0, refused(ReasonInvalidInput, "title is required"), nil
	}
	status := in.Status
	if status == "" {
		status = models.StatusToDo
	}
	if !status.Valid() {
		log.Printf("[task][create][deny] status=%q", in.Status)
		return 0, refused(ReasonInvalidInput, fmt.Sprintf("unknown status %q", in.Status)), nil
	}

	task := &models.Task{
		OwnerEmail:  in.OwnerEmail,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    in.Priority,
	}
	out := succeeded("task created")
	err := b.store.InTx(ctx, func(r repositories.Repos) error {
		exists, err := r.Accounts.Exists(ctx, in.OwnerEmail)
		if err != nil {
			return err
		}
		if !exists {
			out = refused(ReasonUnknownOwner, "owner account not found")
			return nil
		}
		return r.Tasks.Store(ctx, task)
	})
	if err != nil {
		log.Printf("[task][create][err] owner=%q: %v", in.OwnerEmail, err)
		return 0, Outcome{}, err
	}
	if !out.OK {
		log.Printf("[task][create][deny] unknown owner=%q", in.OwnerEmail)
		return 0, out, nil
	}
	log.Printf("[task][create][ok] id=%d owner=%q priority=%v", task.ID, task.OwnerEmail, task.Priority)
	return task.ID, out, nil
}

// ListTasks returns the owner's tasks, newest first.
func (b *taskBoard) ListTasks(ctx context.Context, ownerEmail string) ([]models.Task, error) {
	return b.store.Repos().Tasks.FindByOwner(ctx, ownerEmail)
}

// GetTask returns nil when no task has the id.
func (b *taskBoard) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	t, err := b.store.Repos().Tasks.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

// Board groups the owner's tasks into workflow columns. Within a column
// priority tasks come first, then newer before older.
func (b *taskBoard) Board(ctx context.Context, ownerEmail string) (models.Board, error) {
	tasks, err := b.ListTasks(ctx, ownerEmail)
	if err != nil {
		return models.Board{}, err
	}
	board := models.Board{OwnerEmail: ownerEmail}
	for _, st := range models.Workflow {
		col := models.Column{Status: st, Tasks: []models.Task{}}
		for _, t := range tasks {
			if t.Status == st {
				col.Tasks = append(col.Tasks, t)
			}
		}
		sort.SliceStable(col.Tasks, func(i, j int) bool {
			return col.Tasks[i].Priority && !col.Tasks[j].Priority
		})
		board.Columns = append(board.Columns, col)
	}
	return board, nil
}

// GetPriority reports false for unknown ids.
func (b *taskBoard) GetPriority(ctx context.Context, id int64) (bool, error) {
	t, err := b.GetTask(ctx, id)
	if err != nil || t == nil {
		return false, err
	}
	return t.Priority, nil
}

func (b *taskBoard) SetPriority(ctx context.Context, id int64, value bool, actor *authz.Session) (Outcome, error) {
	return b.mutate(ctx, "priority", id, actor, func(r repositories.Repos, t *models.Task) (Outcome, error) {
		changed, err := r.Tasks.UpdatePriority(ctx, id, value)
		if err != nil || !changed {
			return vanished("priority", id, err)
		}
		log.Printf("[task][priority][ok] id=%d value=%v", id, value)
		return succeeded("priority updated"), nil
	})
}

// SetStatus accepts any workflow status; adjacency is a front-end concern.
func (b *taskBoard) SetStatus(ctx context.Context, id int64, to models.TaskStatus, actor *authz.Session) (Outcome, error) {
	if !to.Valid() {
		log.Printf("[task][status][deny] id=%d unknown status=%q", id, to)
		return refused(ReasonInvalidInput, fmt.Sprintf("unknown status %q", to)), nil
	}
	return b.mutate(ctx, "status", id, actor, func(r repositories.Repos, t *models.Task) (Outcome, error) {
		changed, err := r.Tasks.UpdateStatus(ctx, id, to)
		if err != nil || !changed {
			return vanished("status", id, err)
		}
		log.Printf("[task][status][ok] id=%d from=%s to=%s", id, t.Status, to)
		return succeeded("status updated"), nil
	})
}

// MoveTask shifts the task one column forward or back.
func (b *taskBoard) MoveTask(ctx context.Context, id int64, dir Direction, actor *authz.Session) (Outcome, error) {
	return b.mutate(ctx, "move", id, actor, func(r repositories.Repos, t *models.Task) (Outcome, error) {
		to, ok := Step(t.Status, dir)
		if !ok {
			log.Printf("[task][move][deny] id=%d from=%s dir=%d", id, t.Status, dir)
			return refused(ReasonInvalidInput, fmt.Sprintf("no column beyond %s", t.Status)), nil
		}
		changed, err := r.Tasks.UpdateStatus(ctx, id, to)
		if err != nil || !changed {
			return vanished("move", id, err)
		}
		log.Printf("[task][move][ok] id=%d from=%s to=%s", id, t.Status, to)
		return succeeded("status updated"), nil
	})
}

func (b *taskBoard) DeleteTask(ctx context.Context, id int64, actor *authz.Session) (Outcome, error) {
	return b.mutate(ctx, "delete", id, actor, func(r repositories.Repos, t *models.Task) (Outcome, error) {
		deleted, err := r.Tasks.Delete(ctx, id)
		if err != nil || !deleted {
			return vanished("delete", id, err)
		}
		log.Printf("[task][delete][ok] id=%d owner=%q", id, t.OwnerEmail)
		return succeeded("task deleted"), nil
	})
}

// CheckOwnership reports whether the task exists and belongs to actorEmail.
// Administrators do not own other accounts' tasks; use authz.Permit for that.
func (b *taskBoard) CheckOwnership(ctx context.Context, id int64, actorEmail string) (bool, error) {
	t, err := b.GetTask(ctx, id)
	if err != nil || t == nil {
		return false, err
	}
	return t.OwnerEmail == actorEmail, nil
}

// vanished reports a write that touched no row: another instance removed
// the task after it was loaded.
func vanished(op string, id int64, err error) (Outcome, error) {
	if err != nil {
		return Outcome{}, err
	}
	log.Printf("[task][%s][404] id=%d gone before write", op, id)
	return outcomeNotFound, nil
}

// mutate loads the task, applies the ownership rule and runs apply, all in
// one transaction.
func (b *taskBoard) mutate(
	ctx context.Context,
	op string,
	id int64,
	actor *authz.Session,
	apply func(r repositories.Repos, t *models.Task) (Outcome, error),
) (Outcome, error) {
	var out Outcome
	err := b.store.InTx(ctx, func(r repositories.Repos) error {
		t, err := r.Tasks.FindByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("[task][%s][404] id=%d", op, id)
			out = outcomeNotFound
			return nil
		}
		if err != nil {
			return err
		}
		if actor != nil && !authz.Permit(*actor, t.OwnerEmail) {
			log.Printf("[task][%s][deny] id=%d actor=%q owner=%q", op, id, actor.Email, t.OwnerEmail)
			out = outcomeNoPermission
			return nil
		}
		out, err = apply(r, t)
		return err
	})
	if err != nil {
		log.Printf("[task][%s][err] id=%d: %v", op, id, err)
		return Outcome{}, err
	}
	return out, nil
}
