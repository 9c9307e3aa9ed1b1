package repositories

import (
	"context"
	"database/sql"
	"errors"

	"taskdesk/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindByOwner(ctx context.Context, ownerEmail string) ([]models.Task, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByOwner(ctx context.Context, ownerEmail string) (int64, error)

	UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (bool, error)
	UpdatePriority(ctx context.Context, id int64, priority bool) (bool, error)
}

type taskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, usuario_email, titulo, COALESCE(descricao, ''), status, COALESCE(prioridade, 0)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t        models.Task
		status   string
		priority int
	)
	if err := row.Scan(&t.ID, &t.OwnerEmail, &t.Title, &t.Description, &status, &priority); err != nil {
		return t, err
	}
	t.Status = models.DecodeStatus(status)
	t.Priority = priority != 0
	return t, nil
}

func priorityValue(p bool) int {
	if p {
		return 1
	}
	return 0
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	const q = `
		INSERT INTO tarefas (usuario_email, titulo, descricao, status, prioridade)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, q,
		task.OwnerEmail, task.Title, task.Description, task.Status.Label(), priorityValue(task.Priority),
	).Scan(&task.ID)
	if err != nil {
		return fault("store task", err)
	}
	return nil
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tarefas WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fault("find task", err)
	}
	return &t, nil
}

func (r *taskRepository) FindByOwner(ctx context.Context, ownerEmail string) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tarefas WHERE usuario_email = $1 ORDER BY id DESC`, ownerEmail)
	if err != nil {
		return nil, fault("list tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fault("list tasks", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("list tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	return r.execAffected(ctx, "delete task", `DELETE FROM tarefas WHERE id = $1`, id)
}

func (r *taskRepository) DeleteByOwner(ctx context.Context, ownerEmail string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tarefas WHERE usuario_email = $1`, ownerEmail)
	if err != nil {
		return 0, fault("delete owner tasks", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fault("delete owner tasks", err)
	}
	return n, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, to models.TaskStatus) (bool, error) {
	return r.execAffected(ctx, "update status", `UPDATE tarefas SET status = $1 WHERE id = $2`, to.Label(), id)
}

func (r *taskRepository) UpdatePriority(ctx context.Context, id int64, priority bool) (bool, error) {
	return r.execAffected(ctx, "update priority",
		`UPDATE tarefas SET prioridade = $1 WHERE id = $2`, priorityValue(priority), id)
}

func (r *taskRepository) execAffected(ctx context.Context, op, q string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fault(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fault(op, err)
	}
	return n > 0, nil
}
