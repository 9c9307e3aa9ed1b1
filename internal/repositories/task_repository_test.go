package repositories

import (
	"context"
	"errors"
	"testing"

	"taskdesk/internal/authz"
	"taskdesk/internal/models"
)

func seedAccount(t *testing.T, s *Store, email string) {
	t.Helper()
	created, err := s.Repos().Accounts.Create(context.Background(), &models.Account{
		Name: email, Email: email, Password: "pw", Role: authz.RoleStandard,
	})
	if err != nil || !created {
		t.Fatalf("Create(%s): created=%v err=%v", email, created, err)
	}
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	s := migratedStore(t)
	r := s.Repos().Accounts

	first := &models.Account{Name: "Um", Email: "dup@x.com", Password: "a", Role: authz.RoleStandard}
	if ok, err := r.Create(ctx, first); err != nil || !ok || first.ID == 0 {
		t.Fatalf("Create: ok=%v id=%d err=%v", ok, first.ID, err)
	}
	second := &models.Account{Name: "Dois", Email: "dup@x.com", Password: "b", Role: authz.RoleStandard}
	ok, err := r.Create(ctx, second)
	if err != nil {
		t.Fatalf("Create duplicate: %v", err)
	}
	if ok {
		t.Fatalf("duplicate email accepted")
	}

	got, err := r.GetByEmail(ctx, "dup@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Name != "Um" || got.Password != "a" {
		t.Fatalf("original row overwritten: %+v", got)
	}

	if _, err := r.GetByEmail(ctx, "none@x.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepository_SetRole(t *testing.T) {
	ctx := context.Background()
	s := migratedStore(t)
	seedAccount(t, s, "boss@x.com")
	r := s.Repos().Accounts

	if err := r.SetRole(ctx, "boss@x.com", authz.RoleAdministrator); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	got, err := r.GetByEmail(ctx, "boss@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Role != authz.RoleAdministrator {
		t.Fatalf("expected administrator, got %s", got.Role)
	}
}

func TestTaskRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := migratedStore(t)
	seedAccount(t, s, "o@x.com")
	r := s.Repos().Tasks

	task := &models.Task{OwnerEmail: "o@x.com", Title: "T", Description: "D", Status: models.StatusToDo}
	if err := r.Store(ctx, task); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if task.ID == 0 {
		t.Fatalf("Store did not assign an id")
	}

	var stored string
	if err := s.DB.QueryRowContext(ctx, `SELECT status FROM tarefas WHERE id = $1`, task.ID).Scan(&stored); err != nil {
		t.Fatalf("raw status: %v", err)
	}
	if stored != "A Fazer" {
		t.Fatalf("expected persisted label, got %q", stored)
	}

	if ok, err := r.UpdateStatus(ctx, task.ID, models.StatusInProgress); err != nil || !ok {
		t.Fatalf("UpdateStatus: ok=%v err=%v", ok, err)
	}
	if ok, err := r.UpdatePriority(ctx, task.ID, true); err != nil || !ok {
		t.Fatalf("UpdatePriority: ok=%v err=%v", ok, err)
	}
	got, err := r.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.StatusInProgress || !got.Priority {
		t.Fatalf("updates not persisted: %+v", got)
	}

	if ok, _ := r.UpdateStatus(ctx, task.ID+1, models.StatusDone); ok {
		t.Fatalf("update of missing id reported a change")
	}
	if ok, err := r.Delete(ctx, task.ID); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if _, err := r.FindByID(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTaskRepository_UnknownStoredStatusReadsAsToDo(t *testing.T) {
	ctx := context.Background()
	s := migratedStore(t)
	seedAccount(t, s, "o@x.com")

	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO tarefas (usuario_email, titulo, status) VALUES ($1, $2, $3) RETURNING id`,
		"o@x.com", "estranha", "Arquivada").Scan(&id)
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	got, err := s.Repos().Tasks.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Status != models.StatusToDo {
		t.Fatalf("expected ToDo, got %s", got.Status)
	}
}

func TestTaskRepository_ForeignKeyEnforced(t *testing.T) {
	s := migratedStore(t)
	err := s.Repos().Tasks.Store(context.Background(), &models.Task{
		OwnerEmail: "ghost@x.com", Title: "orphan", Status: models.StatusToDo,
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected FK violation as storage fault, got %v", err)
	}
}

func TestTaskRepository_DeleteByOwner(t *testing.T) {
	ctx := context.Background()
	s := migratedStore(t)
	seedAccount(t, s, "a@x.com")
	seedAccount(t, s, "b@x.com")
	r := s.Repos().Tasks

	for _, owner := range []string{"a@x.com", "a@x.com", "b@x.com"} {
		if err := r.Store(ctx, &models.Task{OwnerEmail: owner, Title: "t", Status: models.StatusToDo}); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	n, err := r.DeleteByOwner(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("DeleteByOwner: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	rest, err := r.FindByOwner(ctx, "b@x.com")
	if err != nil {
		t.Fatalf("FindByOwner: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected b's task to remain, got %d", len(rest))
	}
	empty, err := r.FindByOwner(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("FindByOwner: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}
}
