package tasks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskwise/internal/store"
)

// SQLStore implements Store over a sqlite connection or transaction.
type SQLStore struct {
	db store.DBTX
}

// NewSQLStore creates a task store bound to db, which may be a *sql.DB for
// standalone operations or a *sql.Tx when the caller owns the transaction.
func NewSQLStore(db store.DBTX) *SQLStore {
	return &SQLStore{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, tags, is_recurring, recurrence_pattern, created_at, updated_at`

func (s *SQLStore) Create(ctx context.Context, t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID.String(), t.Title, t.Description, string(t.Status),
		string(t.Priority), t.DueDate, string(tags), t.IsRecurring,
		patternValue(t.RecurrencePattern), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id, owner uuid.UUID) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id.String(), owner.String(),
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *SQLStore) List(ctx context.Context, owner uuid.UUID, f Filter) ([]*Task, int, error) {
	where := []string{"user_id = ?"}
	args := []any{owner.String()}

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, string(f.Priority))
	}
	if f.Search != "" {
		where = append(where, "title LIKE ? COLLATE NOCASE")
		args = append(args, "%"+f.Search+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + cond +
		` ORDER BY ` + sortColumn(f.SortBy) + ` ` + sortDirection(f.SortOrder)

	page := f.Page
	if page < 1 {
		page = 1
	}
	if f.PageSize > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.PageSize, (page-1)*f.PageSize)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SQLStore) Update(ctx context.Context, id, owner uuid.UUID, p Patch) (*Task, error) {
	t, err := s.Get(ctx, id, owner)
	if err != nil || t == nil {
		return nil, err
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Tags != nil {
		t.Tags = p.Tags
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurrencePattern != nil {
		t.RecurrencePattern = p.RecurrencePattern
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.UpdatedAt = time.Now().UTC()

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
		 due_date = ?, tags = ?, is_recurring = ?, recurrence_pattern = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority),
		t.DueDate, string(tags), t.IsRecurring, patternValue(t.RecurrencePattern),
		t.UpdatedAt, id.String(), owner.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *SQLStore) Delete(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		id.String(), owner.String(),
	)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) Complete(ctx context.Context, id, owner uuid.UUID) (*Task, error) {
	status := StatusCompleted
	return s.Update(ctx, id, owner, Patch{Status: &status})
}

// FindByTitle returns the first task of owner whose title contains search,
// case-insensitively, in creation order. Returns (nil, nil) when nothing
// matches.
func (s *SQLStore) FindByTitle(ctx context.Context, owner uuid.UUID, search string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE user_id = ? AND title LIKE ? COLLATE NOCASE
		 ORDER BY created_at ASC LIMIT 1`,
		owner.String(), "%"+search+"%",
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task by title: %w", err)
	}
	return t, nil
}

// CompletedRecurring returns completed tasks with a recurrence pattern,
// across all users. Used by the recurrence roller; not part of Store.
func (s *SQLStore) CompletedRecurring(ctx context.Context) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE status = ? AND is_recurring = 1 AND recurrence_pattern IS NOT NULL`,
		string(StatusCompleted),
	)
	if err != nil {
		return nil, fmt.Errorf("completed recurring tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var (
		t       Task
		id      string
		userID  string
		status  string
		prio    string
		due     sql.NullTime
		tags    string
		pattern sql.NullString
	)
	err := row.Scan(&id, &userID, &t.Title, &t.Description, &status, &prio,
		&due, &tags, &t.IsRecurring, &pattern, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	t.UserID, err = uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse task owner: %w", err)
	}
	t.Status = Status(status)
	t.Priority = Priority(prio)
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if pattern.Valid {
		p := RecurrencePattern(pattern.String)
		t.RecurrencePattern = &p
	}
	return &t, nil
}

func patternValue(p *RecurrencePattern) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func sortColumn(s string) string {
	switch s {
	case "due_date", "priority", "title", "updated_at":
		return s
	default:
		return "created_at"
	}
}

func sortDirection(s string) string {
	if strings.EqualFold(s, "asc") {
		return "ASC"
	}
	return "DESC"
}

var _ Store = (*SQLStore)(nil)
