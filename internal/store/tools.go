package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/mhodnik/toolbin/internal/model"
	sqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// SearchThreshold is the minimum similarity score for a search hit. The
// comparison is strict: a score of exactly 50 does not match.
const SearchThreshold = 50

const toolColumns = `id, name, quantity, description, image, owner_id, created_at, updated_at`

// CreateTool validates and persists a new tool for the given owner. The tool
// gets a fresh ID and the owner is assigned server-side, never taken from the
// draft.
func CreateTool(ctx context.Context, db *sql.DB, ownerID uuid.UUID, draft model.ToolDraft) (*model.Tool, error) {
	tool := draft.ToModel()
	tool.ID = uuid.New()
	tool.OwnerID = ownerID

	if err := validateTool(tool); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tools (id, name, quantity, description, image, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tool.ID, tool.Name, tool.Quantity, tool.Description, tool.Image, tool.OwnerID,
	)
	if isUniqueViolation(err) {
		return nil, Exists("tool", tool.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("creating tool: %w", err)
	}

	created, err := getToolTx(ctx, tx, ownerID, tool.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing tool creation: %w", err)
	}
	return created, nil
}

// GetToolByID returns the owner's tool with the given ID. Tools owned by
// other users are reported as not found, so existence never leaks across
// owners.
func GetToolByID(ctx context.Context, db *sql.DB, ownerID, id uuid.UUID) (*model.Tool, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE owner_id = ? AND id = ?`,
		ownerID, id,
	)
	tool, err := scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("tool", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting tool: %w", err)
	}
	return tool, nil
}

// ListTools returns the owner's tools in insertion order, optionally
// restricted to an exact name match.
func ListTools(ctx context.Context, db *sql.DB, ownerID uuid.UUID, name string) ([]model.Tool, error) {
	var rows *sql.Rows
	var err error

	if name != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+toolColumns+` FROM tools
			 WHERE owner_id = ? AND name = ? ORDER BY created_at, id`,
			ownerID, name,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+toolColumns+` FROM tools
			 WHERE owner_id = ? ORDER BY created_at, id`,
			ownerID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	defer rows.Close()

	var tools []model.Tool
	for rows.Next() {
		tool, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tool: %w", err)
		}
		tools = append(tools, *tool)
	}
	return tools, rows.Err()
}

// SearchTools returns the owner's tools whose name scores strictly above
// SearchThreshold against the query, best match first. Equal scores are
// ordered by name, then ID, so results are deterministic. This is a full
// scan over the owner's tools; fine for a personal inventory.
func SearchTools(ctx context.Context, db *sql.DB, ownerID uuid.UUID, query string) ([]model.Tool, error) {
	tools, err := ListTools(ctx, db, ownerID, "")
	if err != nil {
		return nil, err
	}

	type match struct {
		score int
		tool  model.Tool
	}
	var matches []match
	for _, tool := range tools {
		if score := Similarity(query, tool.Name); score > SearchThreshold {
			matches = append(matches, match{score: score, tool: tool})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		if matches[i].tool.Name != matches[j].tool.Name {
			return matches[i].tool.Name < matches[j].tool.Name
		}
		return matches[i].tool.ID.String() < matches[j].tool.ID.String()
	})

	results := make([]model.Tool, 0, len(matches))
	for _, m := range matches {
		results = append(results, m.tool)
	}
	return results, nil
}

// UpdateTool re-validates and persists the tool. The ownership check happens
// before any database work; a tool belonging to someone else is simply not
// found.
func UpdateTool(ctx context.Context, db *sql.DB, ownerID uuid.UUID, tool *model.Tool) (*model.Tool, error) {
	if tool.OwnerID != ownerID {
		return nil, NotFound("tool", tool.ID)
	}
	if err := validateTool(tool); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE tools SET name = ?, quantity = ?, description = ?, image = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner_id = ?`,
		tool.Name, tool.Quantity, tool.Description, tool.Image, tool.ID, ownerID,
	)
	if isUniqueViolation(err) {
		return nil, Exists("tool", tool.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("updating tool: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return nil, NotFound("tool", tool.ID)
	}

	updated, err := getToolTx(ctx, tx, ownerID, tool.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing tool update: %w", err)
	}
	return updated, nil
}

// DeleteTool permanently removes the owner's tool. No soft delete.
func DeleteTool(ctx context.Context, db *sql.DB, ownerID, id uuid.UUID) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM tools WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting tool: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return NotFound("tool", id)
	}
	return nil
}

// SetToolPhoto stores processed photo bytes for the owner's tool and points
// the tool's image field at the serving path.
func SetToolPhoto(ctx context.Context, db *sql.DB, ownerID, id uuid.UUID, data []byte, mime, imagePath string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE tools SET photo = ?, photo_mime = ?, image = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND owner_id = ?`,
		data, mime, imagePath, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("setting tool photo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking photo update result: %w", err)
	}
	if affected == 0 {
		return NotFound("tool", id)
	}
	return nil
}

// GetToolPhoto returns the owner's tool photo bytes and MIME type. The data
// is nil when no photo has been uploaded.
func GetToolPhoto(ctx context.Context, db *sql.DB, ownerID, id uuid.UUID) ([]byte, string, error) {
	var data []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM tools WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&data, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", NotFound("tool", id)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting tool photo: %w", err)
	}
	return data, mime.String, nil
}

// Similarity scores how close two strings are on a 0-100 scale, case
// insensitive, based on Levenshtein distance over runes:
// round(100 * (1 - d/(len(a)+len(b)))). Two empty strings score 100.
func Similarity(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}

	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(total))))
}

// validateTool enforces the record constraints: non-empty name, non-negative
// quantity. The schema repeats both as CHECK constraints.
func validateTool(t *model.Tool) error {
	if strings.TrimSpace(t.Name) == "" {
		return Invalid("tool", "name must not be empty")
	}
	if t.Quantity < 0 {
		return Invalid("tool", "quantity must not be negative")
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTool(s rowScanner) (*model.Tool, error) {
	tool := &model.Tool{}
	err := s.Scan(&tool.ID, &tool.Name, &tool.Quantity, &tool.Description,
		&tool.Image, &tool.OwnerID, &tool.CreatedAt, &tool.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tool, nil
}

func getToolTx(ctx context.Context, tx *sql.Tx, ownerID, id uuid.UUID) (*model.Tool, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+toolColumns+` FROM tools WHERE owner_id = ? AND id = ?`,
		ownerID, id,
	)
	tool, err := scanTool(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("tool", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting tool: %w", err)
	}
	return tool, nil
}

// isUniqueViolation reports whether err is a SQLite unique or primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
