package library

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const recordColumns = `id, title, creator, year, genre, rating, description, file_path, thumbnail_path,
	total_pages, narrator, duration_seconds, quality, translation, size_bytes, source, source_url, added_at, updated_at`

// mapSQLiteError converts SQLite errors to custom error types.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	// modernc.org/sqlite wraps errors; check error message for constraint violations
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed") {
		return ErrDuplicate
	}
	if strings.Contains(errStr, "CHECK constraint failed") ||
		strings.Contains(errStr, "NOT NULL constraint failed") {
		return ErrConstraint
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner, category Category) (*MediaRecord, error) {
	r := &MediaRecord{Category: category}
	var year sql.NullInt64
	var filePath, thumbPath sql.NullString
	err := row.Scan(&r.ID, &r.Title, &r.Creator, &year, &r.Genre, &r.Rating, &r.Description, &filePath, &thumbPath,
		&r.TotalPages, &r.Narrator, &r.DurationSeconds, &r.Quality, &r.Translation, &r.SizeBytes,
		&r.Source, &r.SourceURL, &r.AddedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		r.Year = &y
	}
	if filePath.Valid {
		r.FilePath = &filePath.String
	}
	if thumbPath.Valid {
		r.ThumbnailPath = &thumbPath.String
	}
	return r, nil
}

func addRecord(q querier, category Category, r *MediaRecord) error {
	now := time.Now()
	r.Title = NormalizeTitle(r.Title)
	r.Creator = NormalizeTitle(r.Creator)
	if r.Source == "" {
		r.Source = SourceAutoDiscovery
	}
	result, err := q.Exec(`
		INSERT INTO `+string(category)+` (title, creator, year, genre, rating, description, file_path, thumbnail_path,
			total_pages, narrator, duration_seconds, quality, translation, size_bytes, source, source_url, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Title, r.Creator, r.Year, r.Genre, r.Rating, r.Description, r.FilePath, r.ThumbnailPath,
		r.TotalPages, r.Narrator, r.DurationSeconds, r.Quality, r.Translation, r.SizeBytes, r.Source, r.SourceURL, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert %s record: %w", category, mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	r.Category = category
	r.AddedAt = now
	r.UpdatedAt = now
	return nil
}

// Add inserts a new record. Sets ID, AddedAt, and UpdatedAt on the struct.
// Returns ErrDuplicate if the title and creator are already present.
func (s *Store) Add(r *MediaRecord) error { return addRecord(s.db, s.category, r) }

// Add inserts a new record within a transaction.
func (t *Tx) Add(r *MediaRecord) error { return addRecord(t.tx, t.category, r) }

func getRecord(q querier, category Category, id int64) (*MediaRecord, error) {
	row := q.QueryRow(`SELECT `+recordColumns+` FROM `+string(category)+` WHERE id = ?`, id)
	r, err := scanRecord(row, category)
	if err != nil {
		return nil, fmt.Errorf("get %s record %d: %w", category, id, mapSQLiteError(err))
	}
	return r, nil
}

// Get retrieves a record by ID.
// Returns ErrNotFound if the record does not exist.
func (s *Store) Get(id int64) (*MediaRecord, error) { return getRecord(s.db, s.category, id) }

// Get retrieves a record by ID within a transaction.
func (t *Tx) Get(id int64) (*MediaRecord, error) { return getRecord(t.tx, t.category, id) }

func existsByTitleCreator(q querier, category Category, title, creator string) (bool, error) {
	var n int
	err := q.QueryRow(`SELECT COUNT(*) FROM `+string(category)+` WHERE title = ? AND creator = ?`,
		NormalizeTitle(title), NormalizeTitle(creator),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check duplicate %s record: %w", category, err)
	}
	return n > 0, nil
}

// ExistsByTitleCreator reports whether a record with the same title and creator exists.
func (s *Store) ExistsByTitleCreator(title, creator string) (bool, error) {
	return existsByTitleCreator(s.db, s.category, title, creator)
}

// ExistsByTitleCreator checks for a duplicate within a transaction.
func (t *Tx) ExistsByTitleCreator(title, creator string) (bool, error) {
	return existsByTitleCreator(t.tx, t.category, title, creator)
}

// AddIfAbsent runs the duplicate check and the insert in one transaction.
// Returns ErrDuplicate when the title and creator are already present.
func (s *Store) AddIfAbsent(r *MediaRecord) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := tx.ExistsByTitleCreator(r.Title, r.Creator)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("add %s record %q: %w", s.category, r.Title, ErrDuplicate)
	}
	if err := tx.Add(r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s record: %w", s.category, mapSQLiteError(err))
	}
	return nil
}

func updateRecord(q querier, category Category, r *MediaRecord) error {
	now := time.Now()
	result, err := q.Exec(`
		UPDATE `+string(category)+` SET title = ?, creator = ?, year = ?, genre = ?, rating = ?, description = ?,
			file_path = ?, thumbnail_path = ?, total_pages = ?, narrator = ?, duration_seconds = ?,
			quality = ?, translation = ?, size_bytes = ?, source_url = ?, updated_at = ?
		WHERE id = ?`,
		r.Title, r.Creator, r.Year, r.Genre, r.Rating, r.Description,
		r.FilePath, r.ThumbnailPath, r.TotalPages, r.Narrator, r.DurationSeconds,
		r.Quality, r.Translation, r.SizeBytes, r.SourceURL, now, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update %s record %d: %w", category, r.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update %s record %d: %w", category, r.ID, ErrNotFound)
	}
	r.UpdatedAt = now
	return nil
}

// Update writes all mutable fields of the record.
// Returns ErrNotFound if the record does not exist.
func (s *Store) Update(r *MediaRecord) error { return updateRecord(s.db, s.category, r) }

// Update writes all mutable fields of the record within a transaction.
func (t *Tx) Update(r *MediaRecord) error { return updateRecord(t.tx, t.category, r) }

func deleteRecord(q querier, category Category, id int64) error {
	_, err := q.Exec(`DELETE FROM `+string(category)+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s record %d: %w", category, id, err)
	}
	return nil
}

// Delete removes a record by ID.
// This operation is idempotent - no error is returned if the record does not exist.
func (s *Store) Delete(id int64) error { return deleteRecord(s.db, s.category, id) }

// Delete removes a record by ID within a transaction.
func (t *Tx) Delete(id int64) error { return deleteRecord(t.tx, t.category, id) }

func listRecords(q querier, category Category, f RecordFilter) ([]*MediaRecord, int, error) {
	var conditions []string
	var args []any

	if f.Title != nil {
		conditions = append(conditions, "title = ?")
		args = append(args, NormalizeTitle(*f.Title))
	}
	if f.Creator != nil {
		conditions = append(conditions, "creator = ?")
		args = append(args, NormalizeTitle(*f.Creator))
	}
	if f.Genre != nil {
		conditions = append(conditions, "genre = ?")
		args = append(args, *f.Genre)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM "+string(category)+" "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s records: %w", category, err)
	}

	query := "SELECT " + recordColumns + " FROM " + string(category) + " " + whereClause + " ORDER BY id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s records: %w", category, err)
	}
	defer func() { _ = rows.Close() }()

	var results []*MediaRecord
	for rows.Next() {
		r, err := scanRecord(rows, category)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s record: %w", category, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s records: %w", category, err)
	}
	return results, total, nil
}

// List returns records matching the filter, newest first, and the total match count.
func (s *Store) List(f RecordFilter) ([]*MediaRecord, int, error) {
	return listRecords(s.db, s.category, f)
}

// List returns records matching the filter within a transaction.
func (t *Tx) List(f RecordFilter) ([]*MediaRecord, int, error) {
	return listRecords(t.tx, t.category, f)
}

// Count returns the number of records in the category.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + string(s.category)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s records: %w", s.category, err)
	}
	return n, nil
}
