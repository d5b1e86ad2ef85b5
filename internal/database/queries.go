package database

import (
	"context"
	"database/sql"
	"strings"

	"photocat/internal/model"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every query can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds the SQL statements of the catalog.
type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries {
	return &queries{db: db}
}

func (q *queries) WithTx(tx *sql.Tx) *queries {
	return &queries{db: tx}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// Directories

const directoryColumns = "id, parent_id, name, created_at"

func scanDirectory(r rowScanner) (*model.Directory, error) {
	var d model.Directory
	if err := r.Scan(&d.ID, &d.ParentID, &d.Name, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

func collectDirectories(rows *sql.Rows, err error) ([]*model.Directory, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Directory
	for rows.Next() {
		d, err := scanDirectory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *queries) GetDirectoryByID(ctx context.Context, id string) (*model.Directory, error) {
	return scanDirectory(q.db.QueryRowContext(ctx,
		"SELECT "+directoryColumns+" FROM directories WHERE id = ?", id))
}

func (q *queries) GetRootDirectoryByName(ctx context.Context, name string) (*model.Directory, error) {
	return scanDirectory(q.db.QueryRowContext(ctx,
		"SELECT "+directoryColumns+" FROM directories WHERE parent_id IS NULL AND name = ?", name))
}

func (q *queries) GetRootDirectories(ctx context.Context) ([]*model.Directory, error) {
	return collectDirectories(q.db.QueryContext(ctx,
		"SELECT "+directoryColumns+" FROM directories WHERE parent_id IS NULL ORDER BY name"))
}

func (q *queries) GetChildDirectories(ctx context.Context, parentID string) ([]*model.Directory, error) {
	return collectDirectories(q.db.QueryContext(ctx,
		"SELECT "+directoryColumns+" FROM directories WHERE parent_id = ? ORDER BY name", parentID))
}

func (q *queries) InsertDirectory(ctx context.Context, d *model.Directory) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO directories (id, parent_id, name, created_at) VALUES (?, ?, ?, ?)",
		d.ID, d.ParentID, d.Name, d.CreatedAt.UTC())
	return err
}

func (q *queries) DeleteDirectoryByID(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM directories WHERE id = ?", id)
	return err
}

func (q *queries) DeleteChildDirectories(ctx context.Context, parentID string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM directories WHERE parent_id = ?", parentID)
	return err
}

// Images

const imageColumns = "id, directory_id, filename, author_id, camera_id, date_time_utc, tz_offset, " +
	"gps_longitude, gps_latitude, gps_altitude, rating, pick_label, color_label, " +
	"original_filename, thumbnail_ref, created_at"

func scanImage(r rowScanner) (*model.Image, error) {
	var i model.Image
	err := r.Scan(
		&i.ID, &i.DirectoryID, &i.Filename, &i.AuthorID, &i.CameraID, &i.DateTimeUTC, &i.TZOffset,
		&i.GPSLongitude, &i.GPSLatitude, &i.GPSAltitude, &i.Rating, &i.PickLabel, &i.ColorLabel,
		&i.OriginalFilename, &i.ThumbnailRef, &i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func collectImages(rows *sql.Rows, err error) ([]*model.Image, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Image
	for rows.Next() {
		i, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func utcTime(t sql.NullTime) sql.NullTime {
	if t.Valid {
		t.Time = t.Time.UTC()
	}
	return t
}

func (q *queries) GetImageByID(ctx context.Context, id string) (*model.Image, error) {
	return scanImage(q.db.QueryRowContext(ctx, "SELECT "+imageColumns+" FROM images WHERE id = ?", id))
}

func (q *queries) GetImageByName(ctx context.Context, directoryID, filename string) (*model.Image, error) {
	return scanImage(q.db.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE directory_id = ? AND filename = ?", directoryID, filename))
}

func (q *queries) GetImagesByDirectory(ctx context.Context, directoryID string) ([]*model.Image, error) {
	return collectImages(q.db.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE directory_id = ? ORDER BY filename", directoryID))
}

func (q *queries) GetImagesByIDs(ctx context.Context, ids []string) ([]*model.Image, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return collectImages(q.db.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE id IN ("+placeholders+") ORDER BY directory_id, filename", args...))
}

func (q *queries) InsertImage(ctx context.Context, i *model.Image) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO images ("+imageColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		i.ID, i.DirectoryID, i.Filename, i.AuthorID, i.CameraID, utcTime(i.DateTimeUTC), i.TZOffset,
		i.GPSLongitude, i.GPSLatitude, i.GPSAltitude, i.Rating, i.PickLabel, i.ColorLabel,
		i.OriginalFilename, i.ThumbnailRef, i.CreatedAt.UTC(),
	)
	return err
}

// UpdateImage writes every mutable column in one statement.
func (q *queries) UpdateImage(ctx context.Context, i *model.Image) error {
	_, err := q.db.ExecContext(ctx, `UPDATE images SET
		directory_id = ?, filename = ?, author_id = ?, camera_id = ?, date_time_utc = ?, tz_offset = ?,
		gps_longitude = ?, gps_latitude = ?, gps_altitude = ?, rating = ?, pick_label = ?,
		color_label = ?, original_filename = ?, thumbnail_ref = ?
		WHERE id = ?`,
		i.DirectoryID, i.Filename, i.AuthorID, i.CameraID, utcTime(i.DateTimeUTC), i.TZOffset,
		i.GPSLongitude, i.GPSLatitude, i.GPSAltitude, i.Rating, i.PickLabel,
		i.ColorLabel, i.OriginalFilename, i.ThumbnailRef, i.ID,
	)
	return err
}

func (q *queries) UpdateImageThumbnail(ctx context.Context, id, ref string) error {
	_, err := q.db.ExecContext(ctx, "UPDATE images SET thumbnail_ref = ? WHERE id = ?", ref, id)
	return err
}

func (q *queries) DeleteImageByID(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM images WHERE id = ?", id)
	return err
}

func (q *queries) DeleteImagesByDirectory(ctx context.Context, directoryID string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM images WHERE directory_id = ?", directoryID)
	return err
}

// Image tags

func (q *queries) GetImageTagIDs(ctx context.Context, imageID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT tag_id FROM image_tags WHERE image_id = ? ORDER BY tag_id", imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (q *queries) InsertImageTag(ctx context.Context, imageID, tagID string) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO image_tags (image_id, tag_id) VALUES (?, ?)", imageID, tagID)
	return err
}

func (q *queries) DeleteImageTags(ctx context.Context, imageID string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM image_tags WHERE image_id = ?", imageID)
	return err
}

// Attachments

func scanAttachment(r rowScanner) (*model.Attachment, error) {
	var a model.Attachment
	if err := r.Scan(&a.ID, &a.ImageID, &a.Filename, &a.Kind); err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *queries) GetAttachmentsByImage(ctx context.Context, imageID string) ([]*model.Attachment, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, image_id, filename, kind FROM attachments WHERE image_id = ? ORDER BY filename", imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (q *queries) InsertAttachment(ctx context.Context, a *model.Attachment) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO attachments (id, image_id, filename, kind) VALUES (?, ?, ?, ?)",
		a.ID, a.ImageID, a.Filename, a.Kind)
	return err
}

func (q *queries) UpdateAttachment(ctx context.Context, a *model.Attachment) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE attachments SET image_id = ?, filename = ?, kind = ? WHERE id = ?",
		a.ImageID, a.Filename, a.Kind, a.ID)
	return err
}

func (q *queries) DeleteAttachmentByID(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM attachments WHERE id = ?", id)
	return err
}

// Tags

func scanTag(r rowScanner) (*model.Tag, error) {
	var t model.Tag
	if err := r.Scan(&t.ID, &t.ParentID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

func (q *queries) GetTagByID(ctx context.Context, id string) (*model.Tag, error) {
	return scanTag(q.db.QueryRowContext(ctx, "SELECT id, parent_id, name FROM tags WHERE id = ?", id))
}

func (q *queries) GetRootTag(ctx context.Context, name string) (*model.Tag, error) {
	return scanTag(q.db.QueryRowContext(ctx,
		"SELECT id, parent_id, name FROM tags WHERE parent_id IS NULL AND name = ?", name))
}

func (q *queries) GetChildTag(ctx context.Context, parentID, name string) (*model.Tag, error) {
	return scanTag(q.db.QueryRowContext(ctx,
		"SELECT id, parent_id, name FROM tags WHERE parent_id = ? AND name = ?", parentID, name))
}

func (q *queries) GetAllTags(ctx context.Context) ([]*model.Tag, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT id, parent_id, name FROM tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *queries) InsertTag(ctx context.Context, t *model.Tag) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO tags (id, parent_id, name) VALUES (?, ?, ?)", t.ID, t.ParentID, t.Name)
	return err
}

// Authors

func (q *queries) GetAuthorByID(ctx context.Context, id string) (*model.Author, error) {
	var a model.Author
	err := q.db.QueryRowContext(ctx, "SELECT id, name FROM authors WHERE id = ?", id).Scan(&a.ID, &a.Name)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *queries) GetAuthorByName(ctx context.Context, name string) (*model.Author, error) {
	var a model.Author
	err := q.db.QueryRowContext(ctx, "SELECT id, name FROM authors WHERE name = ?", name).Scan(&a.ID, &a.Name)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (q *queries) GetAuthors(ctx context.Context) ([]*model.Author, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT id, name FROM authors ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Author
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (q *queries) InsertAuthor(ctx context.Context, a *model.Author) error {
	_, err := q.db.ExecContext(ctx, "INSERT INTO authors (id, name) VALUES (?, ?)", a.ID, a.Name)
	return err
}

// Cameras

const cameraColumns = "id, make, model, serial, key, file_number_start, file_number_end, position"

func scanCamera(r rowScanner) (*model.Camera, error) {
	var c model.Camera
	err := r.Scan(&c.ID, &c.Make, &c.Model, &c.Serial, &c.Key, &c.FileNumberStart, &c.FileNumberEnd, &c.Position)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (q *queries) GetCameraByID(ctx context.Context, id string) (*model.Camera, error) {
	return scanCamera(q.db.QueryRowContext(ctx, "SELECT "+cameraColumns+" FROM cameras WHERE id = ?", id))
}

func (q *queries) GetCameraByKey(ctx context.Context, key string) (*model.Camera, error) {
	return scanCamera(q.db.QueryRowContext(ctx, "SELECT "+cameraColumns+" FROM cameras WHERE key = ?", key))
}

func (q *queries) GetCameras(ctx context.Context) ([]*model.Camera, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+cameraColumns+" FROM cameras ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Camera
	for rows.Next() {
		c, err := scanCamera(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *queries) InsertCamera(ctx context.Context, c *model.Camera) error {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO cameras ("+cameraColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, "+
			"(SELECT COALESCE(MAX(position), 0) + 1 FROM cameras))",
		c.ID, c.Make, c.Model, c.Serial, c.Key, c.FileNumberStart, c.FileNumberEnd)
	return err
}

// Operations

func scanOperation(r rowScanner) (*model.Operation, error) {
	var o model.Operation
	if err := r.Scan(&o.ID, &o.StartedAt, &o.FinishedAt, &o.Operation, &o.Parameters, &o.Status); err != nil {
		return nil, err
	}
	return &o, nil
}

func (q *queries) InsertOperation(ctx context.Context, o *model.Operation) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		"INSERT INTO operations (started_at, operation, parameters, status) VALUES (?, ?, ?, ?)",
		o.StartedAt.UTC(), o.Operation, o.Parameters, o.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) GetOperationByID(ctx context.Context, id int64) (*model.Operation, error) {
	return scanOperation(q.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, operation, parameters, status FROM operations WHERE id = ?", id))
}

func (q *queries) UpdateOperationFinished(ctx context.Context, id int64, finishedAt sql.NullTime, status string) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE operations SET finished_at = ?, status = ? WHERE id = ?", utcTime(finishedAt), status, id)
	return err
}

func (q *queries) GetOperations(ctx context.Context, limit int64) ([]*model.Operation, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, operation, parameters, status FROM operations ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Operation
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (q *queries) GetMaxOperationID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM operations").Scan(&id)
	return id, err
}
