package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/dbsmedya/ytcomments/internal/collector"
	"github.com/dbsmedya/ytcomments/internal/types"
)

func recordRow(r types.Record) []string {
	return []string{
		r.VideoID,
		r.CommentID,
		r.ParentID,
		r.Author,
		strconv.FormatInt(r.LikeCount, 10),
		r.PublishedAt,
		r.UpdatedAt,
		r.Text,
	}
}

// RecordsTable lays rows out under types.Columns.
func RecordsTable(rows []types.Record) *Table {
	t := &Table{Header: slices.Clone(types.Columns), Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, recordRow(r))
	}
	return t
}

// Records converts a table with the comment columns back into records.
// Columns may appear in any order; like_count is coerced.
func (t *Table) Records() ([]types.Record, error) {
	idx := make(map[string]int, len(types.Columns))
	for _, col := range types.Columns {
		i := t.Index(col)
		if i < 0 {
			return nil, fmt.Errorf("missing column %q", col)
		}
		idx[col] = i
	}

	out := make([]types.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, types.Record{
			VideoID:     row[idx["video_id"]],
			CommentID:   row[idx["comment_id"]],
			ParentID:    row[idx["parent_id"]],
			Author:      row[idx["author"]],
			LikeCount:   types.ToLikeCount(row[idx["like_count"]]),
			PublishedAt: row[idx["published_at"]],
			UpdatedAt:   row[idx["updated_at"]],
			Text:        row[idx["text"]],
		})
	}
	return out, nil
}

// ReadRecords loads comment rows from a CSV file.
func ReadRecords(path string) ([]types.Record, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(t.Header) == 0 {
		return nil, nil
	}
	rows, err := t.Records()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// WriteRecords replaces path with rows.
func WriteRecords(path string, rows []types.Record) error {
	return WriteTable(path, RecordsTable(rows))
}

// Compact rewrites path keeping the first row for each comment_id and
// returns the surviving rows.
func Compact(path string) ([]types.Record, error) {
	rows, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	unique := collector.Dedup(rows)
	if err := WriteRecords(path, unique); err != nil {
		return nil, err
	}
	return unique, nil
}

// Appender streams rows to a CSV file as the collector hands them off.
type Appender struct {
	path    string
	f       *os.File
	w       *csv.Writer
	written int
}

var _ collector.RowSink = (*Appender)(nil)

// OpenAppender opens path for appending. With truncate, or when the file is
// new or empty, the file starts over with a header row. Appending to a file
// with a different header is an error.
func OpenAppender(path string, truncate bool) (*Appender, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	needHeader := truncate
	if !truncate {
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			needHeader = true
		case err != nil:
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		case info.Size() == 0:
			needHeader = true
		default:
			if err := checkHeader(path); err != nil {
				return nil, err
			}
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	a := &Appender{path: path, f: f, w: csv.NewWriter(f)}
	if needHeader {
		if err := a.write(types.Columns); err != nil {
			f.Close()
			return nil, err
		}
	}
	return a, nil
}

func checkHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, _ := br.Peek(len(utf8BOM)); string(head) == string(utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	header, err := csv.NewReader(br).Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	if !slices.Equal(header, types.Columns) {
		return fmt.Errorf("%s has unexpected columns %v", path, header)
	}
	return nil
}

func (a *Appender) write(row []string) error {
	if err := a.w.Write(row); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.path, err)
	}
	return nil
}

// WriteRows appends rows and syncs them to disk.
func (a *Appender) WriteRows(rows []types.Record) error {
	for _, r := range rows {
		if err := a.write(recordRow(r)); err != nil {
			return err
		}
	}
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", a.path, err)
	}
	if err := a.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", a.path, err)
	}
	a.written += len(rows)
	return nil
}

// Written returns the number of rows appended through this Appender.
func (a *Appender) Written() int {
	return a.written
}

// Path returns the file being written.
func (a *Appender) Path() string {
	return a.path
}

// Close flushes and closes the file.
func (a *Appender) Close() error {
	if a == nil || a.f == nil {
		return nil
	}
	a.w.Flush()
	flushErr := a.w.Error()
	closeErr := a.f.Close()
	a.f = nil
	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", a.path, flushErr)
	}
	return closeErr
}
