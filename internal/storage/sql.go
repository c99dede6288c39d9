package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/xaenox/notes-bot/internal/models"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const (
	notesTable    = "notes"
	settingsTable = "notes_settings"
)

var noteColumns = []string{"id", "chat_id", "name", "note_hash", "msgtype", "note_value", "file_id", "created_at"}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the database file for the sqlite3 driver.
	Path string
}

// DSN builds the connection string for the configured driver.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", c.Path)
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// SQLStorage persists notes in PostgreSQL or SQLite.
type SQLStorage struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
	logger  *zap.Logger
}

func NewSQLStorage(ctx context.Context, config DatabaseConfig, logger *zap.Logger) (*SQLStorage, error) {
	if config.Driver != DriverPostgres && config.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := sql.Open(config.Driver, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if config.Driver == DriverSQLite {
		// a single writer connection keeps SQLite transactions serialized
		db.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	logger.Info("Connected to database", zap.String("driver", config.Driver))
	return NewSQLStorageFromDB(db, config.Driver, logger), nil
}

// NewSQLStorageFromDB wraps an already opened connection pool.
func NewSQLStorageFromDB(db *sql.DB, driver string, logger *zap.Logger) *SQLStorage {
	var placeholder sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		placeholder = sq.Dollar
	}

	return &SQLStorage{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		logger:  logger,
	}
}

// Migrate applies the embedded schema migrations for the storage driver.
func (s *SQLStorage) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(s.driver); err != nil {
		return fmt.Errorf("error setting migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, s.db, "migrations/"+s.driver); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	s.logger.Info("Database migrations applied", zap.String("driver", s.driver))
	return nil
}

func (s *SQLStorage) ListNotes(ctx context.Context, chatID int64) ([]models.NoteSummary, error) {
	query, args, err := s.builder.
		Select("name", "note_hash").
		From(notesTable).
		Where(sq.Eq{"chat_id": chatID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building notes query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %w", err)
	}
	defer rows.Close()

	notes := make([]models.NoteSummary, 0)
	for rows.Next() {
		var summary models.NoteSummary
		if err := rows.Scan(&summary.Name, &summary.Hash); err != nil {
			return nil, fmt.Errorf("error scanning note: %w", err)
		}
		notes = append(notes, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

func (s *SQLStorage) GetNote(ctx context.Context, chatID int64, name string) (*models.Note, error) {
	return s.getNote(ctx, sq.Eq{"chat_id": chatID, "name": models.NormalizeName(name)})
}

func (s *SQLStorage) GetNoteByHash(ctx context.Context, chatID int64, hash string) (*models.Note, error) {
	return s.getNote(ctx, sq.Eq{"chat_id": chatID, "note_hash": hash})
}

func (s *SQLStorage) getNote(ctx context.Context, where sq.Eq) (*models.Note, error) {
	query, args, err := s.builder.
		Select(noteColumns...).
		From(notesTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building note query: %w", err)
	}

	var (
		note    = &models.Note{}
		msgType string
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&note.ID,
		&note.ChatID,
		&note.Name,
		&note.Hash,
		&msgType,
		&note.Value,
		&note.FileRef,
		&note.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning note: %w", err)
	}

	// An unknown type is kept as stored so delivery can report it.
	note.Type, err = models.ParseContentType(msgType)
	if err != nil {
		s.logger.Warn("Note has unknown content type",
			zap.Int64("chat_id", note.ChatID),
			zap.String("note", note.Name),
			zap.Error(err))
		note.Type = models.ContentType(msgType)
	}

	return note, nil
}

func (s *SQLStorage) CountNotes(ctx context.Context, chatID int64) (int, error) {
	return s.countNotes(ctx, s.db, chatID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStorage) countNotes(ctx context.Context, q queryRower, chatID int64) (int, error) {
	query, args, err := s.builder.
		Select("COUNT(*)").
		From(notesTable).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building count query: %w", err)
	}

	var count int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting notes: %w", err)
	}
	return count, nil
}

func (s *SQLStorage) SaveNote(ctx context.Context, note *models.Note, limit int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.lockChat(ctx, tx, note.ChatID); err != nil {
		return err
	}

	name := models.NormalizeName(note.Name)

	existsQuery, existsArgs, err := s.builder.
		Select("1").
		From(notesTable).
		Where(sq.Eq{"chat_id": note.ChatID, "name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building exists query: %w", err)
	}
	var one int
	err = tx.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&one)
	if err == nil {
		return ErrNoteExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error checking note: %w", err)
	}

	if limit > 0 {
		count, err := s.countNotes(ctx, tx, note.ChatID)
		if err != nil {
			return err
		}
		if count >= limit {
			return ErrNoteLimit
		}
	}

	hash := models.NoteHash(note.ChatID, name)
	createdAt := note.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	insert := s.builder.
		Insert(notesTable).
		Columns("chat_id", "name", "note_hash", "msgtype", "note_value", "file_id", "created_at").
		Values(note.ChatID, name, hash, string(note.Type), note.Value, note.FileRef, createdAt)

	if s.driver == DriverPostgres {
		query, args, err := insert.Suffix("RETURNING id").ToSql()
		if err != nil {
			return fmt.Errorf("error building insert: %w", err)
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&note.ID); err != nil {
			return s.classify(fmt.Errorf("error creating note: %w", err))
		}
	} else {
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("error building insert: %w", err)
		}
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return s.classify(fmt.Errorf("error creating note: %w", err))
		}
		if id, err := result.LastInsertId(); err == nil {
			note.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing note: %w", err)
	}

	note.Name = name
	note.Hash = hash
	note.CreatedAt = createdAt
	return nil
}

// lockChat serializes writers of one chat by locking its settings row.
// The row is created on demand, which is also how settings come to exist.
func (s *SQLStorage) lockChat(ctx context.Context, tx *sql.Tx, chatID int64) error {
	query, args, err := s.builder.
		Insert(settingsTable).
		Columns("chat_id", "private_notes").
		Values(chatID, false).
		Suffix("ON CONFLICT (chat_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building settings insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating chat settings: %w", err)
	}

	if s.driver != DriverPostgres {
		return nil
	}

	query, args, err = s.builder.
		Select("chat_id").
		From(settingsTable).
		Where(sq.Eq{"chat_id": chatID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building lock query: %w", err)
	}
	var locked int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&locked); err != nil {
		return fmt.Errorf("error locking chat: %w", err)
	}
	return nil
}

func (s *SQLStorage) RemoveNote(ctx context.Context, chatID int64, name string) (bool, error) {
	query, args, err := s.builder.
		Delete(notesTable).
		Where(sq.Eq{"chat_id": chatID, "name": models.NormalizeName(name)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("error deleting note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (s *SQLStorage) RemoveAllNotes(ctx context.Context, chatID int64) error {
	query, args, err := s.builder.
		Delete(notesTable).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building delete: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error deleting notes: %w", err)
	}
	return nil
}

func (s *SQLStorage) GetPrivateNotes(ctx context.Context, chatID int64) (bool, error) {
	query, args, err := s.builder.
		Select("private_notes").
		From(settingsTable).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building settings query: %w", err)
	}

	var enabled bool
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error querying chat settings: %w", err)
	}
	return enabled, nil
}

func (s *SQLStorage) SetPrivateNotes(ctx context.Context, chatID int64, enabled bool) error {
	query, args, err := s.builder.
		Insert(settingsTable).
		Columns("chat_id", "private_notes").
		Values(chatID, enabled).
		Suffix("ON CONFLICT (chat_id) DO UPDATE SET private_notes = excluded.private_notes").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building settings upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error saving chat settings: %w", err)
	}
	return nil
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
