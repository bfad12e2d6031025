package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"onyx/internal/config"
	"onyx/internal/fileutil"
)

// Store manages library persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// ErrLocked indicates another process holds the library lock.
var ErrLocked = errors.New("library database is locked by another process")

// Open initializes or connects to the library database, acquires the
// single-writer lock, and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "library.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !held {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "library.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the database connection and the single-writer lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return dbErr
}

// Get fetches an entry by id. Returns nil when no entry exists.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM library_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// GetAll returns every entry ordered by title.
func (s *Store) GetAll(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM library_entries ORDER BY title COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// FindBySourceApp fetches the entry for a source and source app id.
// Returns nil when no entry exists.
func (s *Store) FindBySourceApp(ctx context.Context, source, sourceAppID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE source = ? AND source_app_id = ?`,
		source,
		sourceAppID,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by source app: %w", err)
	}
	return entry, nil
}

// FindByExePath fetches the entry whose normalized executable path matches.
// Returns nil when no entry exists.
func (s *Store) FindByExePath(ctx context.Context, exePath string) (*Entry, error) {
	norm := fileutil.NormalizePath(exePath)
	if norm == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE exe_path_norm = ?`, norm)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by exe path: %w", err)
	}
	return entry, nil
}

// Upsert inserts or updates an entry. When the entry's id has changed for
// the same logical game (same normalized executable or install path), the
// superseded row is deleted in the same transaction so the store never holds
// two rows for one physical install.
func (s *Store) Upsert(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	if entry.ID == "" {
		return errors.New("entry id is empty")
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exeNorm := fileutil.NormalizePath(entry.ExePath)
	installNorm := fileutil.NormalizePath(entry.InstallPath)
	if exeNorm != "" || installNorm != "" {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM library_entries
             WHERE id != ?
               AND ((exe_path_norm != '' AND exe_path_norm = ?)
                 OR (install_path_norm != '' AND install_path_norm = ?))`,
			entry.ID,
			exeNorm,
			installNorm,
		)
		if err != nil {
			return fmt.Errorf("remove superseded rows: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO library_entries (
            id, title, platform_tag, source, source_app_id,
            install_path, install_path_norm, exe_path, exe_path_norm,
            box_art_url, banner_url, logo_url, hero_url,
            description, release_date, genres_json, developers_json, publishers_json,
            age_rating, critic_score, community_score,
            playtime_seconds, last_played, favorite, hidden,
            categories_json, locked_fields_json, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            platform_tag = excluded.platform_tag,
            source = excluded.source,
            source_app_id = excluded.source_app_id,
            install_path = excluded.install_path,
            install_path_norm = excluded.install_path_norm,
            exe_path = excluded.exe_path,
            exe_path_norm = excluded.exe_path_norm,
            box_art_url = excluded.box_art_url,
            banner_url = excluded.banner_url,
            logo_url = excluded.logo_url,
            hero_url = excluded.hero_url,
            description = excluded.description,
            release_date = excluded.release_date,
            genres_json = excluded.genres_json,
            developers_json = excluded.developers_json,
            publishers_json = excluded.publishers_json,
            age_rating = excluded.age_rating,
            critic_score = excluded.critic_score,
            community_score = excluded.community_score,
            playtime_seconds = excluded.playtime_seconds,
            last_played = excluded.last_played,
            favorite = excluded.favorite,
            hidden = excluded.hidden,
            categories_json = excluded.categories_json,
            locked_fields_json = excluded.locked_fields_json,
            updated_at = excluded.updated_at`,
		entry.ID,
		entry.Title,
		nullableString(entry.PlatformTag),
		entry.Source,
		nullableString(entry.SourceAppID),
		nullableString(entry.InstallPath),
		nullableString(installNorm),
		nullableString(entry.ExePath),
		nullableString(exeNorm),
		nullableString(entry.BoxArtURL),
		nullableString(entry.BannerURL),
		nullableString(entry.LogoURL),
		nullableString(entry.HeroURL),
		nullableString(entry.Description),
		nullableString(entry.ReleaseDate),
		marshalList(entry.Genres),
		marshalList(entry.Developers),
		marshalList(entry.Publishers),
		nullableString(entry.AgeRating),
		entry.CriticScore,
		entry.CommunityScore,
		entry.PlaytimeSeconds,
		nullableTime(entry.LastPlayed),
		boolToInt(entry.Favorite),
		boolToInt(entry.Hidden),
		marshalList(entry.Categories),
		marshalList(entry.LockedFields),
		entry.CreatedAt.Format(time.RFC3339Nano),
		entry.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Delete removes an entry by id. Returns false when no row existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM library_entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetFieldLocks replaces the locked field set for an entry. Unknown field
// names are rejected.
func (s *Store) SetFieldLocks(ctx context.Context, id string, fields []string) error {
	valid := make(map[string]struct{}, len(LockableFields))
	for _, field := range LockableFields {
		valid[field] = struct{}{}
	}
	for _, field := range fields {
		if _, ok := valid[field]; !ok {
			return fmt.Errorf("unknown lockable field %q", field)
		}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE library_entries SET locked_fields_json = ?, updated_at = ? WHERE id = ?`,
		marshalList(fields),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set field locks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %q not found", id)
	}
	return nil
}

// SetCategories replaces the category list for an entry.
func (s *Store) SetCategories(ctx context.Context, id string, categories []string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE library_entries SET categories_json = ?, updated_at = ? WHERE id = ?`,
		marshalList(categories),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set categories: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %q not found", id)
	}
	return nil
}

// SetFavorite toggles the favorite flag for an entry.
func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return s.setFlag(ctx, id, "favorite", favorite)
}

// SetHidden toggles the hidden flag for an entry.
func (s *Store) SetHidden(ctx context.Context, id string, hidden bool) error {
	return s.setFlag(ctx, id, "hidden", hidden)
}

func (s *Store) setFlag(ctx context.Context, id, column string, value bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE library_entries SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		boolToInt(value),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %q not found", id)
	}
	return nil
}

// Count returns the number of entries in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM library_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Health reports diagnostic information about the library database.
type Health struct {
	DBPath         string
	DatabaseExists bool
	TotalEntries   int
	IntegrityOK    bool
}

// CheckHealth pings the database and runs an integrity check.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{DBPath: s.path}

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat library database: %w", err)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		return health, fmt.Errorf("ping library database: %w", err)
	}

	if err := s.db.QueryRowContext(connCtx, `SELECT COUNT(1) FROM library_entries`).Scan(&health.TotalEntries); err != nil {
		return health, fmt.Errorf("count entries: %w", err)
	}

	var integrity string
	if err := s.db.QueryRowContext(connCtx, `PRAGMA integrity_check`).Scan(&integrity); err != nil {
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityOK = integrity == "ok"
	return health, nil
}

const entryColumns = "id, title, platform_tag, source, source_app_id, install_path, exe_path, box_art_url, banner_url, logo_url, hero_url, description, release_date, genres_json, developers_json, publishers_json, age_rating, critic_score, community_score, playtime_seconds, last_played, favorite, hidden, categories_json, locked_fields_json, created_at, updated_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id             string
		title          string
		platformTag    sql.NullString
		source         string
		sourceAppID    sql.NullString
		installPath    sql.NullString
		exePath        sql.NullString
		boxArtURL      sql.NullString
		bannerURL      sql.NullString
		logoURL        sql.NullString
		heroURL        sql.NullString
		description    sql.NullString
		releaseDate    sql.NullString
		genresJSON     sql.NullString
		developersJSON sql.NullString
		publishersJSON sql.NullString
		ageRating      sql.NullString
		criticScore    sql.NullFloat64
		commScore      sql.NullFloat64
		playtime       sql.NullInt64
		lastPlayedRaw  sql.NullString
		favorite       sql.NullInt64
		hidden         sql.NullInt64
		categoriesJSON sql.NullString
		lockedJSON     sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&platformTag,
		&source,
		&sourceAppID,
		&installPath,
		&exePath,
		&boxArtURL,
		&bannerURL,
		&logoURL,
		&heroURL,
		&description,
		&releaseDate,
		&genresJSON,
		&developersJSON,
		&publishersJSON,
		&ageRating,
		&criticScore,
		&commScore,
		&playtime,
		&lastPlayedRaw,
		&favorite,
		&hidden,
		&categoriesJSON,
		&lockedJSON,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:              id,
		Title:           title,
		PlatformTag:     platformTag.String,
		Source:          source,
		SourceAppID:     sourceAppID.String,
		InstallPath:     installPath.String,
		ExePath:         exePath.String,
		BoxArtURL:       boxArtURL.String,
		BannerURL:       bannerURL.String,
		LogoURL:         logoURL.String,
		HeroURL:         heroURL.String,
		Description:     description.String,
		ReleaseDate:     releaseDate.String,
		Genres:          unmarshalList(genresJSON.String),
		Developers:      unmarshalList(developersJSON.String),
		Publishers:      unmarshalList(publishersJSON.String),
		AgeRating:       ageRating.String,
		CriticScore:     criticScore.Float64,
		CommunityScore:  commScore.Float64,
		PlaytimeSeconds: playtime.Int64,
		Favorite:        favorite.Int64 != 0,
		Hidden:          hidden.Int64 != 0,
		Categories:      unmarshalList(categoriesJSON.String),
		LockedFields:    unmarshalList(lockedJSON.String),
	}

	if lastPlayedRaw.Valid {
		if t, err := parseTimeString(lastPlayedRaw.String); err == nil {
			entry.LastPlayed = &t
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		entry.UpdatedAt = updated
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func marshalList(values []string) any {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return string(data)
}

func unmarshalList(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
