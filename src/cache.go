package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// cacheDirName lives under the destination root and is excluded from
// every scan.
const cacheDirName = ".mediasort-cache"

type cacheWriteRequest struct {
	path    string
	size    int64
	modTime time.Time
	taken   Timestamp
}

// Cache memoizes extracted capture timestamps keyed by
// (path, size, mtime) so re-runs over huge libraries skip metadata
// decoding. Best-effort only: it is not a catalog, and the duplicate
// index never reads from it.
type Cache struct {
	db         *sql.DB
	writeChan  chan cacheWriteRequest
	writerDone sync.WaitGroup
}

// OpenCache opens or creates the cache database under destRoot.
func OpenCache(destRoot string) (*Cache, error) {
	cacheDir := filepath.Join(destRoot, cacheDirName)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(cacheDir, "cache.db"))
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// WAL keeps readers unblocked while the writer goroutine commits.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS timestamps (
		path TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		taken INTEGER,
		processed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mod_time ON timestamps(mod_time);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	cache := &Cache{
		db:        db,
		writeChan: make(chan cacheWriteRequest, 1000),
	}

	// Single writer goroutine serializes all inserts.
	cache.writerDone.Add(1)
	go cache.writerLoop()

	return cache, nil
}

func (c *Cache) writerLoop() {
	defer c.writerDone.Done()
	for req := range c.writeChan {
		c.writeToDatabase(req)
	}
}

// Close drains pending writes and closes the database.
func (c *Cache) Close() error {
	if c.writeChan != nil {
		close(c.writeChan)
		c.writerDone.Wait()
	}
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached timestamp for a file, valid only while size
// and mtime still match.
func (c *Cache) Get(path string, size int64, modTime time.Time) (Timestamp, bool) {
	var taken sql.NullInt64
	err := c.db.QueryRow(`
		SELECT taken FROM timestamps
		WHERE path = ? AND size = ? AND mod_time = ?
	`, path, size, modTime.Unix()).Scan(&taken)
	if err != nil {
		return UnknownTime(), false
	}
	if !taken.Valid {
		return UnknownTime(), true
	}
	return KnownTime(time.Unix(taken.Int64, 0)), true
}

// Put queues a timestamp for writing; non-blocking, dropped when the
// queue is full.
func (c *Cache) Put(path string, size int64, modTime time.Time, taken Timestamp) error {
	select {
	case c.writeChan <- cacheWriteRequest{path: path, size: size, modTime: modTime, taken: taken}:
		return nil
	default:
		return fmt.Errorf("cache write queue full")
	}
}

func (c *Cache) writeToDatabase(req cacheWriteRequest) {
	var taken sql.NullInt64
	if req.taken.Known() {
		taken.Valid = true
		taken.Int64 = req.taken.Time().Unix()
	}

	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO timestamps
		(path, size, mod_time, taken, processed_at)
		VALUES (?, ?, ?, ?, ?)
	`, req.path, req.size, req.modTime.Unix(), taken, time.Now().Unix())
	if err != nil {
		// Cache is best-effort; the run does not depend on it.
		fmt.Fprintf(os.Stderr, "warning: cache write failed for %s: %v\n", req.path, err)
	}
}

// Count reports how many entries the cache holds.
func (c *Cache) Count() (total int64) {
	c.db.QueryRow("SELECT COUNT(*) FROM timestamps").Scan(&total)
	return
}

// PruneDeleted removes entries for files no longer present in the
// scanned set.
func (c *Cache) PruneDeleted(validPaths map[string]bool) (int64, error) {
	rows, err := c.db.Query("SELECT path FROM timestamps")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var toDelete []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			continue
		}
		if !validPaths[path] {
			toDelete = append(toDelete, path)
		}
	}
	if len(toDelete) == 0 {
		return 0, nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM timestamps WHERE path = ?")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, path := range toDelete {
		if _, err := stmt.Exec(path); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int64(len(toDelete)), nil
}
