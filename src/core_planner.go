package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ncruces/go-strftime"
)

// unknownDateDir is where files without a determinable capture time
// land instead of failing the run.
const unknownDateDir = "unknown-date"

// defaultDateFormat is the strftime template for destination
// directories: year/month/day.
const defaultDateFormat = "%Y/%m/%d"

// ErrCollisionExhausted reports that no free name could be found for a
// file within the suffix budget.
var ErrCollisionExhausted = errors.New("destination naming space exhausted")

// Planner computes destination paths. It never writes to the
// filesystem, but it does remember every path it has handed out this
// run: the stat alone cannot see a path another worker was given and
// has not transferred to yet, so Plan claims paths under a mutex and
// two workers can never receive the same destination.
type Planner struct {
	destRoot    string
	layout      string
	maxAttempts int

	mu      sync.Mutex
	claimed map[string]bool
}

func NewPlanner(destRoot, layout string) *Planner {
	if layout == "" {
		layout = defaultDateFormat
	}
	return &Planner{
		destRoot:    destRoot,
		layout:      layout,
		maxAttempts: 10000,
		claimed:     make(map[string]bool),
	}
}

// OrganizePlan maps one file to its destination.
type OrganizePlan struct {
	DestPath string
	// AlreadyOrganized marks an idempotent re-run: a file of the same
	// size already sits at the planned path, so no transfer is needed.
	AlreadyOrganized bool
	// Renamed marks a collision resolved with a numeric suffix.
	Renamed bool
}

// DirFor returns the destination directory for a timestamp: the date
// template expanded for known times, the fallback directory otherwise.
func (p *Planner) DirFor(ts Timestamp) string {
	if !ts.Known() {
		return filepath.Join(p.destRoot, unknownDateDir)
	}
	return filepath.Join(p.destRoot, strftime.Format(p.layout, ts.Time()))
}

// Plan resolves the destination path for a file. If the computed path
// is taken by a file of the same size the plan reports it as already
// organized; a different-size occupant, or a path claimed by an
// earlier Plan call this run, gets an incrementing numeric suffix
// before the extension until a free name is found. The returned path
// is claimed until the run ends. Given identical destination state, a
// fresh run plans deterministically.
func (p *Planner) Plan(ts Timestamp, originalName string, size int64) (OrganizePlan, error) {
	dir := p.DirFor(ts)
	ext := filepath.Ext(originalName)
	stem := strings.TrimSuffix(originalName, ext)

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i <= p.maxAttempts; i++ {
		name := originalName
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		candidate := filepath.Join(dir, name)

		if p.claimed[candidate] {
			continue
		}
		info, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			p.claimed[candidate] = true
			return OrganizePlan{DestPath: candidate, Renamed: i > 0}, nil
		}
		if err != nil {
			return OrganizePlan{}, fmt.Errorf("stat %s: %w", candidate, err)
		}
		if info.Size() == size {
			return OrganizePlan{DestPath: candidate, AlreadyOrganized: true, Renamed: i > 0}, nil
		}
	}

	return OrganizePlan{}, fmt.Errorf("%w for %s in %s", ErrCollisionExhausted, originalName, dir)
}
