// Package snapshot stores named captures of a component's rendered HTML,
// used as goldens when checking that a change to the reconciler leaves the
// output alone.
//
// Two backends implement Store: DiskStore, one JSON file per snapshot, and
// S3Store, one object per snapshot under a key prefix.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// ErrNotFound is returned when no snapshot has the requested name.
var ErrNotFound = errors.New("snapshot: not found")

// ErrInvalidName is returned for names that are empty, too long or contain
// characters other than letters, digits, '.', '_' and '-'.
var ErrInvalidName = errors.New("snapshot: invalid name")

// Snapshot is the rendered output of one component at one point.
type Snapshot struct {
	Name      string    `json:"name"`
	Component string    `json:"component"`
	HTML      string    `json:"html"`
	Passes    int       `json:"passes"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a snapshot backend.
type Store interface {
	// Save creates or replaces the snapshot with s.Name.
	Save(ctx context.Context, s *Snapshot) error

	// Load returns the named snapshot or ErrNotFound.
	Load(ctx context.Context, name string) (*Snapshot, error)

	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the named snapshot or returns ErrNotFound.
	Delete(ctx context.Context, name string) error
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName reports whether name can be used as a snapshot name.
func ValidateName(name string) error {
	if !validName.MatchString(name) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// LineOp is the kind of a DiffLine.
type LineOp byte

const (
	Equal  LineOp = ' '
	Delete LineOp = '-'
	Insert LineOp = '+'
)

// DiffLine is one line of a Diff.
type DiffLine struct {
	Op   LineOp
	Text string
}

func (l DiffLine) String() string {
	return string(l.Op) + " " + l.Text
}

// Diff compares two HTML captures line by line. The HTML is first broken
// after every closing tag so that single-line serialisations still diff
// element by element.
func Diff(a, b string) []DiffLine {
	x, y := splitHTML(a), splitHTML(b)
	var out []DiffLine
	for _, op := range difflib.NewMatcher(x, y).GetOpCodes() {
		out = appendOp(out, op, x, y)
	}
	return out
}

// Changed reports whether d contains any insertion or deletion.
func Changed(d []DiffLine) bool {
	for _, l := range d {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

func splitHTML(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "></", ">\n</")
	s = strings.ReplaceAll(s, "><", ">\n<")
	return strings.Split(s, "\n")
}
