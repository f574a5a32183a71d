package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/pkg/telemetry"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"calendar", true},
		{"todo-list_v2.final", true},
		{"A1", true},
		{"", false},
		{".hidden", false},
		{"a/b", false},
		{"a..b", false},
		{"with space", false},
		{strings.Repeat("x", 129), false},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateName(%q) = %v, want ok=%v", tt.name, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidName) {
			t.Errorf("error %v should wrap ErrInvalidName", err)
		}
	}
}

func TestDiff(t *testing.T) {
	a := `<ul><li>a</li><li>b</li></ul>`
	b := `<ul><li>a</li><li>c</li><li>b</li></ul>`

	d := Diff(a, b)
	var got []string
	for _, l := range d {
		got = append(got, l.String())
	}
	want := []string{
		"  <ul>",
		"  <li>a</li>",
		"+ <li>c</li>",
		"  <li>b</li>",
		"  </ul>",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Diff =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if !Changed(d) {
		t.Error("Changed should report the insertion")
	}
	if Changed(Diff(a, a)) {
		t.Error("identical input should not be changed")
	}

	removed := Diff("<p>x</p>", "")
	if len(removed) != 1 || removed[0].Op != Delete {
		t.Errorf("Diff to empty = %v", removed)
	}
}

func TestUnified(t *testing.T) {
	a := `<ul><li>a</li><li>b</li></ul>`
	b := `<ul><li>a</li><li>c</li><li>b</li></ul>`

	fd := Unified("stored", "render", a, b, 1)
	if fd == nil || len(fd.Hunks) != 1 {
		t.Fatalf("Unified = %+v", fd)
	}
	h := fd.Hunks[0]
	if h.OrigStartLine != 2 || h.OrigLines != 2 || h.NewStartLine != 2 || h.NewLines != 3 {
		t.Errorf("hunk header = -%d,%d +%d,%d", h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines)
	}

	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := diff.ParseFileDiff(out)
	if err != nil {
		t.Fatalf("printed diff does not parse: %v\n%s", err, out)
	}
	if st := parsed.Stat(); st.Added != 1 || st.Deleted != 0 {
		t.Errorf("stat = %+v\n%s", st, out)
	}

	if Unified("a", "b", a, a, 3) != nil {
		t.Error("no hunks expected for identical input")
	}
}

func TestUnifiedSplitsDistantChanges(t *testing.T) {
	var x, y []string
	for i := 0; i < 20; i++ {
		x = append(x, "<i>"+strings.Repeat("x", i+1)+"</i>")
	}
	y = append(y, x...)
	y[1] = "<b>first</b>"
	y[18] = "<b>last</b>"

	fd := Unified("a", "b", strings.Join(x, ""), strings.Join(y, ""), 2)
	if len(fd.Hunks) != 2 {
		t.Fatalf("hunks = %d, want 2", len(fd.Hunks))
	}
	if st := fd.Stat(); st.Changed != 2 {
		t.Errorf("stat = %+v", st)
	}
}

func TestUnifiedLargeCapture(t *testing.T) {
	var x strings.Builder
	for i := range 10000 {
		fmt.Fprintf(&x, "<li>%d</li>", i)
	}
	a := x.String()
	b := strings.Replace(a, "<li>5000</li>", "<li>five thousand</li>", 1)

	fd := Unified("a", "b", a, b, DefaultContext)
	if fd == nil || len(fd.Hunks) != 1 {
		t.Fatalf("Unified = %+v", fd)
	}
	if h := fd.Hunks[0]; h.OrigStartLine != 4998 || h.OrigLines != 7 {
		t.Errorf("hunk header = -%d,%d", h.OrigStartLine, h.OrigLines)
	}
}

func testSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:      name,
		Component: "Calendar:default",
		HTML:      `<div class="days">1234567</div>`,
		Passes:    2,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// exerciseStore runs the Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load missing: %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing: %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, testSnapshot("../escape")); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Save with bad name: %v", err)
	}

	for _, name := range []string{"todo", "calendar"} {
		if err := s.Save(ctx, testSnapshot(name)); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}

	got, err := s.Load(ctx, "calendar")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := testSnapshot("calendar")
	if got.HTML != want.HTML || got.Component != want.Component || got.Passes != 2 || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("Load = %+v", got)
	}

	updated := testSnapshot("calendar")
	updated.HTML = "<div></div>"
	if err := s.Save(ctx, updated); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := s.Load(ctx, "calendar"); got.HTML != "<div></div>" {
		t.Errorf("overwrite not visible: %s", got.HTML)
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !slices.Equal(names, []string{"calendar", "todo"}) {
		t.Errorf("List = %v", names)
	}

	if err := s.Delete(ctx, "todo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if names, _ := s.List(ctx); !slices.Equal(names, []string{"calendar"}) {
		t.Errorf("List after delete = %v", names)
	}
}

func TestDiskStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snaps")
	s, err := NewDiskStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if names, _ := s.List(context.Background()); slices.Contains(names, "notes") {
		t.Error("non-snapshot files should be ignored")
	}
}

func TestDiskStoreHonoursContext(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, testSnapshot("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Save with cancelled context: %v", err)
	}
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: make(map[string][]byte)} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Prefix)
	out := &s3.ListObjectsV2Output{}
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			key := strings.TrimPrefix(k, aws.ToString(in.Bucket)+"/")
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	fake := newFakeS3()
	fake.objects["goldens/other/x.json"] = []byte("{}")

	s := NewS3Store(fake, "goldens", "weft/")
	exerciseStore(t, s)

	if _, ok := fake.objects["goldens/weft/calendar.json"]; !ok {
		t.Errorf("unexpected object layout: %v", fake.objects)
	}
}

func TestOpenDisk(t *testing.T) {
	cfg := config.New()
	cfg.Snapshot.Dir = filepath.Join(t.TempDir(), "goldens")
	m := telemetry.NewMetrics()

	s, err := Open(cfg, m)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(context.Background(), testSnapshot("a")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Snapshot.Dir, "a.json")); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	var seen bool
	for _, f := range families {
		if strings.Contains(f.GetName(), "snapshot") {
			seen = true
		}
	}
	if !seen {
		t.Error("snapshot operations should be counted")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := config.New()
	cfg.Snapshot.Backend = "ftp"
	if _, err := Open(cfg, nil); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
