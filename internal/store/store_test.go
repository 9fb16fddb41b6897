package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// openShared opens two stores on one database file, as two processes would.
func openShared(t *testing.T) (*Store, *Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shared.db")
	a, err := New(path)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	b, err := New(path)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return a, b
}

// testClock is a settable clock for repositories.
type testClock struct{ t time.Time }

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, time.October, 21, 10, 0, 0, 0, time.Local)}
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func seqIDs() RepoOption {
	n := 0
	return WithIDs(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/focusboard.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Set(KeyProjects, []byte(`[]`))
	s.Close()

	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	got, ok := s2.Get(KeyProjects)
	if !ok || string(got) != "[]" {
		t.Fatalf("reopened store lost key: %q %v", got, ok)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "focusboard.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key-value operations
// ============================================================

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)
	if v, ok := s.Get("nope"); ok || v != nil {
		t.Fatalf("expected missing key, got %q %v", v, ok)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte(`{"a":1}`))
	got, ok := s.Get("k")
	if !ok || string(got) != `{"a":1}` {
		t.Fatalf("got %q %v", got, ok)
	}

	// Callers cannot mutate the mirror through the returned slice.
	got[0] = 'X'
	again, _ := s.Get("k")
	if string(again) != `{"a":1}` {
		t.Fatalf("mirror was mutated: %q", again)
	}
}

func TestSetBumpsVersion(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte("1"))
	s.Set("k", []byte("2"))
	s.Set("k", []byte("3"))

	var version int64
	if err := s.db.QueryRow(`SELECT version FROM kv WHERE key = ?`, "k").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 3 {
		t.Fatalf("expected version 3, got %d", version)
	}
	if s.mirror["k"].version != 3 {
		t.Fatalf("mirror version %d, want 3", s.mirror["k"].version)
	}
}

func TestModifySkipsUnchanged(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte("1"))
	changed := s.Modify("k", func(old []byte, ok bool) ([]byte, bool) {
		return nil, false
	})
	if changed {
		t.Fatal("expected no change")
	}
	changed = s.Modify("k", func(old []byte, ok bool) ([]byte, bool) {
		if !ok || string(old) != "1" {
			t.Fatalf("unexpected old value %q %v", old, ok)
		}
		return []byte("2"), true
	})
	if !changed {
		t.Fatal("expected change")
	}
	if v, _ := s.Get("k"); string(v) != "2" {
		t.Fatalf("got %q", v)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyProjects, []byte("[]"))
	s.Set(KeyTasks, []byte("[]"))
	s.Set(KeyStats, []byte("[]"))
	s.Set("other", []byte("[]"))

	s.Remove("other")
	if _, ok := s.Get("other"); ok {
		t.Fatal("removed key still present")
	}
	s.Remove("other") // idempotent

	s.Clear()
	for _, k := range []string{KeyProjects, KeyTasks, KeyStats} {
		if _, ok := s.Get(k); ok {
			t.Fatalf("%s survived Clear", k)
		}
	}
}

func TestWriteFailureKeepsMirror(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte("1"))
	if _, err := s.db.Exec(`DROP TABLE kv`); err != nil {
		t.Fatal(err)
	}
	s.Set("k", []byte("2"))
	if v, ok := s.Get("k"); !ok || string(v) != "2" {
		t.Fatalf("mirror should hold the unsaved value, got %q %v", v, ok)
	}
}

// ============================================================
// Cross-process sync
// ============================================================

func TestSyncReloadsExternalWrites(t *testing.T) {
	a, b := openShared(t)
	ctx := context.Background()

	a.Set(KeyTasks, []byte(`["one"]`))
	if v, _ := b.Get(KeyTasks); string(v) != `["one"]` {
		t.Fatalf("b first read: %q", v)
	}

	ch, cancel := b.Subscribe()
	defer cancel()

	a.Set(KeyTasks, []byte(`["one","two"]`))
	if v, _ := b.Get(KeyTasks); string(v) != `["one"]` {
		t.Fatalf("b should serve its mirror until sync, got %q", v)
	}

	changed, err := b.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{KeyTasks}, changed); diff != "" {
		t.Fatalf("changed keys (-want +got):\n%s", diff)
	}
	if v, _ := b.Get(KeyTasks); string(v) != `["one","two"]` {
		t.Fatalf("b after sync: %q", v)
	}

	select {
	case c := <-ch:
		if c.Key != KeyTasks {
			t.Fatalf("notified key %q", c.Key)
		}
	default:
		t.Fatal("expected a change notification")
	}

	// Nothing new: a second sync is quiet.
	changed, err = b.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 0 {
		t.Fatalf("expected no changes, got %v", changed)
	}
}

func TestSyncIgnoresOwnWrites(t *testing.T) {
	a, _ := openShared(t)
	a.Set(KeyStats, []byte(`[]`))
	a.Set(KeyStats, []byte(`[{}]`))
	changed, err := a.Sync(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 0 {
		t.Fatalf("own writes reported as external: %v", changed)
	}
}

func TestSyncIgnoresExternalRemoval(t *testing.T) {
	a, b := openShared(t)
	a.Set(KeyProjects, []byte(`[1]`))
	b.Get(KeyProjects)

	a.Remove(KeyProjects)
	if _, err := b.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if v, ok := b.Get(KeyProjects); !ok || string(v) != `[1]` {
		t.Fatalf("b should keep its mirrored value, got %q %v", v, ok)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	a, b := openShared(t)
	ch, cancel := b.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Watch(ctx, 10*time.Millisecond)
		close(done)
	}()

	a.Set(KeyStats, []byte(`[]`))
	select {
	case c := <-ch:
		if c.Key != KeyStats {
			t.Fatalf("notified key %q", c.Key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch never delivered the change")
	}

	stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	cancel() // second call is a no-op
}

// ============================================================
// Collections
// ============================================================

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestCollectionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	c := NewCollection[item](s, "items")

	if got := c.All(); len(got) != 0 {
		t.Fatalf("expected empty collection, got %v", got)
	}

	want := []item{{ID: "a", Name: "Alpha", N: 1}, {ID: "b", Name: "Beta", N: 2}}
	c.Replace(want)
	if diff := cmp.Diff(want, c.All()); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestCollectionReplaceNilWritesEmptyArray(t *testing.T) {
	s := newTestStore(t)
	c := NewCollection[item](s, "items")
	c.Replace(nil)
	raw, ok := s.Get("items")
	if !ok || string(raw) != "[]" {
		t.Fatalf("got %q %v", raw, ok)
	}
}

func TestCollectionAddFindRemoveUpdate(t *testing.T) {
	s := newTestStore(t)
	c := NewCollection[item](s, "items")
	c.Add(item{ID: "a", N: 1})
	c.Add(item{ID: "b", N: 2})
	c.Add(item{ID: "c", N: 3})

	got, ok := c.Find(func(i item) bool { return i.ID == "b" })
	if !ok || got.N != 2 {
		t.Fatalf("find b: %+v %v", got, ok)
	}

	n := c.UpdateWhere(func(i item) bool { return i.N >= 2 }, func(i *item) { i.Name = "big" })
	if n != 2 {
		t.Fatalf("updated %d, want 2", n)
	}

	if n := c.RemoveWhere(func(i item) bool { return i.ID == "a" }); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	if n := c.RemoveWhere(func(i item) bool { return i.ID == "a" }); n != 0 {
		t.Fatalf("second remove removed %d", n)
	}

	want := []item{{ID: "b", Name: "big", N: 2}, {ID: "c", Name: "big", N: 3}}
	if diff := cmp.Diff(want, c.All()); diff != "" {
		t.Fatalf("collection (-want +got):\n%s", diff)
	}
}

func TestCollectionCorruptDocument(t *testing.T) {
	s := newTestStore(t)
	s.Set("items", []byte(`{not json`))
	c := NewCollection[item](s, "items")
	if got := c.All(); len(got) != 0 {
		t.Fatalf("corrupt document should read empty, got %v", got)
	}
	c.Add(item{ID: "fresh"})
	if got := c.All(); len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("add over corrupt document: %v", got)
	}
}

func TestCollectionNoWriteWhenNothingMatches(t *testing.T) {
	s := newTestStore(t)
	c := NewCollection[item](s, "items")
	c.Add(item{ID: "a"})
	before := s.mirror["items"].version

	c.UpdateWhere(func(i item) bool { return false }, func(i *item) { i.N = 9 })
	c.RemoveWhere(func(i item) bool { return false })

	if after := s.mirror["items"].version; after != before {
		t.Fatalf("version moved from %d to %d without a change", before, after)
	}
}

// ============================================================
// Model encoding
// ============================================================

func TestTaskIDAcceptsLegacyNumbers(t *testing.T) {
	s := newTestStore(t)
	s.Set(KeyProjects, []byte(`[{"id":"p","name":"Legacy","tasks":[
		{"id":1760000000000,"text":"old","completed":true,"completedAt":null},
		{"id":"uuid-1","text":"new","completed":false,"completedAt":null}
	],"totalTasks":9,"completedTasks":7}]`))

	p, ok := NewProjects(s).Get("p")
	if !ok {
		t.Fatal("project not found")
	}
	if p.Tasks[0].ID != "1760000000000" || p.Tasks[1].ID != "uuid-1" {
		t.Fatalf("unexpected ids %q %q", p.Tasks[0].ID, p.Tasks[1].ID)
	}
	if ms, ok := p.Tasks[0].ID.Millis(); !ok || ms != 1760000000000 {
		t.Fatalf("legacy id not numeric: %v %v", ms, ok)
	}
	if _, ok := p.Tasks[1].ID.Millis(); ok {
		t.Fatal("uuid reported as numeric")
	}
	if p.TotalTasks != 2 || p.CompletedTasks != 1 {
		t.Fatalf("counters not re-derived: %d/%d", p.CompletedTasks, p.TotalTasks)
	}

	data, err := TaskID("1760000000000").MarshalJSON()
	if err != nil || string(data) != "1760000000000" {
		t.Fatalf("numeric id should stay a number: %s %v", data, err)
	}
	data, err = TaskID("0042").MarshalJSON()
	if err != nil || string(data) != `"0042"` {
		t.Fatalf("non-canonical id should be a string: %s %v", data, err)
	}
}
