package label

import (
	"encoding/json"
	"testing"

	"bricklabels.dev/internal/persistence/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemory()
	s := NewStore(mem)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, mem
}

func persisted(t *testing.T, mem *kv.MemoryStore) map[string]Label {
	t.Helper()
	raw, ok, err := mem.Get(RecordKey)
	if err != nil || !ok {
		t.Fatalf("persisted record missing (ok=%v err=%v)", ok, err)
	}
	m := make(map[string]Label)
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode persisted: %v", err)
	}
	return m
}

func TestStore_PutGetRemovePersists(t *testing.T) {
	s, mem := newTestStore(t)
	pos := Vec3i{X: 10, Y: -4, Z: 2}
	l := Label{Text: "hello", Owner: Player{ID: "p1", Name: "one"}}

	if err := s.Put(pos, l); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := s.Get(pos)
	if !ok || got.Text != "hello" || got.Owner.ID != "p1" {
		t.Fatalf("unexpected label: %+v ok=%v", got, ok)
	}
	if m := persisted(t, mem); len(m) != 1 || m[pos.Key()].Text != "hello" {
		t.Fatalf("unexpected persisted map: %+v", m)
	}

	// Overwrite keeps a single label per position.
	l.Text = "updated"
	if err := s.Put(pos, l); err != nil {
		t.Fatalf("put: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("want 1 label, got %d", s.Len())
	}

	if err := s.Remove(pos); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Get(pos); ok {
		t.Fatalf("label still present after remove")
	}
	if m := persisted(t, mem); len(m) != 0 {
		t.Fatalf("persisted map not emptied: %+v", m)
	}
	if err := s.Remove(pos); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestStore_LoadRoundTrip(t *testing.T) {
	mem := kv.NewMemory()
	s := NewStore(mem)
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	pos := Vec3i{X: 1, Y: 2, Z: 3}
	if err := s.Put(pos, Label{Text: "t", Owner: Player{ID: "p1"}, Display: DisplayChat}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// A second store over the same settings sees the same map.
	s2 := NewStore(mem)
	if err := s2.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := s2.Get(pos)
	if !ok || got.Text != "t" || got.Display != DisplayChat {
		t.Fatalf("unexpected reloaded label: %+v ok=%v", got, ok)
	}
}

func TestStore_MoveAtomic(t *testing.T) {
	s, _ := newTestStore(t)
	a := Vec3i{X: 0, Y: 0, Z: 0}
	b := Vec3i{X: 5, Y: 5, Z: 5}
	orig := Label{Text: "keep me", Owner: Player{ID: "p1", Name: "one"}}
	if err := s.Put(a, orig); err != nil {
		t.Fatalf("put: %v", err)
	}

	if err := s.Move(a, b); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, ok := s.Get(a); ok {
		t.Fatalf("source still has label after move")
	}
	got, ok := s.Get(b)
	if !ok || got.Text != orig.Text || got.Owner != orig.Owner {
		t.Fatalf("destination label changed: %+v", got)
	}

	// Failed preconditions leave everything untouched.
	if err := s.Move(a, b); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := s.Put(a, Label{Text: "other", Owner: Player{ID: "p2"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Move(a, b); err != ErrExists {
		t.Fatalf("want ErrExists, got %v", err)
	}
	if got, _ := s.Get(b); got.Text != orig.Text {
		t.Fatalf("destination mutated by failed move: %+v", got)
	}
	if got, _ := s.Get(a); got.Text != "other" {
		t.Fatalf("source mutated by failed move: %+v", got)
	}
}

func TestStore_CopyLeavesSourceIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	a := Vec3i{X: 1, Y: 1, Z: 1}
	b := Vec3i{X: 2, Y: 2, Z: 2}
	if err := s.Put(a, Label{Text: "src", Owner: Player{ID: "p1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Copy(a, b); err != nil {
		t.Fatalf("copy: %v", err)
	}

	src, _ := s.Get(a)
	dst, _ := s.Get(b)
	if src.Text != "src" || dst.Text != "src" || dst.Owner.ID != "p1" {
		t.Fatalf("unexpected copy: src=%+v dst=%+v", src, dst)
	}

	// Mutating the destination must not touch the source.
	dst.Text = "changed"
	if err := s.Put(b, dst); err != nil {
		t.Fatalf("put: %v", err)
	}
	if src, _ := s.Get(a); src.Text != "src" {
		t.Fatalf("source changed by destination mutation: %+v", src)
	}
}

func TestStore_CountByOwner(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		pos := Vec3i{X: i}
		if err := s.Put(pos, Label{Text: "t", Owner: Player{ID: "p1"}}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := s.Put(Vec3i{X: 9}, Label{Text: "t", Owner: Player{ID: "p2"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if n := s.CountByOwner("p1"); n != 3 {
		t.Fatalf("want 3 labels for p1, got %d", n)
	}
	if n := s.CountByOwner("nobody"); n != 0 {
		t.Fatalf("want 0 labels, got %d", n)
	}
}

func TestStore_ReconcileAgainstWorld(t *testing.T) {
	s, _ := newTestStore(t)
	keep := Vec3i{X: 1}
	drop1 := Vec3i{X: 2}
	drop2 := Vec3i{X: 3}
	for _, pos := range []Vec3i{keep, drop1, drop2} {
		if err := s.Put(pos, Label{Text: "t", Owner: Player{ID: "p1"}}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	valid := map[string]struct{}{keep.Key(): {}}
	removed, err := s.ReconcileAgainstWorld(valid)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if removed != 2 {
		t.Fatalf("want 2 removed, got %d", removed)
	}
	if _, ok := s.Get(keep); !ok {
		t.Fatalf("valid label was removed")
	}

	// Second pass with the same world removes nothing.
	removed, err = s.ReconcileAgainstWorld(valid)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if removed != 0 {
		t.Fatalf("want 0 removed on second pass, got %d", removed)
	}
}

func TestStore_ReplaceAll(t *testing.T) {
	s, mem := newTestStore(t)
	if err := s.Put(Vec3i{X: 1}, Label{Text: "old", Owner: Player{ID: "p1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	next := map[string]Label{
		"4,5,6": {Text: "new", Owner: Player{ID: "p2"}},
	}
	if err := s.ReplaceAll(next); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, ok := s.Get(Vec3i{X: 1}); ok {
		t.Fatalf("old label survived replace")
	}
	if got, ok := s.Get(Vec3i{X: 4, Y: 5, Z: 6}); !ok || got.Text != "new" {
		t.Fatalf("new label missing: %+v ok=%v", got, ok)
	}

	if err := s.ReplaceAll(nil); err != nil {
		t.Fatalf("replace nil: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store not empty after reset")
	}
	if m := persisted(t, mem); len(m) != 0 {
		t.Fatalf("persisted map not emptied: %+v", m)
	}
}
