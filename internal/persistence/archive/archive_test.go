package archive

import (
	"reflect"
	"testing"

	"bricklabels.dev/internal/label"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	labels := map[string]label.Label{
		"1,2,3":  {Text: "hello", Owner: label.Player{ID: "p1", Name: "one"}},
		"-4,0,9": {Text: "there", Owner: label.Player{ID: "p2"}, Display: label.DisplayChat},
	}

	path, err := Write(dir, labels)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, labels) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, labels)
	}

	paths, err := List(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(paths) != 1 || paths[0] != path {
		t.Fatalf("unexpected list: %v", paths)
	}
}

func TestList_MissingDir(t *testing.T) {
	paths, err := List(t.TempDir() + "/nope")
	if err != nil || paths != nil {
		t.Fatalf("want empty list for missing dir, got %v (%v)", paths, err)
	}
}
