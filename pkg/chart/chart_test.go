package chart

import (
	"encoding/json"
	"errors"
	"testing"
)

func rec(key int64, parent int64, name string) Record {
	r := Record{Key: IntKey(key), Attrs: Attributes{"name": name}}
	if parent >= 0 {
		r.Parent = IntKey(parent)
	}
	return r
}

func TestKeyJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Key
		wantOut string
	}{
		{name: "Integer", in: `3`, want: IntKey(3), wantOut: `3`},
		{name: "IntegralFloat", in: `3.0`, want: IntKey(3), wantOut: `3`},
		{name: "Fraction", in: `1.5`, want: NumberKey(1.5), wantOut: `1.5`},
		{name: "String", in: `"abc"`, want: StringKey("abc"), wantOut: `"abc"`},
		{name: "NumericString", in: `"1"`, want: StringKey("1"), wantOut: `"1"`},
		{name: "Null", in: `null`, want: Key{}, wantOut: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var k Key
			if err := json.Unmarshal([]byte(tt.in), &k); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.in, err)
			}
			if k != tt.want {
				t.Errorf("key = %#v, want %#v", k, tt.want)
			}
			out, err := json.Marshal(k)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tt.wantOut {
				t.Errorf("Marshal = %s, want %s", out, tt.wantOut)
			}
		})
	}
}

func TestKeyUnmarshalRejectsObjects(t *testing.T) {
	var k Key
	if err := json.Unmarshal([]byte(`{"a":1}`), &k); err == nil {
		t.Error("expected error for object key")
	}
}

func TestNumericAndStringKeysDiffer(t *testing.T) {
	if IntKey(1) == StringKey("1") {
		t.Error("IntKey(1) should differ from StringKey(\"1\")")
	}
	if ParseKey("1") != IntKey(1) {
		t.Errorf("ParseKey(\"1\") = %#v, want 1", ParseKey("1"))
	}
	if ParseKey("ceo") != StringKey("ceo") {
		t.Errorf("ParseKey(\"ceo\") = %#v, want \"ceo\"", ParseKey("ceo"))
	}
	if n, ok := IntKey(42).Int(); !ok || n != 42 {
		t.Errorf("Int() = %d, %v, want 42, true", n, ok)
	}
	if _, ok := StringKey("42").Int(); ok {
		t.Error("string key should not convert to int")
	}
}

func TestRecordWithDoesNotAlias(t *testing.T) {
	orig := rec(1, 0, "B")
	edited := orig.With("name", "B2")

	if orig.Value("name") != "B" {
		t.Errorf("original name = %q, want B", orig.Value("name"))
	}
	if edited.Value("name") != "B2" {
		t.Errorf("edited name = %q, want B2", edited.Value("name"))
	}
	if orig.Equal(edited) {
		t.Error("records should differ after With")
	}

	moved := orig.WithParent(Key{})
	if moved.HasParent() {
		t.Error("WithParent(zero) should make a root")
	}
	if !orig.HasParent() {
		t.Error("original parent should be untouched")
	}
}

func TestRecordEqualNilAttrs(t *testing.T) {
	a := Record{Key: IntKey(1)}
	b := Record{Key: IntKey(1), Attrs: Attributes{}}
	if !a.Equal(b) {
		t.Error("nil and empty attributes should be equal")
	}
}

func TestIndexRebuild(t *testing.T) {
	records := []Record{rec(0, -1, "A"), rec(1, 0, "B"), rec(2, 0, "C")}
	x := BuildIndex(records)

	if err := x.Verify(records); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	remaining := []Record{records[2], records[0]}
	x.Rebuild(remaining)
	if err := x.Verify(remaining); err != nil {
		t.Fatalf("Verify after rebuild: %v", err)
	}
	if x.Contains(IntKey(1)) {
		t.Error("stale key 1 should be gone after rebuild")
	}
	if pos, ok := x.Lookup(IntKey(0)); !ok || pos != 1 {
		t.Errorf("Lookup(0) = %d, %v, want 1, true", pos, ok)
	}
}

func TestIndexCloneIsIndependent(t *testing.T) {
	x := BuildIndex([]Record{rec(0, -1, "A")})
	y := x.Clone()
	y.Set(IntKey(1), 1)

	if x.Contains(IntKey(1)) {
		t.Error("mutating the clone should not affect the original")
	}
	if y.Len() != 2 {
		t.Errorf("clone Len = %d, want 2", y.Len())
	}
}

func TestIndexVerifyDetectsDrift(t *testing.T) {
	records := []Record{rec(0, -1, "A"), rec(1, 0, "B")}
	x := BuildIndex(records)
	x.Set(IntKey(1), 0)
	if err := x.Verify(records); err == nil {
		t.Error("Verify should report a wrong position")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		wantErr error
	}{
		{
			name:    "Forest",
			records: []Record{rec(0, -1, "A"), rec(1, 0, "B"), rec(2, -1, "C")},
		},
		{
			name:    "DanglingParent",
			records: []Record{rec(1, 0, "B")},
		},
		{
			name:    "EmptyKey",
			records: []Record{{Key: StringKey("")}},
			wantErr: ErrInvalidKey,
		},
		{
			name:    "Duplicate",
			records: []Record{rec(0, -1, "A"), rec(0, -1, "A")},
			wantErr: ErrDuplicateKey,
		},
		{
			name:    "SelfParent",
			records: []Record{rec(0, 0, "A")},
			wantErr: ErrSelfParent,
		},
		{
			name:    "Cycle",
			records: []Record{rec(0, 2, "A"), rec(1, 0, "B"), rec(2, 1, "C"), rec(3, -1, "D")},
			wantErr: ErrCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.records)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTreeNavigation(t *testing.T) {
	records := []Record{
		rec(0, -1, "A"),
		rec(1, 0, "B"),
		rec(2, 0, "C"),
		rec(3, 1, "D"),
		rec(4, 9, "orphan"),
	}
	tree := NewTree(records)

	roots := tree.Roots()
	if len(roots) != 2 || roots[0].Key != IntKey(0) || roots[1].Key != IntKey(4) {
		t.Fatalf("Roots = %v, want [0 4]", Keys(roots))
	}
	if got := Keys(tree.Children(IntKey(0))); len(got) != 2 || got[0] != IntKey(1) || got[1] != IntKey(2) {
		t.Errorf("Children(0) = %v, want [1 2]", got)
	}
	if !tree.IsLeaf(IntKey(3)) {
		t.Error("3 should be a leaf")
	}
	if p, ok := tree.Parent(IntKey(3)); !ok || p.Key != IntKey(1) {
		t.Errorf("Parent(3) = %v, %v, want 1", p.Key, ok)
	}
	if d := tree.Dangling(); len(d) != 1 || d[0].Key != IntKey(4) {
		t.Errorf("Dangling = %v, want [4]", Keys(d))
	}
	if !tree.IsAncestor(IntKey(0), IntKey(3)) {
		t.Error("0 should be an ancestor of 3")
	}
	if tree.IsAncestor(IntKey(2), IntKey(3)) {
		t.Error("2 should not be an ancestor of 3")
	}
	if tree.Depth() != 3 {
		t.Errorf("Depth = %d, want 3", tree.Depth())
	}

	var order []Key
	tree.Walk(func(r Record, _ int) bool {
		order = append(order, r.Key)
		return true
	})
	want := []Key{IntKey(0), IntKey(1), IntKey(3), IntKey(2), IntKey(4)}
	if len(order) != len(want) {
		t.Fatalf("Walk visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Walk[%d] = %v, want %v", i, order[i], want[i])
		}
	}
}

func TestBatchAddAndChanges(t *testing.T) {
	var b Batch
	if !b.IsEmpty() {
		t.Fatal("zero batch should be empty")
	}

	b.Add(Change{Kind: ChangeModify, Record: rec(5, 0, "new")})
	b.Add(Change{Kind: ChangeInsert, Key: IntKey(5)})
	b.Add(Change{Kind: ChangeInsert, Key: IntKey(5)})
	b.Add(Change{Kind: ChangeModify, Record: rec(5, 0, "renamed")})
	b.Add(Change{Kind: ChangeRemove, Key: IntKey(2)})

	if len(b.Modified) != 1 || b.Modified[0].Value("name") != "renamed" {
		t.Errorf("Modified = %v, want one record named renamed", b.Modified)
	}
	if len(b.Inserted) != 1 {
		t.Errorf("Inserted = %v, want one key", b.Inserted)
	}

	changes := b.Changes()
	kinds := []ChangeKind{ChangeModify, ChangeInsert, ChangeRemove}
	if len(changes) != len(kinds) {
		t.Fatalf("Changes = %d entries, want %d", len(changes), len(kinds))
	}
	for i, k := range kinds {
		if changes[i].Kind != k {
			t.Errorf("Changes[%d].Kind = %v, want %v", i, changes[i].Kind, k)
		}
	}
}
