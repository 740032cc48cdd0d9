package document

import (
	"errors"
	"image"
	"testing"

	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/chunky"
)

func testDocument() (*Document, *Layer, *Folder, *Layer) {
	doc := New(image.Pt(8, 8), chunky.WithChunkSize(4))
	bottom := NewLayer("bottom", doc.NewImage())
	group := NewFolder("group")
	inner := NewLayer("inner", doc.NewImage())
	group.Children = []Member{inner}
	doc.Root.Children = []Member{bottom, group}
	return doc, bottom, group, inner
}

func TestFindMember(t *testing.T) {
	doc, bottom, group, inner := testDocument()

	for _, m := range []Member{bottom, group, inner, doc.Root} {
		got, ok := doc.FindMember(m.Base().ID)
		if !ok || got != m {
			t.Errorf("FindMember(%s) = %v, %v", m.Base().Name, got, ok)
		}
	}
	if _, ok := doc.FindMember(uuid.New()); ok {
		t.Error("FindMember found an unknown id")
	}

	parent, index, ok := doc.FindParent(inner.ID)
	if !ok || parent != group || index != 0 {
		t.Errorf("FindParent(inner) = %v, %d, %v", parent, index, ok)
	}
	if _, _, ok := doc.FindParent(doc.Root.ID); ok {
		t.Error("root has a parent")
	}
	if got := len(doc.Layers()); got != 2 {
		t.Errorf("Layers() = %d, want 2", got)
	}
}

func TestMustFindPanics(t *testing.T) {
	doc, _, group, _ := testDocument()

	tests := []struct {
		name string
		fn   func()
		want error
	}{
		{"missing member", func() { doc.MustFindMember(uuid.New()) }, ErrMemberNotFound},
		{"missing layer", func() { doc.MustFindLayer(uuid.New()) }, ErrMemberNotFound},
		{"folder as layer", func() { doc.MustFindLayer(group.ID) }, ErrWrongMemberType},
		{"missing parent", func() { doc.MustFindParent(uuid.New()) }, ErrMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				err, _ := recover().(error)
				if !errors.Is(err, tt.want) {
					t.Errorf("panic = %v, want %v", err, tt.want)
				}
			}()
			tt.fn()
		})
	}
}

func TestFolderInsertRemove(t *testing.T) {
	f := NewFolder("f")
	a, b, c := NewFolder("a"), NewFolder("b"), NewFolder("c")
	f.Insert(0, a)
	f.Insert(5, c)
	f.Insert(1, b)
	if f.IndexOf(a.ID) != 0 || f.IndexOf(b.ID) != 1 || f.IndexOf(c.ID) != 2 {
		t.Fatalf("unexpected order after Insert")
	}
	if got := f.Remove(1); got != b {
		t.Errorf("Remove(1) = %v, want b", got)
	}
	if f.IndexOf(b.ID) != -1 || len(f.Children) != 2 {
		t.Error("b still present after Remove")
	}
}

func TestCloneMemberIsDeep(t *testing.T) {
	doc, _, group, inner := testDocument()
	inner.Image.EnqueueOperation(chunky.Rectangle{Rect: image.Rect(0, 0, 2, 2), Fill: pixdoc.Red})
	inner.Image.CommitChanges()

	clone := CloneMember(group).(*Folder)
	if clone.ID != group.ID || clone == group {
		t.Fatal("clone must keep the id but be a new value")
	}
	innerClone := clone.Children[0].(*Layer)
	if innerClone.Image == inner.Image {
		t.Fatal("clone shares the image value")
	}

	inner.Image.EnqueueOperation(chunky.Clear{})
	inner.Image.CommitChanges()
	if got := innerClone.Image.GetCommittedPixel(image.Pt(1, 1)); got != pixdoc.Red {
		t.Errorf("clone pixel = %v, want red", got)
	}
	DisposeMember(clone)
	if !innerClone.Image.IsDisposed() {
		t.Error("DisposeMember did not dispose the clone's image")
	}
	if inner.Image.IsDisposed() {
		t.Error("disposing the clone disposed the original")
	}
	doc.Dispose()
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Layer 1 ", "Layer 1"},
		{"a\tb\nc", "a b c"},
		{"e\u0301", "\u00e9"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
