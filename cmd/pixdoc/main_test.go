package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/config"
	"github.com/gogpu/pixdoc/document"
	"github.com/gogpu/pixdoc/render"
	"github.com/gogpu/pixdoc/session"
)

const scene = `
[document]
width  = 16
height = 16

[[step]]
do   = "layer"
name = "bg"

[[step]]
do     = "rect"
member = "bg"
rect   = [0, 0, 16, 16]
fill   = "#0000FF"

[[step]]
do   = "folder"
name = "fx"

[[step]]
do     = "layer"
name   = "dot"
parent = "fx"

[[step]]
do     = "line"
member = "dot"
points = [[0, 0], [3, 0]]
color  = "#FF0000"

[[step]]
do      = "opacity"
member  = "fx"
opacity = 1.0
`

func openScript(t *testing.T, text string) (*session.Session, *runner) {
	t.Helper()
	script, err := ParseScript(text)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.ChunkSize = 8
	cfg.Document = config.Document{Width: script.Document.Width, Height: script.Document.Height}
	s, err := session.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	r := newRunner(s, script.dir)
	if err := r.Run(context.Background(), script.Steps); err != nil {
		t.Fatal(err)
	}
	return s, r
}

func names(f *document.Folder) []string {
	var out []string
	for _, m := range f.Children {
		out = append(out, m.Base().Name)
	}
	return out
}

func TestRunScript(t *testing.T) {
	s, r := openScript(t, scene)

	if diff := cmp.Diff([]string{"bg", "fx"}, names(s.Document().Root)); diff != "" {
		t.Errorf("root children mismatch (-want +got):\n%s", diff)
	}
	fx := s.Document().MustFindFolder(r.ids["fx"])
	if diff := cmp.Diff([]string{"dot"}, names(fx)); diff != "" {
		t.Errorf("folder children mismatch (-want +got):\n%s", diff)
	}

	img, err := s.Render(context.Background(), render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		at   image.Point
		want pixdoc.Color
	}{
		{image.Pt(0, 0), pixdoc.Red},
		{image.Pt(3, 0), pixdoc.Red},
		{image.Pt(4, 0), pixdoc.Blue},
		{image.Pt(15, 15), pixdoc.Blue},
	}
	for _, tt := range tests {
		if got := pixdoc.FromColor(img.At(tt.at.X, tt.at.Y)); got != tt.want {
			t.Errorf("pixel %v = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestRunScriptUndoAndRename(t *testing.T) {
	s, r := openScript(t, scene+`
[[step]]
do = "boundary"

[[step]]
do     = "rect"
member = "bg"
rect   = [0, 0, 16, 16]
fill   = "#00FF00"

[[step]]
do = "undo"

[[step]]
do     = "rename"
member = "bg"
to     = "background"
`)
	img, err := s.Render(context.Background(), render.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := pixdoc.FromColor(img.At(8, 8)); got != pixdoc.Blue {
		t.Errorf("pixel after undo = %v, want blue", got)
	}
	if got := s.Document().MustFindMember(r.ids["background"]).Base().Name; got != "background" {
		t.Errorf("name = %q, want background", got)
	}
}

func TestRunScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		step string
		want string
	}{
		{"unknown member", `do = "rect"` + "\nmember = \"nope\"\nrect = [0, 0, 1, 1]", "unknown member"},
		{"unknown step", `do = "spin"` + "\nmember = \"bg\"", "unknown step"},
		{"bad rect", `do = "rect"` + "\nmember = \"bg\"\nrect = [0, 0]", "rect wants"},
		{"bad color", `do = "rect"` + "\nmember = \"bg\"\nrect = [0, 0, 1, 1]\nfill = \"#XYZ\"", ""},
		{"duplicate name", `do = "layer"` + "\nname = \"bg\"", "already exists"},
		{"bad anchor", `do = "resize_canvas"` + "\nsize = [4, 4]\nanchor = \"middle\"", "unknown anchor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := ParseScript("[[step]]\ndo = \"layer\"\nname = \"bg\"\n\n[[step]]\n" + tt.step)
			if err != nil {
				t.Fatal(err)
			}
			cfg := config.Default()
			s, err := session.Open(cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			err = newRunner(s, ".").Run(context.Background(), script.Steps)
			if err == nil {
				t.Fatal("Run() succeeded")
			}
			if !strings.Contains(err.Error(), "step 2") || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %q, want step 2 and %q", err, tt.want)
			}
		})
	}
}

func TestParseScriptUnknownKey(t *testing.T) {
	if _, err := ParseScript("[[step]]\ndo = \"undo\"\nwhat = 1\n"); err == nil {
		t.Error("ParseScript() accepted an unknown key")
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() { pixdoc.SetLogger(nil) })
	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("pixdoc %v: %v\n%s", args, err, errOut.String())
	}
	return out.String()
}

func writeScript(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	if err := os.WriteFile(path, []byte(scene), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "pixdoc.toml")
	if err := os.WriteFile(cfg, []byte("chunk_size = 8\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeScript(t)
	out := filepath.Join(filepath.Dir(path), "out.png")
	execute(t, "run", path, "--out", out, "--config", filepath.Join(filepath.Dir(path), "pixdoc.toml"))

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Errorf("bounds = %v, want 16x16", img.Bounds())
	}
	if got := color.NRGBAModel.Convert(img.At(1, 0)); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v, want red", got)
	}
}

func TestGraphCommand(t *testing.T) {
	path := writeScript(t)
	dot := execute(t, "graph", path)
	for _, want := range []string{"digraph G {", `label="Layer: bg"`, `label="Folder: fx"`, `label="Layer: dot"`, `label="Output"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output lacks %s:\n%s", want, dot)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	if got := execute(t, "version"); got != "pixdoc "+pixdoc.Version+"\n" {
		t.Errorf("version = %q", got)
	}
}
