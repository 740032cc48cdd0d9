package main

import (
	"cmp"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/gogpu/pixdoc"
	"github.com/gogpu/pixdoc/changes"
	"github.com/gogpu/pixdoc/chunky"
	"github.com/gogpu/pixdoc/session"
)

// Script is an edit script: a canvas and the steps applied to it.
//
//	[document]
//	width  = 64
//	height = 64
//
//	[[step]]
//	do   = "layer"
//	name = "sky"
//
//	[[step]]
//	do     = "rect"
//	member = "sky"
//	rect   = [0, 0, 64, 32]
//	fill   = "#3080FF"
type Script struct {
	Document ScriptDocument `toml:"document"`
	Steps    []Step         `toml:"step"`

	dir string
}

// ScriptDocument overrides the configured canvas. Zero fields keep the
// configuration.
type ScriptDocument struct {
	Width     int `toml:"width"`
	Height    int `toml:"height"`
	ChunkSize int `toml:"chunk_size"`
}

// Step is one edit. Do selects the edit; the other fields are its
// arguments, unused ones are ignored.
type Step struct {
	Do string `toml:"do"`

	// Name is the name of a created member. Later steps refer to members
	// by name; "root" is the root folder.
	Name   string `toml:"name"`
	Member string `toml:"member"`
	Parent string `toml:"parent"`
	Index  *int   `toml:"index"`
	Mask   bool   `toml:"mask"`

	Rect   []int   `toml:"rect"`
	At     []int   `toml:"at"`
	Size   []int   `toml:"size"`
	Points [][]int `toml:"points"`

	Fill        string `toml:"fill"`
	Stroke      string `toml:"stroke"`
	StrokeWidth int    `toml:"stroke_width"`
	Color       string `toml:"color"`
	Paint       string `toml:"paint"`
	Blend       string `toml:"blend"`

	Opacity float64 `toml:"opacity"`
	Visible bool    `toml:"visible"`
	Clip    bool    `toml:"clip"`
	To      string  `toml:"to"`
	Text    string  `toml:"text"`
	Anchor  string  `toml:"anchor"`
	Image   string  `toml:"image"`
}

// LoadScript reads an edit script. Image paths in steps are relative to
// the script.
func LoadScript(path string) (*Script, error) {
	var s Script
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("script %s: unknown key %s", path, undecoded[0])
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// ParseScript decodes an edit script held in memory.
func ParseScript(data string) (*Script, error) {
	var s Script
	md, err := toml.Decode(data, &s)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("script: unknown key %s", undecoded[0])
	}
	s.dir = "."
	return &s, nil
}

var anchors = map[string]changes.Anchor{
	"top-left":     changes.AnchorTopLeft,
	"top":          changes.AnchorTop,
	"top-right":    changes.AnchorTopRight,
	"left":         changes.AnchorLeft,
	"center":       changes.AnchorCenter,
	"right":        changes.AnchorRight,
	"bottom-left":  changes.AnchorBottomLeft,
	"bottom":       changes.AnchorBottom,
	"bottom-right": changes.AnchorBottomRight,
}

// runner applies script steps to a session, tracking member names.
type runner struct {
	s   *session.Session
	dir string
	ids map[string]uuid.UUID
}

func newRunner(s *session.Session, dir string) *runner {
	return &runner{s: s, dir: dir, ids: map[string]uuid.UUID{"root": s.Document().Root.ID}}
}

// Run applies every step in order.
func (r *runner) Run(ctx context.Context, steps []Step) error {
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx, st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Do, err)
		}
		pixdoc.Logger().Debug("script: step done", "step", i+1, "do", st.Do)
	}
	return nil
}

func (r *runner) step(ctx context.Context, st Step) error {
	switch st.Do {
	case "layer", "folder":
		return r.create(ctx, st)
	case "undo":
		return r.s.Undo(ctx)
	case "redo":
		return r.s.Redo(ctx)
	case "boundary":
		return r.s.Boundary(ctx)
	case "select":
		rect, err := rectangle(st.Rect)
		if err != nil {
			return err
		}
		return r.s.Apply(ctx, changes.NewSetSelection(rect))
	case "resize_canvas", "resize_image":
		size, err := point(st.Size, "size")
		if err != nil {
			return err
		}
		if st.Do == "resize_image" {
			return r.s.Apply(ctx, changes.NewResizeImage(size))
		}
		anchor, ok := anchors[cmp.Or(st.Anchor, "top-left")]
		if !ok {
			return fmt.Errorf("unknown anchor %q", st.Anchor)
		}
		return r.s.Apply(ctx, changes.NewResizeCanvas(size, anchor))
	}

	id, err := r.member(st.Member)
	if err != nil {
		return err
	}
	switch st.Do {
	case "delete":
		return r.s.Apply(ctx, changes.NewDeleteMember(id))
	case "move":
		parent, index, err := r.destination(st)
		if err != nil {
			return err
		}
		return r.s.Apply(ctx, changes.NewMoveMember(id, parent, index))
	case "rename":
		if err := r.s.Apply(ctx, changes.NewRenameMember(id, st.To)); err != nil {
			return err
		}
		r.ids[st.To] = id
		return nil
	case "visible":
		return r.s.Apply(ctx, changes.NewSetVisibility(id, st.Visible))
	case "opacity":
		return r.s.Apply(ctx, changes.NewSetOpacity(id, st.Opacity))
	case "blend":
		mode, err := pixdoc.ParseBlendMode(st.Blend)
		if err != nil {
			return err
		}
		return r.s.Apply(ctx, changes.NewSetBlendMode(id, mode))
	case "clip":
		return r.s.Apply(ctx, changes.NewSetClipToBelow(id, st.Clip))
	case "add_mask":
		return r.s.Apply(ctx, changes.NewCreateMask(id))
	case "remove_mask":
		return r.s.Apply(ctx, changes.NewDeleteMask(id))
	}
	return r.draw(ctx, r.target(id, st), st)
}

func (r *runner) draw(ctx context.Context, t changes.Target, st Step) error {
	paint, err := parsePaint(st.Paint, st.Blend)
	if err != nil {
		return err
	}
	switch st.Do {
	case "clear":
		return r.s.Apply(ctx, changes.NewClearLayer(t))
	case "clear_selection":
		return r.s.Apply(ctx, changes.NewClearSelectedArea(t))
	case "rect", "ellipse":
		rect, err := rectangle(st.Rect)
		if err != nil {
			return err
		}
		style, err := shapeStyle(st, paint)
		if err != nil {
			return err
		}
		if st.Do == "rect" {
			return r.s.Apply(ctx, changes.NewDrawRectangle(t, rect, style))
		}
		return r.s.Apply(ctx, changes.NewDrawEllipse(t, rect, style))
	case "line":
		return r.line(ctx, t, st, paint)
	case "text":
		at, err := point(st.At, "at")
		if err != nil {
			return err
		}
		c, err := parseColor(st.Color, pixdoc.Black)
		if err != nil {
			return err
		}
		return r.s.Apply(ctx, changes.NewDrawText(t, st.Text, at, c, nil))
	case "paste":
		img, err := r.loadImage(st.Image)
		if err != nil {
			return err
		}
		var at image.Point
		if st.At != nil {
			if at, err = point(st.At, "at"); err != nil {
				return err
			}
		}
		return r.s.Apply(ctx, changes.NewPasteImage(t, img, at, paint))
	default:
		return fmt.Errorf("unknown step %q", st.Do)
	}
}

// line replays the points as a pencil stroke, the way a pointer drag
// would, and commits it as one undo entry.
func (r *runner) line(ctx context.Context, t changes.Target, st Step, paint chunky.Paint) error {
	if len(st.Points) == 0 {
		return fmt.Errorf("line needs points")
	}
	c, err := parseColor(st.Color, pixdoc.Black)
	if err != nil {
		return err
	}
	for i, raw := range st.Points {
		p, err := point(raw, "points")
		if err != nil {
			return err
		}
		start := func() changes.UpdateableChange { return changes.NewDrawLine(t, p, c, paint) }
		update := func(u changes.UpdateableChange) { u.(*changes.DrawLine).Update(p) }
		if i == 0 {
			update = nil
		}
		if err := r.s.StartOrUpdate(ctx, start, update); err != nil {
			return err
		}
	}
	return r.s.End(ctx)
}

func (r *runner) create(ctx context.Context, st Step) error {
	if st.Name == "" {
		return fmt.Errorf("%s needs a name", st.Do)
	}
	if _, ok := r.ids[st.Name]; ok {
		return fmt.Errorf("member %q already exists", st.Name)
	}
	parent, index, err := r.destination(st)
	if err != nil {
		return err
	}
	typ := changes.LayerMember
	if st.Do == "folder" {
		typ = changes.FolderMember
	}
	c := changes.NewCreateMember(parent, index, typ, st.Name)
	if err := r.s.Apply(ctx, c); err != nil {
		return err
	}
	r.ids[st.Name] = c.ID
	return nil
}

// destination resolves the parent folder and index of st. Without an
// index the member goes on top.
func (r *runner) destination(st Step) (uuid.UUID, int, error) {
	parent, err := r.member(cmp.Or(st.Parent, "root"))
	if err != nil {
		return uuid.Nil, 0, err
	}
	if st.Index != nil {
		return parent, *st.Index, nil
	}
	return parent, len(r.s.Document().MustFindFolder(parent).Children), nil
}

func (r *runner) member(name string) (uuid.UUID, error) {
	id, ok := r.ids[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown member %q", name)
	}
	return id, nil
}

func (r *runner) target(id uuid.UUID, st Step) changes.Target {
	if st.Mask {
		return changes.MaskTarget(id)
	}
	return changes.LayerTarget(id)
}

func (r *runner) loadImage(name string) (image.Image, error) {
	if name == "" {
		return nil, fmt.Errorf("paste needs an image")
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(r.dir, name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

func shapeStyle(st Step, paint chunky.Paint) (changes.ShapeStyle, error) {
	fill, err := parseColor(st.Fill, pixdoc.Transparent)
	if err != nil {
		return changes.ShapeStyle{}, err
	}
	stroke, err := parseColor(st.Stroke, pixdoc.Transparent)
	if err != nil {
		return changes.ShapeStyle{}, err
	}
	width := st.StrokeWidth
	if width == 0 && !stroke.IsTransparent() {
		width = 1
	}
	return changes.ShapeStyle{Fill: fill, Stroke: stroke, StrokeWidth: width, Paint: paint}, nil
}

func parsePaint(mode, blendName string) (chunky.Paint, error) {
	var p chunky.Paint
	switch strings.ToLower(mode) {
	case "", "blend":
		p.Mode = chunky.PaintBlend
	case "replace":
		p.Mode = chunky.PaintReplace
	case "erase":
		p.Mode = chunky.PaintErase
	default:
		return p, fmt.Errorf("unknown paint %q", mode)
	}
	if blendName != "" {
		b, err := pixdoc.ParseBlendMode(blendName)
		if err != nil {
			return p, err
		}
		p.Blend = b
	}
	return p, nil
}

func parseColor(s string, def pixdoc.Color) (pixdoc.Color, error) {
	if s == "" {
		return def, nil
	}
	return pixdoc.ParseHex(s)
}

func rectangle(v []int) (image.Rectangle, error) {
	if len(v) != 4 {
		return image.Rectangle{}, fmt.Errorf("rect wants [x0, y0, x1, y1], got %v", v)
	}
	return image.Rect(v[0], v[1], v[2], v[3]), nil
}

func point(v []int, field string) (image.Point, error) {
	if len(v) != 2 {
		return image.Point{}, fmt.Errorf("%s wants [x, y], got %v", field, v)
	}
	return image.Pt(v[0], v[1]), nil
}
