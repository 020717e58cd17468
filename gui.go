package fontbake

import (
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/esimov/fontbake/utils"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

const (
	maxScreenX = 1366
	maxScreenY = 768
)

// Gui is the basic struct containing all of the information needed for the UI operation.
// It receives the partially packed atlas transferred through a channel which is called
// in a separate goroutine.
type Gui struct {
	cfg struct {
		window struct {
			w     float64
			h     float64
			title string
		}
	}
	proc struct {
		isDone bool
		img    image.Image

		wrk <-chan worker
	}
	cp  *Processor
	ctx layout.Context
}

// NewGUI initializes the Gio interface.
func NewGUI(w, h int, cp *Processor) *Gui {
	gui := &Gui{
		cp: cp,
		ctx: layout.Context{
			Ops: new(op.Ops),
			Constraints: layout.Constraints{
				Max: image.Pt(w, h),
			},
		},
	}
	gui.proc.wrk = atlasWorker
	gui.initWindow(w, h)

	return gui
}

// initWindow creates and initializes the GUI window.
func (g *Gui) initWindow(w, h int) {
	g.cfg.window.w, g.cfg.window.h = g.getWindowSize(float64(w), float64(h))
	g.cfg.window.title = "Atlas packing in progress..."
}

// getWindowSize returns the window dimension, maintaining the atlas aspect
// ratio in case it is greater than the predefined window.
func (g *Gui) getWindowSize(w, h float64) (float64, float64) {
	if w > maxScreenX || h > maxScreenY {
		r := utils.Min(maxScreenX/w, maxScreenY/h)
		w, h = w*r, h*r
	}
	return w, h
}

// Run is the core method of the Gio GUI application.
// This updates the window with the partially packed atlas received from a
// channel and terminates when the packing operation completes.
func (g *Gui) Run() error {
	w := app.NewWindow(app.Title(g.cfg.window.title), app.Size(
		unit.Dp(g.cfg.window.w),
		unit.Dp(g.cfg.window.h),
	))

	for {
		select {
		case e := <-w.Events():
			switch e := e.(type) {
			case system.FrameEvent:
				g.draw(w, e)
			case key.Event:
				switch e.Name {
				case key.NameEscape:
					w.Perform(system.ActionClose)
				}
			case system.DestroyEvent:
				if g.cp.Spinner != nil {
					g.cp.Spinner.RestoreCursor()
				}
				return e.Err
			}
		case res := <-g.proc.wrk:
			if res.done {
				g.proc.isDone = true
			}
			g.proc.img = res.img
			w.Invalidate()
		}
	}
}

// draw draws the packed atlas in the GUI window (obtained from a channel)
// and prints out a static message once the packing is done.
func (g *Gui) draw(win *app.Window, e system.FrameEvent) {
	g.ctx = layout.NewContext(g.ctx.Ops, e)
	win.Invalidate()

	paint.Fill(g.ctx.Ops, color.NRGBA{A: 0xff})

	if g.proc.img != nil {
		src := paint.NewImageOp(g.proc.img)
		src.Add(g.ctx.Ops)

		layout.Flex{
			Axis: layout.Horizontal,
		}.Layout(g.ctx,
			layout.Flexed(1, func(gtx C) D {
				return layout.UniformInset(unit.Dp(0)).Layout(gtx,
					func(gtx C) D {
						widget.Image{
							Src:   src,
							Scale: 1 / float32(g.ctx.Dp(unit.Dp(1))),
							Fit:   widget.Contain,
						}.Layout(gtx)

						return layout.Dimensions{Size: gtx.Constraints.Max}
					})
			}),
		)
	}

	if g.proc.isDone {
		bgcol := color.NRGBA{R: 15, G: 139, B: 141, A: 0xff}
		fgcol := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
		displayMessage(e, g.ctx, bgcol, fgcol, "Done, you may close this window!")
	}

	e.Frame(g.ctx.Ops)
}

// displayMessage shows a static message at the bottom of the preview window.
func displayMessage(e system.FrameEvent, ctx layout.Context, bgcol, fgcol color.NRGBA, msg string) {
	var th = material.NewTheme(gofont.Collection())
	th.Palette.Fg = fgcol
	paint.ColorOp{Color: bgcol}.Add(ctx.Ops)

	rect := image.Rectangle{
		Min: image.Point{X: 0, Y: e.Size.Y - 60},
		Max: image.Point{X: e.Size.X, Y: e.Size.Y},
	}
	defer clip.Rect(rect).Push(ctx.Ops).Pop()
	paint.PaintOp{}.Add(ctx.Ops)

	layout.Flex{
		Axis:      layout.Horizontal,
		Alignment: layout.Middle,
	}.Layout(ctx,
		layout.Flexed(1, func(gtx C) D {
			return layout.UniformInset(unit.Dp(4)).Layout(ctx, func(gtx C) D {
				return layout.S.Layout(ctx, func(gtx C) D {
					return material.Label(th, unit.Sp(24), msg).Layout(gtx)
				})
			})
		},
		))
}
