// SPDX-License-Identifier: Unlicense OR MIT

package headless

import (
	"bytes"
	"context"
	"flag"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"

	"gearvrf.org/surface/app"
	"gearvrf.org/surface/egl"
)

var dumpImages = flag.Bool("saveimages", false, "save test images")

func fill(img *image.RGBA, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func newSurface(t *testing.T, width, height int) *Binding {
	t.Helper()
	b := New()
	if err := b.OpenDisplay(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateContext(); err != nil {
		t.Fatal(err)
	}
	if err := b.CreateSurface(1, width, height); err != nil {
		t.Fatal(err)
	}
	if err := b.MakeCurrent(); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestSwap(t *testing.T) {
	b := newSurface(t, 16, 8)
	if img := b.Screenshot(); img.RGBAAt(0, 0) != (color.RGBA{}) {
		t.Errorf("new surface not cleared: %v", img.RGBAAt(0, 0))
	}
	fill(b.Framebuffer(), colornames.Tomato)
	if img := b.Screenshot(); img.RGBAAt(0, 0) != (color.RGBA{}) {
		t.Error("back buffer visible before swap")
	}
	if err := b.Swap(); err != nil {
		t.Fatal(err)
	}
	img := b.Screenshot()
	if sz := img.Bounds().Size(); sz != (image.Point{X: 16, Y: 8}) {
		t.Errorf("got %v screenshot", sz)
	}
	if got := img.RGBAAt(15, 7); got != colornames.Tomato {
		t.Errorf("got color %v, expected %v", got, colornames.Tomato)
	}
	if n := b.Swaps(); n != 1 {
		t.Errorf("got %d swaps", n)
	}
}

func TestResizeKeepsContent(t *testing.T) {
	b := newSurface(t, 4, 4)
	fill(b.Framebuffer(), colornames.Teal)
	if err := b.Swap(); err != nil {
		t.Fatal(err)
	}
	if err := b.CreateSurface(2, 12, 6); err != nil {
		t.Fatal(err)
	}
	if err := b.MakeCurrent(); err != nil {
		t.Fatal(err)
	}
	fb := b.Framebuffer()
	if sz := fb.Bounds().Size(); sz != (image.Point{X: 12, Y: 6}) {
		t.Fatalf("got %v framebuffer", sz)
	}
	if got := fb.RGBAAt(6, 3); got != colornames.Teal {
		t.Errorf("got color %v after resize, expected %v", got, colornames.Teal)
	}
}

func TestErrors(t *testing.T) {
	b := New()
	if err := b.MakeCurrent(); err == nil {
		t.Error("MakeCurrent without a context succeeded")
	}
	if _, err := b.CreateContext(); err != nil {
		t.Fatal(err)
	}
	if err := b.CreateSurface(1, 0, 10); err == nil {
		t.Error("empty surface created")
	}
	if err := b.MakeCurrent(); err == nil {
		t.Error("MakeCurrent without a surface succeeded")
	}
	if got := b.DriverIdentity(); got != Identity {
		t.Errorf("got identity %q", got)
	}
	b.TerminateDisplay()
	if got := b.DriverIdentity(); got != "" {
		t.Errorf("got identity %q without a context", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("CreateSurface without a context did not panic")
		}
	}()
	b.CreateSurface(1, 1, 1)
}

// painter fills each frame with the next color.
type painter struct {
	b      *Binding
	colors []color.RGBA
	sizes  chan image.Point
}

func (p *painter) OnSurfaceCreated(egl.Info) {}

func (p *painter) OnSurfaceChanged(width, height int) {
	p.sizes <- image.Point{X: width, Y: height}
}

func (p *painter) OnDrawFrame(f app.Frame) {
	fill(p.b.Framebuffer(), p.colors[int(f.Seq-1)%len(p.colors)])
}

func TestSurfaceView(t *testing.T) {
	b := New()
	p := &painter{
		b:      b,
		colors: []color.RGBA{colornames.Red, colornames.Green, colornames.Blue},
		sizes:  make(chan image.Point, 4),
	}
	v, err := app.NewSurfaceView(p, b, app.WithRenderMode(app.OnDemand))
	if err != nil {
		t.Fatal(err)
	}
	if err := v.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer v.RequestExitAndWait()

	v.SurfaceCreated(1, 64, 32)
	if sz := <-p.sizes; sz != (image.Point{X: 64, Y: 32}) {
		t.Errorf("got size %v", sz)
	}
	v.WindowResized(32, 32)
	if sz := <-p.sizes; sz != (image.Point{X: 32, Y: 32}) {
		t.Errorf("got size %v", sz)
	}
	// WindowResized returns after the frame at the new size.
	img := b.Screenshot()
	if got := img.RGBAAt(31, 31); got != colornames.Green {
		t.Errorf("got color %v, expected %v", got, colornames.Green)
	}
	if *dumpImages {
		if err := saveImage(t.Name()+".png", img); err != nil {
			t.Error(err)
		}
	}
}

func saveImage(file string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(file, buf.Bytes(), 0o666)
}
