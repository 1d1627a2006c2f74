// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"gearvrf.org/surface/app"
	"gearvrf.org/surface/app/headless"
	"gearvrf.org/surface/egl"
	"gearvrf.org/surface/egl/native"
)

var (
	configPath = flag.String("config", "", "TOML configuration file")
	frames     = flag.Int("frames", 60, "frames to draw per view")
	views      = flag.Int("views", 2, "number of concurrent views")
	outDir     = flag.String("o", "", "directory for the final frame of each view (PNG)")
	width      = flag.Int("width", 64, "initial surface width")
	height     = flag.Int("height", 48, "initial surface height")
	probe      = flag.Bool("native", false, "describe the platform EGL context and exit")
	verbose    = flag.Bool("v", false, "log render thread transitions")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, mainUsage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if err := mainErr(); err != nil {
		fmt.Fprintf(os.Stderr, "surfacedemo: %v\n", err)
		os.Exit(1)
	}
}

func mainErr() error {
	logger, err := newLogger(*verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	app.SetLogger(logger)

	if *probe {
		return describeNative()
	}
	if *views <= 0 || *frames <= 0 {
		return errors.New("-views and -frames must be positive")
	}
	cfg := app.DefaultConfig()
	if *configPath != "" {
		if cfg, err = app.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < *views; i++ {
		i := i
		g.Go(func() error {
			return runView(ctx, logger, cfg, i)
		})
	}
	return g.Wait()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func describeNative() error {
	b, err := native.New()
	if err != nil {
		return err
	}
	if err := b.OpenDisplay(); err != nil {
		return err
	}
	defer b.TerminateDisplay()
	info, err := b.CreateContext()
	if err != nil {
		return err
	}
	fmt.Printf("vendor:  %s\nversion: %s\nclient:  OpenGL ES %d\n", info.Vendor, info.Version, info.ClientVersion)
	return nil
}

var palette = []color.RGBA{
	colornames.Crimson,
	colornames.Darkorange,
	colornames.Gold,
	colornames.Seagreen,
	colornames.Steelblue,
	colornames.Slateblue,
}

// filler paints each frame in the next palette color.
type filler struct {
	b        *headless.Binding
	offset   int
	rendered chan struct{}
}

func (f *filler) OnSurfaceCreated(egl.Info) {}

func (f *filler) OnSurfaceChanged(width, height int) {}

func (f *filler) OnDrawFrame(fr app.Frame) {
	fb := f.b.Framebuffer()
	c := palette[(f.offset+int(fr.Seq))%len(palette)]
	draw.Draw(fb, fb.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (f *filler) OnFrameRendered(app.FrameParams) {
	select {
	case f.rendered <- struct{}{}:
	default:
	}
}

func runView(ctx context.Context, logger *zap.Logger, cfg app.Config, idx int) error {
	b := headless.New()
	r := &filler{b: b, offset: idx, rendered: make(chan struct{}, 1)}
	v, err := app.NewSurfaceView(r, b, app.WithConfig(cfg))
	if err != nil {
		return err
	}
	if err := v.Start(ctx); err != nil {
		return err
	}
	defer v.RequestExitAndWait()

	w, h := *width, *height
	v.SurfaceCreated(egl.Window(idx+1), w, h)
	if err := drawFrames(ctx, v, r, uint64(*frames/2)); err != nil {
		return err
	}
	v.Pause()
	v.Resume()
	v.WindowResized(w*2, h*2)
	if err := drawFrames(ctx, v, r, uint64(*frames)); err != nil {
		return err
	}
	v.SurfaceDestroyed()
	if err := v.RequestExitAndWait(); err != nil {
		return fmt.Errorf("view %d: %w", idx, err)
	}
	logger.Info("view done", zap.Int("view", idx), zap.Uint64("frames", v.Frames()), zap.Int("swaps", b.Swaps()))
	if *outDir == "" {
		return nil
	}
	return saveImage(filepath.Join(*outDir, fmt.Sprintf("view%d.png", idx)), b.Screenshot())
}

// drawFrames waits until v has drawn n frames, requesting them in
// on-demand mode.
func drawFrames(ctx context.Context, v *app.SurfaceView, r *filler, n uint64) error {
	for v.Frames() < n {
		if err := v.Err(); err != nil {
			return err
		}
		if v.RenderMode() == app.OnDemand {
			v.RequestRender(app.FrameParams{Tag: int64(v.Frames())})
		}
		select {
		case <-r.rendered:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func saveImage(file string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%s: no frame presented", file)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return os.WriteFile(file, buf.Bytes(), 0o666)
}
