//go:build !headless

// Package window hosts sessions in an ebiten window. The game goroutine
// delivers frames, resizes and key presses, so every lifecycle call made
// from here is single-threaded.
package window

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"

	"audio-sphere/internal/frame"
	"audio-sphere/internal/raster"
)

// Controls is what key presses and window resizes drive.
type Controls interface {
	Toggle() error
	Resize(w, h int)
}

// Host is a frame scheduler and display backed by an ebiten game.
type Host struct {
	*frame.Manual

	title    string
	controls Controls
	next     func()

	attached bool
	pixels   []byte
	fbW, fbH int
	outW     int
	outH     int
	img      *ebiten.Image
	last     time.Time
}

// New returns a host for a window of w×h.
func New(title string, w, h int) *Host {
	return &Host{Manual: frame.NewManual(), title: title, outW: w, outH: h}
}

// Bind sets the session controls. next runs when the user asks for the
// following source and may be nil.
func (h *Host) Bind(c Controls, next func()) {
	h.controls = c
	h.next = next
}

// Run opens the window and blocks until it closes.
func (h *Host) Run() error {
	ebiten.SetWindowSize(h.outW, h.outH)
	ebiten.SetWindowTitle(h.title)
	ebiten.SetWindowResizable(true)
	err := ebiten.RunGame(h)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Attach implements the lifecycle display.
func (h *Host) Attach(w, ht int) error {
	h.attached = true
	return nil
}

// Present copies the finished frame for the next Draw.
func (h *Host) Present(fb *raster.FrameBuffer) error {
	if !h.attached {
		return errors.New("window: present while detached")
	}
	if cap(h.pixels) < len(fb.Color) {
		h.pixels = make([]byte, len(fb.Color))
	}
	h.pixels = h.pixels[:len(fb.Color)]
	copy(h.pixels, fb.Color)
	h.fbW, h.fbH = fb.Width, fb.Height
	return nil
}

// Detach implements the lifecycle display.
func (h *Host) Detach() error {
	h.attached = false
	h.pixels = h.pixels[:0]
	h.fbW, h.fbH = 0, 0
	return nil
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if h.controls != nil && inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := h.controls.Toggle(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Host.Update",
				"error":    err.Error(),
			}).Debug("toggle rejected")
		}
	}
	if h.next != nil && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		h.next()
	}

	now := time.Now()
	if h.last.IsZero() {
		h.last = now
	}
	h.Step(now.Sub(h.last))
	h.last = now
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.fbW == 0 || h.fbH == 0 {
		return
	}
	if h.img == nil || h.img.Bounds().Dx() != h.fbW || h.img.Bounds().Dy() != h.fbH {
		if h.img != nil {
			h.img.Deallocate()
		}
		h.img = ebiten.NewImage(h.fbW, h.fbH)
	}
	h.img.WritePixels(h.pixels)

	op := &ebiten.DrawImageOptions{}
	sb := screen.Bounds()
	op.GeoM.Scale(float64(sb.Dx())/float64(h.fbW), float64(sb.Dy())/float64(h.fbH))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(h.img, op)
}

// Layout implements ebiten.Game. A change in the outside size is forwarded
// to the controls before the next frame renders.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 && (outsideWidth != h.outW || outsideHeight != h.outH) {
		h.outW, h.outH = outsideWidth, outsideHeight
		if h.controls != nil {
			h.controls.Resize(outsideWidth, outsideHeight)
		}
	}
	return h.outW, h.outH
}

// Size returns the last window size seen by Layout.
func (h *Host) Size() (int, int) { return h.outW, h.outH }
