package wsdisplay

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/posestream/pkg/adapters/ggrenderer"
	"github.com/user/posestream/pkg/adapters/logger"
	"github.com/user/posestream/pkg/ports"
)

func openDisplay(t *testing.T) *Display {
	t.Helper()
	d := New("127.0.0.1:0", ggrenderer.New(), logger.NewNoop(), Options{})
	if err := d.Open(context.Background(), false); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func connect(t *testing.T, d *Display) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+d.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for d.Viewers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func TestDisplay_PushesJPEG(t *testing.T) {
	d := openDisplay(t)
	conn := connect(t, d)

	if err := d.Show(context.Background(), solid(64, 32), ports.DisplayInfo{FrameNumber: 1}); err != nil {
		t.Fatalf("Show failed: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Errorf("expected binary message, got %d", kind)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("expected 64x32 frame, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDisplay_Caption(t *testing.T) {
	d := openDisplay(t)
	conn := connect(t, d)

	frame := image.NewRGBA(image.Rect(0, 0, 200, 40))
	for i := 3; i < len(frame.Pix); i += 4 {
		frame.Pix[i] = 0xff
	}
	_ = d.Show(context.Background(), frame, ports.DisplayInfo{FrameNumber: 7, Caption: "Frame 7 | 1 people"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	img, _ := jpeg.Decode(bytes.NewReader(data))

	bright := false
	for y := 8; y < 24 && !bright; y++ {
		for x := 10; x < 120; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0x8000 {
				bright = true
				break
			}
		}
	}
	if !bright {
		t.Error("expected caption pixels in the frame")
	}
	// The caller's frame is left untouched.
	if frame.RGBAAt(20, 16) != (color.RGBA{A: 255}) {
		t.Error("expected the source frame to stay black")
	}
}

func TestDisplay_ShowWithoutViewers(t *testing.T) {
	d := openDisplay(t)
	if err := d.Show(context.Background(), solid(8, 8), ports.DisplayInfo{}); err != nil {
		t.Errorf("expected nil without viewers, got %v", err)
	}
}

func TestDisplay_ServesPage(t *testing.T) {
	d := openDisplay(t)

	resp, err := http.Get("http://" + d.Addr() + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/ws") {
		t.Error("expected the page to open the websocket")
	}

	resp2, err := http.Get("http://" + d.Addr() + "/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp2.StatusCode)
	}
}

func TestDisplay_OpenErrors(t *testing.T) {
	d := openDisplay(t)
	if err := d.Open(context.Background(), false); err == nil {
		t.Error("expected error opening twice")
	}

	busy := New(d.Addr(), ggrenderer.New(), logger.NewNoop(), Options{})
	if err := busy.Open(context.Background(), false); err == nil {
		_ = busy.Close()
		t.Error("expected error on an address in use")
	}
}

func TestDisplay_CloseDisconnects(t *testing.T) {
	d := New("127.0.0.1:0", ggrenderer.New(), logger.NewNoop(), Options{})
	if err := d.Open(context.Background(), true); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	conn := connect(t, d)

	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed")
	}
	if d.Viewers() != 0 {
		t.Errorf("expected no viewers after Close, got %d", d.Viewers())
	}
}

func TestDisplay_CloseRightAfterOpen(t *testing.T) {
	for i := 0; i < 500; i++ {
		d := New("127.0.0.1:0", ggrenderer.New(), logger.NewNoop(), Options{})
		if err := d.Open(context.Background(), false); err != nil {
			t.Fatalf("Open %d failed: %v", i, err)
		}
		if err := d.Close(); err != nil {
			t.Fatalf("Close %d failed: %v", i, err)
		}
	}
}
