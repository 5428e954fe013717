// Package wsdisplay shows rendered frames in a browser. Frames are pushed
// as JPEG images over a websocket to every connected viewer.
package wsdisplay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/user/posestream/pkg/ports"
)

// Defaults for Options fields left at zero.
const (
	DefaultQuality      = 80
	DefaultWriteTimeout = 2 * time.Second
)

// Options configures a Display.
type Options struct {
	Quality      int
	WriteTimeout time.Duration
}

// Display implements ports.Display with an embedded HTTP server.
type Display struct {
	addr     string
	renderer ports.Renderer
	logger   ports.Logger
	opts     Options
	upgrader websocket.Upgrader

	mu         sync.Mutex
	clients    map[*viewer]struct{}
	server     *http.Server
	listener   net.Listener
	fullscreen bool
}

// viewer is one connected browser. send holds at most the newest frame.
type viewer struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (v *viewer) close() {
	v.once.Do(func() {
		close(v.done)
		_ = v.conn.Close()
	})
}

// New creates a Display that will listen on addr once opened.
func New(addr string, renderer ports.Renderer, logger ports.Logger, opts Options) *Display {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	return &Display{
		addr:     addr,
		renderer: renderer,
		logger:   logger.WithComponent("wsdisplay"),
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*viewer]struct{}),
	}
}

// Open starts the HTTP server.
func (d *Display) Open(ctx context.Context, fullscreen bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.server != nil {
		return fmt.Errorf("display already open")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", d.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.addr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", d.servePage)
	mux.HandleFunc("/ws", d.serveWS)

	d.fullscreen = fullscreen
	d.listener = ln
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	d.server = srv

	// Close may clear d.server before this goroutine runs.
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Warn("Display server stopped: %v", err)
		}
	}()

	d.logger.Info("Display available at http://%s/", ln.Addr())
	return nil
}

// Addr returns the listening address, or "" before Open.
func (d *Display) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Viewers returns the number of connected viewers.
func (d *Display) Viewers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

// Show encodes frame and queues it for every viewer. A viewer that has
// not taken the previous frame yet gets it replaced, so Show never waits
// on the network.
func (d *Display) Show(ctx context.Context, frame image.Image, info ports.DisplayInfo) error {
	if d.Viewers() == 0 {
		return nil
	}

	if info.Caption != "" {
		canvas := d.renderer.CanvasFrom(frame)
		canvas.DrawText(info.Caption, 10, 16, ports.TextStyle{
			FontSize: 14,
			Color:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
			Align:    ports.AlignLeft,
		})
		frame = canvas.ToImage()
	}

	data, err := d.renderer.EncodeImage(frame, ports.FormatJPEG, d.opts.Quality)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", info.FrameNumber, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for v := range d.clients {
		select {
		case v.send <- data:
		default:
			select {
			case <-v.send:
			default:
			}
			select {
			case v.send <- data:
			default:
			}
		}
	}
	return nil
}

// Close disconnects every viewer and stops the server.
func (d *Display) Close() error {
	d.mu.Lock()
	server := d.server
	clients := d.clients
	d.clients = make(map[*viewer]struct{})
	d.server = nil
	d.listener = nil
	d.mu.Unlock()

	for v := range clients {
		v.close()
	}
	if server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

func (d *Display) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Debug("Websocket upgrade failed: %v", err)
		return
	}

	v := &viewer{conn: conn, send: make(chan []byte, 1), done: make(chan struct{})}
	d.mu.Lock()
	if d.server == nil {
		d.mu.Unlock()
		_ = conn.Close()
		return
	}
	d.clients[v] = struct{}{}
	n := len(d.clients)
	d.mu.Unlock()
	d.logger.Debug("Viewer connected from %s (%d connected)", r.RemoteAddr, n)

	go d.writeLoop(v)
	d.readLoop(v)
}

// readLoop discards incoming messages and unregisters the viewer when
// the connection goes away.
func (d *Display) readLoop(v *viewer) {
	defer d.drop(v)
	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Debug("Viewer read failed: %v", err)
			}
			return
		}
	}
}

func (d *Display) writeLoop(v *viewer) {
	defer d.drop(v)
	for {
		select {
		case <-v.done:
			return
		case data := <-v.send:
			_ = v.conn.SetWriteDeadline(time.Now().Add(d.opts.WriteTimeout))
			if err := v.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				d.logger.Debug("Viewer write failed: %v", err)
				return
			}
		}
	}
}

func (d *Display) drop(v *viewer) {
	d.mu.Lock()
	delete(d.clients, v)
	d.mu.Unlock()
	v.close()
}

func (d *Display) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	d.mu.Lock()
	fit := "max-width:100%;max-height:100vh"
	if d.fullscreen {
		fit = "width:100vw;height:100vh;object-fit:contain"
	}
	d.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprintf(w, page, fit)
}

const page = `<!DOCTYPE html>
<html>
<head>
<title>posestream</title>
<style>body{margin:0;background:#000;display:flex;justify-content:center}img{%s}</style>
</head>
<body>
<img id="frame" alt="">
<script>
const img = document.getElementById("frame");
function connect() {
  const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.binaryType = "blob";
  ws.onmessage = (e) => {
    const url = URL.createObjectURL(e.data);
    img.onload = () => URL.revokeObjectURL(url);
    img.src = url;
  };
  ws.onclose = () => setTimeout(connect, 1000);
}
connect();
</script>
</body>
</html>
`

var _ ports.Display = (*Display)(nil)
