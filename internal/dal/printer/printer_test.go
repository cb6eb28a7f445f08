package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/receipt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrinter accepts raw 9100-style connections and collects the bytes of
// each one.
type fakePrinter struct {
	ln   net.Listener
	jobs chan []byte
}

func newFakePrinter(t *testing.T) *fakePrinter {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	p := &fakePrinter{ln: ln, jobs: make(chan []byte, 16)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				data, _ := io.ReadAll(conn)
				p.jobs <- data
			}()
		}
	}()

	return p
}

func (p *fakePrinter) iface() string {
	return "tcp://" + p.ln.Addr().String()
}

func testDoc() receipt.Document {
	return receipt.NewBuilder("test").Line("hello").Cut().Document()
}

func TestTransport_ExecuteOverTCP(t *testing.T) {
	fp := newFakePrinter(t)
	tr, err := NewTransport(Config{Name: "fake", Interface: fp.iface(), Timeout: time.Second})
	require.NoError(t, err)

	require.NoError(t, tr.Execute(context.Background(), testDoc()))

	select {
	case job := <-fp.jobs:
		assert.True(t, bytes.Contains(job, []byte("hello\n")))
	case <-time.After(2 * time.Second):
		t.Fatal("printer received nothing")
	}
}

func TestTransport_IsConnected(t *testing.T) {
	fp := newFakePrinter(t)
	tr, err := NewTransport(Config{Interface: fp.iface(), Timeout: time.Second})
	require.NoError(t, err)
	assert.True(t, tr.IsConnected(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	down, err := NewTransport(Config{Interface: "tcp://" + addr, Timeout: time.Second})
	require.NoError(t, err)
	assert.False(t, down.IsConnected(context.Background()))
}

func TestTransport_ProbeHonoursTimeout(t *testing.T) {
	tr := &Transport{
		cfg:     Config{Name: "stuck", Timeout: 50 * time.Millisecond},
		encoder: newEncoder(Config{}),
		open: func(ctx context.Context) (io.WriteCloser, error) {
			time.Sleep(time.Second)

			return nil, io.EOF
		},
	}

	start := time.Now()
	assert.False(t, tr.IsConnected(context.Background()))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestTransport_UnsupportedDirectiveSendsNothing(t *testing.T) {
	fp := newFakePrinter(t)
	tr, err := NewTransport(Config{Interface: fp.iface(), Timeout: time.Second, BarcodeEnabled: false})
	require.NoError(t, err)

	doc := receipt.NewBuilder("label").Line("x").Barcode("ABC", receipt.SymbologyCode128, "ID: ABC").Document()
	err = tr.Execute(context.Background(), doc)

	var unsupported *apperr.UnsupportedDirectiveError
	require.ErrorAs(t, err, &unsupported)

	select {
	case job := <-fp.jobs:
		t.Fatalf("unexpected job of %d bytes", len(job))
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTransport_FileDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lp0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	tr, err := NewTransport(Config{Interface: "file://" + path, Family: FamilyStar, PaperSizeMM: 58})
	require.NoError(t, err)
	require.True(t, tr.IsConnected(context.Background()))
	require.NoError(t, tr.Execute(context.Background(), testDoc()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("hello\n")))

	missing, err := NewTransport(Config{Interface: "file://" + filepath.Join(t.TempDir(), "none")})
	require.NoError(t, err)
	assert.False(t, missing.IsConnected(context.Background()))
}

func TestNewTransport_InvalidInterface(t *testing.T) {
	for _, iface := range []string{"printer:TM-T20", "tcp://", "file://", "::bad"} {
		_, err := NewTransport(Config{Interface: iface})
		assert.ErrorIs(t, err, ErrInvalidInterface, iface)
	}
}

func TestInfoAndColumns(t *testing.T) {
	tr, err := NewTransport(Config{Name: "TM", Interface: "tcp://127.0.0.1:9100", Family: ParseFamily("star"), PaperSizeMM: 58})
	require.NoError(t, err)

	assert.Equal(t, Info{Name: "TM", Type: "STAR", PaperSize: "58mm"}, tr.Info())
	assert.Equal(t, 32, Columns(58))
	assert.Equal(t, 48, Columns(80))
	assert.Equal(t, FamilyEpson, ParseFamily("whatever"))
}
