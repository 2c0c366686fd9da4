package serial

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

// memPort is an in-memory Port. Each Read returns the next chunk; when no
// chunks remain it behaves like an elapsed read timeout and advances clock.
type memPort struct {
	chunks  [][]byte
	readErr error
	written []byte
	resets  int
	drains  int
	closed  bool
	clock   *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (p *memPort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		if p.readErr != nil {
			return 0, p.readErr
		}
		p.clock.now = p.clock.now.Add(100 * time.Millisecond)
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	if n < len(p.chunks[0]) {
		p.chunks[0] = p.chunks[0][n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *memPort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *memPort) Close() error            { p.closed = true; return nil }
func (p *memPort) ResetInputBuffer() error { p.resets++; return nil }
func (p *memPort) Drain() error            { p.drains++; return nil }

func newTestTransport(chunks ...string) (*LineTransport, *memPort) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	port := &memPort{clock: clock}
	for _, c := range chunks {
		port.chunks = append(port.chunks, []byte(c))
	}
	lt := NewLineTransport(port, "/dev/test", time.Second)
	lt.now = clock.Now
	return lt, port
}

func TestReadLine(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{
			name:   "single line",
			chunks: []string{"OK\r\n"},
			want:   []string{"OK\r\n"},
		},
		{
			name:   "line split across reads",
			chunks: []string{"00", "01", "\r", "\n"},
			want:   []string{"0001\r\n"},
		},
		{
			name:   "two lines in one read",
			chunks: []string{"OK\r\nNG\r\n"},
			want:   []string{"OK\r\n", "NG\r\n"},
		},
		{
			name:   "empty line",
			chunks: []string{"\r\n"},
			want:   []string{"\r\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt, _ := newTestTransport(tt.chunks...)
			for i, want := range tt.want {
				got, err := lt.ReadLine()
				if err != nil {
					t.Fatalf("ReadLine() #%d error = %v", i, err)
				}
				if got != want {
					t.Errorf("ReadLine() #%d = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestReadLineTimeout(t *testing.T) {
	lt, _ := newTestTransport()

	_, err := lt.ReadLine()
	if !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("ReadLine() error = %v, want ErrReadTimeout", err)
	}
}

func TestReadLineKeepsPartialAfterTimeout(t *testing.T) {
	lt, port := newTestTransport("GRNO")

	if _, err := lt.ReadLine(); !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("first ReadLine() error = %v, want ErrReadTimeout", err)
	}

	port.chunks = append(port.chunks, []byte("REGD\r\n"))
	got, err := lt.ReadLine()
	if err != nil {
		t.Fatalf("second ReadLine() error = %v", err)
	}
	if got != "GRNOREGD\r\n" {
		t.Errorf("ReadLine() = %q, want %q", got, "GRNOREGD\r\n")
	}
}

func TestReadLinePortError(t *testing.T) {
	lt, port := newTestTransport()
	port.readErr = errors.New("device unplugged")

	_, err := lt.ReadLine()
	if err == nil || errors.Is(err, ErrReadTimeout) {
		t.Fatalf("ReadLine() error = %v, want port error", err)
	}
	if !errors.Is(err, port.readErr) {
		t.Errorf("error should wrap the port error, got %v", err)
	}
}

func TestFlushInputDropsPending(t *testing.T) {
	lt, port := newTestTransport("RX,0002,1A:stale\r\nOK\r\n")

	// Pull everything into the pending buffer
	if _, err := lt.ReadLine(); err != nil {
		t.Fatalf("ReadLine() error = %v", err)
	}

	if err := lt.FlushInput(); err != nil {
		t.Fatalf("FlushInput() error = %v", err)
	}
	if port.resets != 1 {
		t.Errorf("ResetInputBuffer called %d times, want 1", port.resets)
	}

	if _, err := lt.ReadLine(); !errors.Is(err, ErrReadTimeout) {
		t.Errorf("ReadLine() after flush error = %v, want ErrReadTimeout", err)
	}
}

func TestWriteAndFlush(t *testing.T) {
	lt, port := newTestTransport()

	n, err := lt.Write([]byte("ENWR\r\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 6 {
		t.Errorf("Write() = %d, want 6", n)
	}
	if err := lt.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if string(port.written) != "ENWR\r\n" {
		t.Errorf("written = %q, want %q", port.written, "ENWR\r\n")
	}
	if port.drains != 1 {
		t.Errorf("Drain called %d times, want 1", port.drains)
	}
}

func TestReadLines(t *testing.T) {
	lt, _ := newTestTransport("ID:1234\r\nSTNN:0001\r\n", "GRNO:ABCD\r\n")

	got, err := lt.ReadLines(0)
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}

	want := []string{"ID:1234\r\n", "STNN:0001\r\n", "GRNO:ABCD\r\n"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLines() = %q, want %q", got, want)
	}
}

func TestReadLinesCap(t *testing.T) {
	lt, _ := newTestTransport("a\r\nb\r\nc\r\n")

	got, err := lt.ReadLines(2)
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ReadLines(2) returned %d lines, want 2", len(got))
	}
}

func TestClose(t *testing.T) {
	lt, port := newTestTransport()
	if err := lt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !port.closed {
		t.Error("underlying port should be closed")
	}
}
