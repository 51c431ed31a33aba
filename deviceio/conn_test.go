package deviceio

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openastro/go-deviceio/logger"
)

// listenTCP returns a loopback listener and its port.
func listenTCP(t *testing.T) (net.Listener, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestOpenTCP_Loopback(t *testing.T) {
	ln, port := listenTCP(t)

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	c, err := OpenTCP("127.0.0.1", port)
	require.NoError(t, err)
	defer c.Close()

	assert.NotZero(t, c.ID())
	assert.Contains(t, c.Name(), strconv.Itoa(port))

	server := <-accepted
	defer server.Close()

	go func() { _, _ = server.Write([]byte("PONG\n")) }()

	line, err := c.ReadLine(64)
	require.NoError(t, err)
	assert.Equal(t, "PONG", line)
}

func TestOpenTCP_UnreachablePort(t *testing.T) {
	// Reserve a port, then free it so the connect is refused.
	ln, port := listenTCP(t)
	require.NoError(t, ln.Close())

	_, err := OpenTCP("127.0.0.1", port, WithTimeout(time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)

	// The failed open must not leak anything that blocks later opens.
	ln2, port2 := listenTCP(t)
	go func() {
		conn, err := ln2.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	c, err := OpenTCP("127.0.0.1", port2)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

func TestOpenTCP_ResolutionError(t *testing.T) {
	log := logger.NewMockLogger()
	log.On("Error", "deviceio: failed to resolve host", mock.Anything).Once()

	_, err := OpenTCP("device.does-not-resolve.invalid", 7624, WithLogger(log))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolution)
	log.AssertExpectations(t)
}

func TestOpenTCP_InvalidPort(t *testing.T) {
	for _, port := range []int{-1, 65536} {
		_, err := OpenTCP("127.0.0.1", port)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestOpenUDP_Loopback(t *testing.T) {
	server, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer server.Close()

	port := server.LocalAddr().(*net.UDPAddr).Port

	var traces []string
	c, err := OpenUDP("127.0.0.1", port,
		WithTracer(TracerFunc(func(text string) { traces = append(traces, text) })))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Printf("STATUS\n"))
	require.Len(t, traces, 1)
	assert.Contains(t, traces[0], "← STATUS")

	buf := make([]byte, 64)
	require.NoError(t, server.SetReadDeadline(time.Now().Add(time.Second)))
	n, clientAddr, err := server.ReadFromUDP(buf)
	require.NoError(t, err)
	assert.Equal(t, "STATUS\n", string(buf[:n]))

	// The connected socket receives replies from the fixed peer.
	_, err = server.WriteToUDP([]byte("READY"), clientAddr)
	require.NoError(t, err)

	reply := make([]byte, 5)
	n, err = c.ReadFull(reply)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "READY", string(reply))
}

func TestOpenSerial_InvalidConfig(t *testing.T) {
	_, err := OpenSerialWithConfig("/dev/ttyUSB0", "9600-8X1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestOpenSerial_BadPath(t *testing.T) {
	_, err := OpenSerial("/dev/nonexistent-tty-openastro")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpen)
}

func TestOpenSerialWithSpeed_BuildsConfig(t *testing.T) {
	// An unsupported numeric rate is rejected during validation, before
	// any device is touched.
	_, err := OpenSerialWithSpeed("/dev/ttyUSB0", 12345)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClose_NeverOpened(t *testing.T) {
	var c Conn
	assert.NoError(t, c.Close())

	var nilConn *Conn
	assert.NoError(t, nilConn.Close())
}

func TestClose_Idempotent(t *testing.T) {
	ln, port := listenTCP(t)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	c, err := OpenTCP("127.0.0.1", port)
	require.NoError(t, err)

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestOptions_Validation(t *testing.T) {
	_, err := OpenTCP("127.0.0.1", 1, WithTimeout(0))
	require.Error(t, err)

	_, err = OpenTCP("127.0.0.1", 1, WithRetryPause(-time.Second))
	require.Error(t, err)

	_, err = OpenTCP("127.0.0.1", 1, WithLogger(nil))
	require.Error(t, err)

	_, err = OpenTCP("127.0.0.1", 1, WithTracer(nil))
	require.Error(t, err)
}
