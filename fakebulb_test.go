package yeelight_test

import (
	"bufio"
	"net"
	"strconv"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/wufe/yeelight"
)

// fakeBulb accepts connections on loopback and hands each received line to
// handle, writing back whatever handle returns. An empty answer means the
// bulb stays silent until the client hangs up.
type fakeBulb struct {
	listener net.Listener
	received chan string
	closed   chan struct{}
}

func startFakeBulb(handle func(line string) string) *fakeBulb {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	b := &fakeBulb{
		listener: listener,
		received: make(chan string, 64),
		closed:   make(chan struct{}, 64),
	}
	ginkgo.DeferCleanup(listener.Close)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go b.serve(conn, handle)
		}
	}()
	return b
}

func (b *fakeBulb) serve(conn net.Conn, handle func(string) string) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	b.received <- line
	if answer := handle(line); answer != "" {
		_, _ = conn.Write([]byte(answer + "\r\n"))
	}
	// Wait for the client to hang up.
	_, _ = reader.ReadByte()
	b.closed <- struct{}{}
}

func (b *fakeBulb) device() yeelight.Device {
	addr := b.listener.Addr().(*net.TCPAddr)
	return yeelight.Device{
		ID:   "fake-" + strconv.Itoa(addr.Port),
		IP:   addr.IP.String(),
		Port: addr.Port,
	}
}

func silent(string) string { return "" }

func okReply(string) string { return `{"id":1,"result":["ok"]}` }

// closedPortDevice returns a device whose port nobody listens on.
func closedPortDevice() yeelight.Device {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	port := listener.Addr().(*net.TCPAddr).Port
	gomega.Expect(listener.Close()).To(gomega.Succeed())
	return yeelight.Device{ID: "gone", IP: "127.0.0.1", Port: port}
}

// startHangUpBulb writes answer without a line terminator and closes the
// connection straight away.
func startHangUpBulb(answer string) yeelight.Device {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
	ginkgo.DeferCleanup(listener.Close)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
					return
				}
				_, _ = conn.Write([]byte(answer))
			}()
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)
	return yeelight.Device{ID: "hangup", IP: addr.IP.String(), Port: addr.Port}
}
