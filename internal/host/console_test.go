package host

import (
	"bytes"
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConsole_PrintServiceAlreadyExist(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Out: &buf}
	c.PrintServiceAlreadyExist("droneq")
	assert.Equal(t, "A service with the same name (droneq) already exists. Aborting installation\n", buf.String())
}

func TestConsole_PrintHelp(t *testing.T) {
	var buf bytes.Buffer
	c := &Console{Out: &buf}
	c.PrintHelp()
	assert.Contains(t, buf.String(), "service install")
	assert.Contains(t, buf.String(), "Usage: droneq")
}

func TestConsole_WaitForClose_Context(t *testing.T) {
	c := &Console{Out: &bytes.Buffer{}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.WaitForClose(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("returned before close was requested")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("did not return after context cancel")
	}
}

func TestConsole_WaitForClose_Signal(t *testing.T) {
	registered := make(chan chan<- os.Signal, 1)
	c := &Console{
		Out: &bytes.Buffer{},
		notify: func(ch chan<- os.Signal, sig ...os.Signal) {
			assert.ElementsMatch(t, []os.Signal{os.Interrupt, syscall.SIGTERM}, sig)
			registered <- ch
		},
	}

	done := make(chan struct{})
	go func() {
		c.WaitForClose(context.Background())
		close(done)
	}()

	ch := <-registered
	ch <- syscall.SIGTERM
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("did not return after SIGTERM")
	}
}
