// Package host holds the console side of running droneq as a long lived
// process or an installed service.
package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/droneq/droneq/internal/utils"
)

const helpText = `Usage: droneq [command]

  (no command)        open the queue view
  serve               run the queue daemon and HTTP API
  list                print the queue
  add <link>          queue a release
  grab <id>...        push delayed items to their download client
  rm <id>...          remove items (--blacklist to block re-adding)
  status <id> <s>     record a status reported by a download client
  service install     register droneq as a host service
  service help        show this help
`

// Console writes host diagnostics to Out.
type Console struct {
	Out io.Writer

	// notify is swapped in tests
	notify func(c chan<- os.Signal, sig ...os.Signal)
}

// NewConsole returns a console writing to stdout.
func NewConsole() *Console {
	return &Console{Out: os.Stdout, notify: signal.Notify}
}

// WaitForClose blocks until the process receives SIGINT or SIGTERM, or ctx
// is done. It does not return otherwise.
func (c *Console) WaitForClose(ctx context.Context) {
	notify := c.notify
	if notify == nil {
		notify = signal.Notify
	}
	sigCh := make(chan os.Signal, 1)
	notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		utils.Debug("host: received %v, closing", sig)
	case <-ctx.Done():
	}
}

// PrintHelp prints the command summary.
func (c *Console) PrintHelp() {
	utils.Debug("Printing Help")
	_, _ = fmt.Fprint(c.out(), helpText)
}

// PrintServiceAlreadyExist reports an install that collides with an
// existing service name.
func (c *Console) PrintServiceAlreadyExist(name string) {
	_, _ = fmt.Fprintf(c.out(), "A service with the same name (%s) already exists. Aborting installation\n", name)
}

func (c *Console) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}
