package cli

import (
	"bufio"
	"context"
	"io"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/client/client"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/client/config"
)

// App carries what every vaultadm command needs: configuration, terminal
// streams and a way to reach the server.
type App struct {
	config     *config.Config
	configPath string
	in         *bufio.Reader
	out        io.Writer
	tokens     *TokenStore

	// dial is swapped in tests.
	dial func(addr string) (client.Client, error)
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		in:   bufio.NewReader(in),
		out:  out,
		dial: dialGRPC,
	}
}

func dialGRPC(addr string) (client.Client, error) {
	return client.NewGRPCClient(addr)
}

// connect dials the server. With authenticated set, the saved session token
// is attached and a missing or expired token fails before any call is made.
func (a *App) connect(authenticated bool) (client.Client, error) {
	var token string
	if authenticated {
		var err error
		token, err = a.tokens.Load(a.config.ServerEndpointAddr)
		if err != nil {
			return nil, err
		}
	}

	c, err := a.dial(a.config.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	if token != "" {
		c.SetAccessToken(token)
	}
	return c, nil
}

func (a *App) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.config.CallTimeout)
}
