package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/linekeeper/linekeeper/internal/client/api"
	"github.com/linekeeper/linekeeper/internal/client/cache"
	"github.com/linekeeper/linekeeper/internal/client/config"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	client   *api.Client
	cache    *cache.Cache
	identity string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	secretCache, err := cache.Open(ctx, c.CachePath)
	if err != nil {
		log.Printf("error initializing cache: %s", err.Error())
		return nil, err
	}

	return &App{
		config: c,
		client: api.NewClient(c.ServerEndpointAddr),
		cache:  secretCache,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.cache.Close() }()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.identity != ""
}
