// Command bonvanctl inspects and repairs the dashboard's persisted slots.
//
// It opens the same store as the server, from the same configuration, so
// run it against a stopped server when the driver is sqlite.
//
//	bonvanctl users list
//	bonvanctl session show|clear
//	bonvanctl onboarding show|reset
//	bonvanctl profile show
//	bonvanctl dev auth-bypass [on|off]
//	bonvanctl settings show
package main

import (
	"context"
	"os"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/config"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/repository"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/server"
)

func main() {
	if err := newRootCmd(openConfiguredStore).Execute(); err != nil {
		os.Exit(1)
	}
}

func openConfiguredStore(ctx context.Context) (repository.KeyValueStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return server.OpenStore(ctx, cfg.Storage)
}
