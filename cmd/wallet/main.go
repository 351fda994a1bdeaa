package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/greenwallet/internal/client/app"
	"github.com/dmitrijs2005/greenwallet/internal/client/config"
	"github.com/dmitrijs2005/greenwallet/internal/client/cryptolib"
	"github.com/dmitrijs2005/greenwallet/internal/common"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, cfg.LogLevel)

	passphrase, err := app.Passphrase(cfg.Passphrase, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	a, err := app.NewApp(ctx, cfg, passphrase, cryptolib.Unavailable{}, logger)
	common.WipeByteArray(passphrase)
	if err != nil {
		log.Fatalf("%v", err)
	}

	a.Run(ctx)

}
