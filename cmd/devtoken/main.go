// devtoken prints a bearer token signed with the configured JWT secret, for
// calling the API locally without the ERP identity provider.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/erp_finance_ledger/internal/platform/config"
	"github.com/SscSPs/erp_finance_ledger/internal/utils"
)

func main() {
	userID := flag.String("user", "dev-user", "subject of the token; becomes the actor of every call")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.IsProduction {
		slog.Error("Refusing to mint development tokens in production")
		os.Exit(1)
	}

	token, err := utils.GenerateJWT(*userID, cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer)
	if err != nil {
		slog.Error("Failed to sign token", slog.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Println(token)
}
