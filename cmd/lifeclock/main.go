package main

import (
	"fmt"
	"log"
	"os"

	"github.com/q8244654-ui/lifeclock/internal/lifeclock/app"
	"github.com/q8244654-ui/lifeclock/pkg/paywall"
)

func main() {
	// `lifeclock gensecret` prints a fresh cookie-signing secret for
	// PAY_COOKIE_SECRET and exits.
	if len(os.Args) > 1 && os.Args[1] == "gensecret" {
		secret, err := paywall.NewSecret()
		if err != nil {
			log.Fatalf("failed to generate secret: %v", err)
		}
		fmt.Println(secret)
		return
	}

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
