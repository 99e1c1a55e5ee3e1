// Command equipx 是 EquipX 市场的命令行客户端。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const usage = `usage: equipx <command> [flags]

commands:
  register   create an account and sign in
  login      sign in
  logout     sign out and forget the stored credential
  whoami     show the signed-in account
  listings   list the catalog, or your own listings with -mine
  search     search the catalog (-q, -condition, -sort)
  create     publish a new listing
  update     edit a listing you own
  sell       mark a listing as sold
  archive    archive a listing
  delete     delete a listing
  chat       open the chat thread of a listing
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer a.close()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
