// gestockctl drives a running gestock server from the command line.
//
// Usage:
//
//	gestockctl [-addr URL] [-email E -password P] <command> [flags]
//
// Commands:
//
//	products [-q text]
//	orders
//	order-create -product ID -qty N [-client ID] [-number S] [-date YYYY-MM-DD]
//	order-update -id ID [-qty N] [-product ID] [-client ID] [-number S]
//	order-delete -id ID
//	invoice -client ID [-date YYYY-MM-DD]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gestock/internal/client"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "gestockctl:", err)
		if errors.Is(err, client.ErrInsufficientStock) || errors.Is(err, client.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("gestockctl", flag.ContinueOnError)
	addr := global.String("addr", envOr("GESTOCK_ADDR", "http://localhost:8080"), "server base URL")
	email := global.String("email", os.Getenv("GESTOCK_EMAIL"), "login email")
	password := global.String("password", os.Getenv("GESTOCK_PASSWORD"), "login password")
	timeout := global.Duration("timeout", 10*time.Second, "request timeout")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}
	cmd, rest := global.Arg(0), global.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := client.New(*addr)
	if *email != "" {
		if err := c.Login(ctx, *email, *password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	switch cmd {
	case "products":
		q := fs.String("q", "", "name filter")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return emit(c.Products(ctx, *q))

	case "orders":
		return emit(c.Orders(ctx))

	case "order-create":
		var in client.OrderRequest
		fs.Int64Var(&in.ProductID, "product", 0, "product id")
		fs.Int64Var(&in.Quantity, "qty", 0, "quantity")
		fs.Int64Var(&in.ClientID, "client", 0, "client id (defaults to the signed-in client)")
		fs.StringVar(&in.OrderNumber, "number", "", "order number")
		fs.StringVar(&in.OrderDate, "date", "", "order date YYYY-MM-DD")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return emit(c.CreateOrder(ctx, in))

	case "order-update":
		id := fs.Int64("id", 0, "order id")
		qty := fs.Int64("qty", 0, "new quantity")
		product := fs.Int64("product", 0, "new product id")
		clientID := fs.Int64("client", 0, "new client id")
		number := fs.String("number", "", "new order number")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var patch client.OrderPatch
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "qty":
				patch.Quantity = qty
			case "product":
				patch.ProductID = product
			case "client":
				patch.ClientID = clientID
			case "number":
				patch.OrderNumber = number
			}
		})
		return emit(c.UpdateOrder(ctx, *id, patch))

	case "order-delete":
		id := fs.Int64("id", 0, "order id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		outcome, err := c.DeleteOrder(ctx, *id)
		return emit(map[string]any{"id": *id, "outcome": outcome}, err)

	case "invoice":
		clientID := fs.Int64("client", 0, "client id")
		date := fs.String("date", "", "day YYYY-MM-DD (default today)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return emit(c.Invoice(ctx, *clientID, *date))
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func emit[T any](v T, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
