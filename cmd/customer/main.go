package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/cart"
	"github.com/vasiliy-maslov/quickorder/internal/client"
	"github.com/vasiliy-maslov/quickorder/internal/config"
	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/session"
	"github.com/vasiliy-maslov/quickorder/internal/tracker"
)

// selection is one -add flag: productId=qty[=Opt1,Opt2].
type selection struct {
	productID string
	quantity  int
	options   []string
}

func parseSelection(s string) (selection, error) {
	parts := strings.SplitN(s, "=", 3)
	sel := selection{productID: parts[0], quantity: 1}
	if sel.productID == "" {
		return sel, errors.New("missing product id")
	}
	if len(parts) > 1 && parts[1] != "" {
		q, err := strconv.Atoi(parts[1])
		if err != nil {
			return sel, fmt.Errorf("bad quantity %q", parts[1])
		}
		sel.quantity = q
	}
	if len(parts) > 2 && parts[2] != "" {
		sel.options = strings.Split(parts[2], ",")
	}
	return sel, nil
}

func parsePolicy(s string) (cart.InstructionPolicy, error) {
	switch s {
	case "join", "":
		return cart.JoinInstructions, nil
	case "first":
		return cart.KeepFirstInstruction, nil
	case "separate":
		return cart.SeparateByInstruction, nil
	}
	return 0, fmt.Errorf("unknown instruction policy %q", s)
}

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	restaurant := flag.String("restaurant", "", "restaurant id from the QR code (defaults to RESTAURANT_ID)")
	table := flag.Int("table", -1, "table number from the QR code, 0 for Pick & Go; negative keeps the saved table")
	note := flag.String("note", "", "instruction attached to every item added in this run")
	pay := flag.String("pay", string(model.PaymentCash), "payment method: cash, card, instapay or online")
	sessionPath := flag.String("session", ".quickorder/session.json", "where the local session is kept")
	history := flag.Bool("history", false, "print the orders placed in this session and exit")
	instructions := flag.String("instructions", "join", "how instructions merge: join, first or separate")

	var selections []selection
	flag.Func("add", "add productId=qty[=Opt1,Opt2] to the cart (repeatable)", func(s string) error {
		sel, err := parseSelection(s)
		if err != nil {
			return err
		}
		selections = append(selections, sel)
		return nil
	})
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "customer").Logger()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	policy, err := parsePolicy(*instructions)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid flags")
	}
	method := model.PaymentMethod(*pay)
	if !method.Valid() {
		log.Fatal().Str("pay", *pay).Msg("Unknown payment method")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.App.APIURL)

	sess, err := session.Load(*sessionPath, cart.WithInstructionPolicy(policy))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load session")
	}
	if *table >= 0 {
		restaurantID := *restaurant
		if restaurantID == "" {
			restaurantID = cfg.App.RestaurantID
		}
		sess.Scan(restaurantID, *table)
	}

	if *history {
		printHistory(ctx, api, sess)
		return
	}

	if len(selections) > 0 {
		if err := fillCart(ctx, api, sess.Cart, selections, *note); err != nil {
			log.Fatal().Err(err).Msg("Failed to build the cart")
		}
	}
	if sess.Cart.Empty() {
		log.Info().Msg("Cart is empty, nothing to order")
		return
	}
	for _, line := range sess.Cart.Lines() {
		log.Info().Str("item", line.Item.Name).Int("qty", line.Item.Quantity).Str("instruction", line.Item.Instruction).Msg("In cart")
	}

	placed, err := sess.Checkout(ctx, api, method)
	if saveErr := sess.Save(*sessionPath); saveErr != nil {
		log.Error().Err(saveErr).Msg("Failed to save session")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to place order, the cart was kept")
	}
	log.Info().
		Int("order_number", placed.OrderNumber).
		Int64("total", placed.TotalAmount).
		Stringer("status", placed.Status).
		Msg("Order placed")

	final, err := tracker.Watch(ctx, api, placed.ID, cfg.Poll.StatusInterval, func(o *model.Order) {
		log.Info().Int("order_number", o.OrderNumber).Stringer("status", o.Status).Msg("Order status changed")
	})
	switch {
	case errors.Is(err, context.Canceled):
		log.Info().Msg("Stopped tracking, the order stays in your history")
	case err != nil:
		log.Error().Err(err).Msg("Order tracking ended")
	default:
		log.Info().Int("order_number", final.OrderNumber).Stringer("status", final.Status).Msg("Enjoy your meal")
	}
}

// fillCart resolves each selection against the live menu so names, prices
// and option surcharges come from the server.
func fillCart(ctx context.Context, api *client.Client, c *cart.Cart, selections []selection, note string) error {
	products, err := api.Products(ctx)
	if err != nil {
		return fmt.Errorf("load menu: %w", err)
	}
	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, sel := range selections {
		p, ok := byID[sel.productID]
		if !ok {
			return fmt.Errorf("product %s is not on the menu", sel.productID)
		}
		if !p.IsAvailable {
			return fmt.Errorf("%s is not available right now", p.Name)
		}

		item := model.OrderItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Quantity:    sel.quantity,
			Instruction: note,
		}
		for _, name := range sel.options {
			opt, ok := findOption(p.Options, name)
			if !ok {
				return fmt.Errorf("%s has no option %q", p.Name, name)
			}
			item.Options = append(item.Options, opt)
		}
		c.Add(item)
	}
	return nil
}

func findOption(opts []model.Option, name string) (model.Option, bool) {
	for _, o := range opts {
		if strings.EqualFold(o.Name, name) {
			return o, true
		}
	}
	return model.Option{}, false
}

func printHistory(ctx context.Context, api *client.Client, sess *session.Session) {
	orders, err := sess.Orders(ctx, api)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load order history")
	}
	if len(orders) == 0 {
		log.Info().Msg("No orders in this session yet")
		return
	}
	for _, o := range orders {
		log.Info().
			Int("order_number", o.OrderNumber).
			Stringer("status", o.Status).
			Int64("total", o.TotalAmount).
			Time("created_at", o.CreatedAt).
			Msg("Order")
	}
}
