package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/geocoder89/agendahub/internal/config"
	"github.com/geocoder89/agendahub/internal/domain/event"
	"github.com/geocoder89/agendahub/internal/gateway"
	"github.com/geocoder89/agendahub/internal/observability"
	"github.com/geocoder89/agendahub/internal/validate"
)

const usage = `agendactl - terminal client for the calendar service

Usage:
  agendactl probe
  agendactl list
  agendactl month <YYYY-MM>
  agendactl add    -title T -date DD/MM/YYYY [-location L] [-notes N]
  agendactl update -id ID -title T -date DD/MM/YYYY [-location L] [-notes N]
  agendactl delete <id>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	gw := gateway.New(gateway.Config{BaseURL: cfg.APIBaseURL}, log, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error

	switch os.Args[1] {
	case "probe":
		err = runProbe(ctx, gw)
	case "list":
		err = runList(ctx, gw)
	case "month":
		err = runMonth(ctx, gw, os.Args[2:])
	case "add":
		err = runAdd(ctx, gw, os.Args[2:])
	case "update":
		err = runUpdate(ctx, gw, os.Args[2:])
	case "delete":
		err = runDelete(ctx, gw, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "agendactl:", err)
		os.Exit(1)
	}
}

func runProbe(ctx context.Context, gw *gateway.Gateway) error {
	if err := gw.Probe(ctx); err != nil {
		return err
	}
	fmt.Println("calendar service reachable")
	return nil
}

func runList(ctx context.Context, gw *gateway.Gateway) error {
	events, err := gw.List(ctx)
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}

func runMonth(ctx context.Context, gw *gateway.Gateway, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("month command wants exactly one YYYY-MM argument")
	}

	events, err := gw.ListMonth(ctx, args[0])
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}

func runAdd(ctx context.Context, gw *gateway.Gateway, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	draft := draftFlags(fs)
	fs.Parse(args)

	if !checkDraft(*draft) {
		os.Exit(1)
	}

	created, err := gw.Create(ctx, *draft)
	if err != nil {
		return err
	}

	fmt.Printf("created event %d: %s on %s\n", created.ID, created.Title, created.DisplayDate())
	return nil
}

func runUpdate(ctx context.Context, gw *gateway.Gateway, args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.Int64("id", 0, "event id")
	draft := draftFlags(fs)
	fs.Parse(args)

	if *id <= 0 {
		return fmt.Errorf("update needs -id")
	}
	if !checkDraft(*draft) {
		os.Exit(1)
	}

	updated, err := gw.Update(ctx, *id, *draft)
	if err != nil {
		return err
	}

	fmt.Printf("updated event %d: %s on %s\n", updated.ID, updated.Title, updated.DisplayDate())
	return nil
}

func runDelete(ctx context.Context, gw *gateway.Gateway, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete command wants exactly one id argument")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad id %q", args[0])
	}

	if err := gw.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Printf("deleted event %d\n", id)
	return nil
}

func draftFlags(fs *flag.FlagSet) *event.Draft {
	d := &event.Draft{}
	fs.StringVar(&d.Title, "title", "", "event title")
	fs.StringVar(&d.Date, "date", "", "event date, DD/MM/YYYY")
	fs.StringVar(&d.Location, "location", "", "event location")
	fs.StringVar(&d.Notes, "notes", "", "event notes")
	return d
}

// checkDraft runs the same validation the forms run, so a bad draft never
// leaves the terminal.
func checkDraft(d event.Draft) bool {
	errs := validate.ValidateNow(d)
	if errs.Valid() {
		return true
	}

	for field, msgs := range errs {
		for _, msg := range msgs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
		}
	}
	return false
}

func printEvents(events []event.Event) {
	if len(events) == 0 {
		fmt.Println("no events")
		return
	}

	for _, e := range events {
		line := fmt.Sprintf("%4d  %s  %s", e.ID, e.DisplayDate(), e.Title)
		if e.Location != "" {
			line += "  @ " + e.Location
		}
		fmt.Println(line)
	}
}
