package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Makepad-fr/fxlist/internal/apperrors"
	"github.com/Makepad-fr/fxlist/internal/config"
	"github.com/Makepad-fr/fxlist/internal/currencylist"
	"github.com/Makepad-fr/fxlist/internal/model"
	"github.com/Makepad-fr/fxlist/internal/orchestrator"
	"github.com/Makepad-fr/fxlist/internal/rates"
	"github.com/Makepad-fr/fxlist/internal/tui"
	"github.com/Makepad-fr/fxlist/internal/ui"
)

// Options tune behavior from root flags.
type Options struct {
	EnvFile string         // dotenv file merged into the environment
	Theme   string         // classic, neon or mono
	Config  *config.Config // skips loading when set

	Stdout, Stderr io.Writer
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	ui.SetTheme(opt.Theme)
	ui.SetOutput(opt.Stdout, opt.Stderr)

	cmd, a := "watch", []string(nil)
	if len(args) > 0 {
		cmd, a = args[0], args[1:]
	}

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "watch":
		if len(a) != 0 {
			ui.Fail("usage: fxlist watch")
			return 2
		}
		return withApp(opt, doWatch)

	case "rates", "ls":
		if len(a) != 0 {
			ui.Fail("usage: fxlist rates")
			return 2
		}
		return withApp(opt, doRates)

	case "convert":
		if len(a) != 2 {
			ui.Fail("usage: fxlist convert <ISO> <amount>")
			return 2
		}
		iso := strings.ToUpper(strings.TrimSpace(a[0]))
		amount := a[1]
		return withApp(opt, func(ctx context.Context, app *app) int {
			return doConvert(ctx, app, iso, amount)
		})

	case "cache":
		if len(a) != 1 || (a[0] != "show" && a[0] != "clear") {
			ui.Fail("usage: fxlist cache show|clear")
			return 2
		}
		if a[0] == "clear" {
			return withApp(opt, doCacheClear)
		}
		return withApp(opt, doCacheShow)
	}

	ui.Fail("unknown subcommand: " + cmd)
	errOut := opt.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	fmt.Fprintln(errOut)
	PrintHelp(errOut)
	return 2
}

func PrintHelp(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, `fxlist - currency converter for the terminal

Usage:
  fxlist [-env file] [-theme classic|neon|mono] <subcommand> [args]

Subcommands:
  watch                  Interactive list, refreshed continuously (default)
  rates                  Fetch once and print every rate against EUR
  convert <ISO> <amount> Convert amount from ISO into every other currency
  cache show|clear       Print or drop the locally cached rates
  help                   Show this help

Examples:
  fxlist
  fxlist convert USD 10
  FXLIST_CACHE_BACKEND=redis fxlist rates
`)
}

func withApp(opt Options, fn func(context.Context, *app) int) int {
	app, err := newApp(opt)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, app)
}

// -------------- subcommand impls ----------------

func doWatch(ctx context.Context, app *app) int {
	store := currencylist.New(app.cfg.MoveSettle, app.logger)
	o := orchestrator.New(app.svc, app.logger)

	err := tui.Run(ctx, tui.Options{
		Store:        store,
		Orchestrator: o,
		Interval:     app.cfg.RefreshInterval,
		Logger:       app.logger,
	})
	if err != nil {
		ui.Fail("watch: " + err.Error())
		return 1
	}
	return 0
}

// loadOnce runs a single refresh cycle into a fresh store.
func loadOnce(ctx context.Context, app *app) (*currencylist.Store, orchestrator.Result, error) {
	store := currencylist.New(0, app.logger)
	o := orchestrator.New(app.svc, app.logger)
	binding := o.Attach(orchestrator.StoreSink(store, nil))
	defer binding.Detach()

	res, err := o.Refresh(ctx)
	return store, res, err
}

func doRates(ctx context.Context, app *app) int {
	store, res, err := loadOnce(ctx, app)
	if code, done := reportLoad(res, err); done {
		return code
	}
	ui.Panel(append(header(res, store), ui.Table(
		[]string{"ISO", "Currency", "Rate"},
		tableRows(store.Snapshot()),
		2,
	)))
	return 0
}

func doConvert(ctx context.Context, app *app, iso, amount string) int {
	store, res, err := loadOnce(ctx, app)
	if code, done := reportLoad(res, err); done {
		return code
	}
	if store.IndexOf(iso) < 0 {
		ui.Fail(fmt.Sprintf("convert: %s: %v", iso, apperrors.ErrNotFound))
		ui.Hint("Hint: run `fxlist rates` to see known currencies")
		return 2
	}

	store.SelectAndPromote(iso)
	store.EditActiveValue(amount)

	active, _ := store.Active()
	lines := header(res, store)
	lines = append(lines,
		fmt.Sprintf("%s %s", ui.Current().Accent.Render(rates.Format(active.EnteredValue)), ui.Current().Title.Render(active.ISOCode)),
		"",
		ui.Table([]string{"ISO", "Currency", "Value"}, tableRows(store.Snapshot()[1:]), 2),
	)
	ui.Panel(lines)
	return 0
}

func doCacheShow(ctx context.Context, app *app) int {
	records, err := app.svc.ReadCache(ctx)
	if err != nil {
		ui.Fail("cache: " + err.Error())
		return 1
	}
	t := ui.Current()
	lines := []string{t.Title.Render("Cache") + "  " + t.Muted.Render(app.svc.CacheName())}
	if len(records) == 0 {
		lines = append(lines, t.Muted.Render("empty"))
		ui.Panel(lines)
		return 0
	}

	store := currencylist.New(0, app.logger)
	store.ReplaceAll(records)
	lines = append(lines, ui.Table([]string{"ISO", "Currency", "Rate"}, tableRows(store.Snapshot()), 2))
	ui.Panel(lines)
	return 0
}

func doCacheClear(ctx context.Context, app *app) int {
	if err := app.svc.ClearCache(ctx); err != nil {
		ui.Fail("cache: " + err.Error())
		return 1
	}
	ui.OK("cache cleared")
	return 0
}

// -------------- rendering helpers --------------

// reportLoad handles the outcomes that end the command early.
func reportLoad(res orchestrator.Result, err error) (int, bool) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.Fail("interrupted")
		} else {
			ui.Fail(err.Error())
		}
		return 1, true
	}
	if !res.HasData() {
		ui.Fail("no rates available: " + res.Err.Error())
		return 1, true
	}
	if res.Err != nil {
		ui.Warn("offline, showing cached rates: " + res.Err.Error())
	}
	return 0, false
}

func header(res orchestrator.Result, store *currencylist.Store) []string {
	t := ui.Current()
	state := t.Success.Render("fresh")
	if res.State == orchestrator.Failure {
		state = t.Pending.Render("cached")
	}
	return []string{
		fmt.Sprintf("%s  %s %s  %s %d",
			t.Title.Render("fxlist"),
			t.Muted.Render("base"), t.Accent.Render(model.BaseISOCode),
			state, store.Len(),
		),
		"",
	}
}

func tableRows(rows []currencylist.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		name := r.FullName()
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		out = append(out, []string{r.ISOCode, name, r.DisplayText()})
	}
	return out
}
