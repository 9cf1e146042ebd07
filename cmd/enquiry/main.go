// cmd/enquiry/main.go
//
// Group-booking enquiry CLI.
//
// Commands
// --------
//
//	enquiry template                 print a blank enquiry (YAML)
//	enquiry validate FILE            check FILE against the booking schema
//	enquiry submit [--api URL] FILE  walk the sections, validate, and submit
//	enquiry locations [--api URL]    list hotel locations
//	enquiry show [--api URL] REF     print one stored booking
//
// FILE is loaded into the same form store the interactive form uses, so the
// CLI sees exactly the validation and submission behaviour of the form.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/client"
	"github.com/yanizio/groupenquiry/internal/form"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "enquiry:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	apiFlag := &cli.StringFlag{
		Name:    "api",
		Value:   "http://localhost:8080",
		Usage:   "enquiry API base URL",
		EnvVars: []string{"ENQUIRY_API"},
	}
	localeFlag := &cli.StringFlag{
		Name:  "locale",
		Value: form.FallbackLocale,
		Usage: "label language (en, de)",
	}

	return &cli.App{
		Name:      "enquiry",
		Usage:     "validate and submit group booking enquiries",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log to stderr"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				zap.ReplaceGlobals(l)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "template",
				Usage: "print a blank enquiry",
				Action: func(c *cli.Context) error {
					return writeTemplate(out)
				},
			},
			{
				Name:      "validate",
				Usage:     "check an enquiry file",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{localeFlag},
				Action: func(c *cli.Context) error {
					store, err := openStore(c, out)
					if err != nil {
						return err
					}
					res := form.NewValidator().Validate(store.Form())
					if res.Valid {
						fmt.Fprintf(out, "valid: %d room(s)\n", store.RoomTotal())
						return nil
					}
					printErrors(out, form.DefaultCatalogue(), c.String("locale"), res)
					return cli.Exit("", 1)
				},
			},
			{
				Name:      "submit",
				Usage:     "walk the sections, validate, and submit an enquiry file",
				ArgsUsage: "FILE",
				Flags:     []cli.Flag{apiFlag, localeFlag},
				Action:    submit(out),
			},
			{
				Name:  "locations",
				Usage: "list hotel locations",
				Flags: []cli.Flag{apiFlag},
				Action: func(c *cli.Context) error {
					cl, err := client.New(c.String("api"), client.Options{})
					if err != nil {
						return err
					}
					locs, err := cl.Locations(c.Context)
					if err != nil {
						return err
					}
					for _, l := range locs {
						fmt.Fprintf(out, "%-20s %s\n", l.ID, l.Name)
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "print one stored booking",
				ArgsUsage: "REFERENCE",
				Flags:     []cli.Flag{apiFlag},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("show needs one reference number", 2)
					}
					cl, err := client.New(c.String("api"), client.Options{})
					if err != nil {
						return err
					}
					b, err := cl.Booking(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(b)
				},
			},
		},
	}
}

func submit(out io.Writer) cli.ActionFunc {
	return func(c *cli.Context) error {
		store, err := openStore(c, out)
		if err != nil {
			return err
		}
		cl, err := client.New(c.String("api"), client.Options{})
		if err != nil {
			return err
		}

		locale := c.String("locale")
		cat := form.DefaultCatalogue()
		sections := form.NewSections(cat)
		o := form.NewOrchestrator(store, cl, form.Options{
			Catalogue: cat,
			Sections:  sections,
			Viewport:  &terminal{out: out, cat: cat, locale: locale},
			Locale:    locale,
		})

		// Walk the panels the way a user would, blurring every field.
		for {
			st := sections.State()
			fmt.Fprintf(out, "== %s\n", cat.SectionTitle(st.Expanded, locale))
			for _, p := range cat.Fields(st.Expanded) {
				if msgs := o.Blur(p); msgs[p] != "" {
					fmt.Fprintf(out, "   ! %s: %s\n", cat.Label(p, locale), msgs[p])
				}
			}
			if st.Expanded == form.Rooms {
				fmt.Fprintf(out, "   total rooms: %d\n", store.RoomTotal())
			}
			if st.SubmitVisible {
				break
			}
			sections.Advance()
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		res := o.Submit(ctx)
		switch res.Outcome {
		case form.OutcomeAccepted:
			fmt.Fprintf(out, "submitted: %s at %s\n",
				res.Confirmation.ReferenceNumber,
				res.Confirmation.SubmittedAt.Format(time.RFC3339))
			return nil
		case form.OutcomeInvalid:
			fmt.Fprintln(out, form.MsgSummaryHeading)
			for _, line := range res.Summary {
				fmt.Fprintln(out, "  -", line)
			}
			return cli.Exit("", 1)
		default:
			fmt.Fprintln(out, res.Banner)
			for _, line := range res.Summary {
				fmt.Fprintln(out, "  -", line)
			}
			return cli.Exit("", 1)
		}
	}
}

func openStore(c *cli.Context, out io.Writer) (*form.Store, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit(c.Command.Name+" needs one FILE argument", 2)
	}
	store := form.NewStore(booking.Defaults())
	unknown, err := loadEnquiry(c.Args().First(), store)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		names := make([]string, len(unknown))
		for i, p := range unknown {
			names[i] = p.String()
		}
		fmt.Fprintf(out, "warning: unknown fields ignored: %s\n", strings.Join(names, ", "))
	}
	return store, nil
}

func printErrors(w io.Writer, cat *form.Catalogue, locale string, res form.Result) {
	fmt.Fprintln(w, form.MsgSummaryHeading)
	for _, p := range res.Paths() {
		fmt.Fprintf(w, "  - %s: %s\n", cat.Label(p, locale), res.FieldErrors[p])
	}
}

// terminal is the CLI's Viewport: scroll requests become blank lines and
// focus requests name the field.
type terminal struct {
	out    io.Writer
	cat    *form.Catalogue
	locale string
}

func (t *terminal) ScrollToTop()          { fmt.Fprintln(t.out) }
func (t *terminal) ScrollToCenter(string) { fmt.Fprintln(t.out) }
func (t *terminal) Focus(p booking.Path) {
	fmt.Fprintf(t.out, "-> %s\n", t.cat.Label(p, t.locale))
}
