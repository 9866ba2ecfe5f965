package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/checkout"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/usecase"
	"github.com/phenrril/storefront/internal/variant"
)

// session is the process-wide cart and what it needs to talk to the backend.
type session struct {
	catalog *usecase.CatalogUC
	handoff *checkout.Handoff
	store   *cart.Store
	slot    *cart.AsyncSlot
	release func() error
}

type cli struct {
	build func(ctx context.Context) (*session, error)
	s     *session
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Manage a storefront cart from the terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.s != nil {
				return nil
			}
			s, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			c.s = s
			return nil
		},
	}
	root.AddCommand(c.showCmd(), c.addCmd(), c.setCmd(), c.rmCmd(), c.clearCmd(), c.checkoutCmd())
	return root
}

// close flushes queued snapshots to disk before the process exits.
func (c *cli) close() error {
	if c.s == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.s.slot.Flush(ctx)
	err = errors.Join(err, c.s.slot.Close())
	if c.s.release != nil {
		err = errors.Join(err, c.s.release())
	}
	c.s = nil
	return err
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printCart(cmd.OutOrStdout(), c.s.store)
			return nil
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var (
		qty       int
		variantID string
		opts      []string
	)
	cmd := &cobra.Command{
		Use:   "add <handle>",
		Short: "Add a product, choosing options with -o Name=Value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseOptions(opts)
			if err != nil {
				return err
			}
			p, id, ok, err := c.s.catalog.Pick(cmd.Context(), args[0], variantID, sel)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: choose one of each of %s", args[0], optionNames(*p))
			}
			c.s.store.Add(p.Compact(id), qty, id)
			printCart(cmd.OutOrStdout(), c.s.store)
			return nil
		},
	}
	cmd.Flags().IntVarP(&qty, "quantity", "q", 1, "quantity to add")
	cmd.Flags().StringVar(&variantID, "variant", "", "variant id, overrides options")
	cmd.Flags().StringArrayVarP(&opts, "option", "o", nil, "option choice as Name=Value")
	return cmd
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <productId> <variantId> <qty>",
		Short: "Set a line quantity; 0 removes the line",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[2], err)
			}
			c.s.store.SetQuantity(args[0], args[1], cart.ClampFloat(q))
			printCart(cmd.OutOrStdout(), c.s.store)
			return nil
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <productId> [variantId]",
		Short: "Remove a line",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := ""
			if len(args) == 2 {
				v = args[1]
			}
			c.s.store.Remove(args[0], v)
			printCart(cmd.OutOrStdout(), c.s.store)
			return nil
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.s.store.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}
}

func (c *cli) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Hand the cart to checkout and print the session URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !checkout.Ready(c.s.store.Lines()) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: lines without a variant are left out")
			}
			u, err := c.s.handoff.Submit(cmd.Context(), "cartctl", c.s.store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func parseOptions(raw []string) (variant.Selection, error) {
	sel := variant.Selection{}
	for _, o := range raw {
		name, value, ok := strings.Cut(o, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("option %q: want Name=Value", o)
		}
		sel[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return sel, nil
}

func optionNames(p domain.Product) string {
	names := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		names = append(names, o.Name)
	}
	if len(names) == 0 {
		return "the variants"
	}
	return strings.Join(names, ", ")
}

func printCart(w io.Writer, s *cart.Store) {
	lines := s.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tTITLE\tQTY\tTOTAL")
	for _, l := range lines {
		title := l.Product.Title
		if v, ok := l.Variant(); ok && v.Title != "" {
			title += " (" + v.Title + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.Product.ID, l.VariantID, title, l.Quantity, l.Total())
	}
	fmt.Fprintf(tw, "\t\t%s\t%d\t%s\n", "subtotal", s.Count(), s.Subtotal())
	_ = tw.Flush()
}
