package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mediagraph/domain/core/valueobjects"
	"mediagraph/infrastructure/persistence/httpstore"
)

type options struct {
	backendURL string
	timeout    time.Duration
	verbose    bool
}

func (o *options) client() *httpstore.Client {
	logger := zap.NewNop()
	if o.verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}
	cfg := httpstore.DefaultConfig(o.backendURL)
	cfg.Timeout = o.timeout
	return httpstore.New(cfg, logger)
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	defaultURL := os.Getenv("BACKEND_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	root := &cobra.Command{
		Use:          "graphctl",
		Short:        "graphctl lists, creates and inspects stored media graphs",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.backendURL, "backend", defaultURL, "graph store base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newCreateCmd(opts))
	root.AddCommand(newShowCmd(opts))
	return root
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			graphs, err := opts.client().List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, g := range graphs {
				fmt.Fprintf(w, "%s\t%s\n", g.ID, g.Name)
			}
			return w.Flush()
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := opts.client().Create(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a graph's nodes and edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := opts.client().Fetch(cmd.Context(), valueobjects.GraphID(args[0]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if raw {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}

			fmt.Fprintf(out, "%s (%s): %d nodes, %d edges\n", doc.Name, doc.ID, len(doc.Nodes), len(doc.Edges))
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, n := range doc.Nodes {
				label := n.Data.Title
				if n.ResolvedKind() == "zone" {
					label = n.Data.Name
				}
				fmt.Fprintf(w, "  %s\t%s\t%s\t(%g, %g)\n", n.ID, n.ResolvedKind(), label, n.Position.X, n.Position.Y)
			}
			for _, e := range doc.Edges {
				fmt.Fprintf(w, "  %s\t%s -> %s\n", e.ID, e.Source, e.Target)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&raw, "json", false, "print the stored JSON")
	return cmd
}
