package main

import (
	"encoding/json"
	"io"

	"github.com/archlinux/archwiki-sub029/ipaddresses"
	"github.com/archlinux/archwiki-sub029/vardump"
	"github.com/archlinux/archwiki-sub029/variables"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vardump",
		Short:         "Store and inspect AbuseFilter variable dumps",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "loglevel", "", "Overrides the log level. Can be one of: debug, info, warn, error, fatal, panic.")

	rootCmd.AddCommand(newStoreCommand(a), newLoadCommand(a), newKeywordsCommand(a))
	return rootCmd
}

type storeResult struct {
	VarDump string `json:"varDump"`
	IPHex   string `json:"ipHex,omitempty"`
}

func newStoreCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store the JSON object of variables read from stdin and print the resulting dump field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(a.in)
			if err != nil {
				return err
			}
			vars, err := vardump.DecodeVars(data)
			if err != nil {
				return err
			}

			var res storeResult
			if a.ip != "" {
				if res.IPHex, err = ipaddresses.ToHex(a.ip); err != nil {
					return err
				}
			}

			if res.VarDump, err = a.env.store.StoreVarDump(variables.NewVariableHolderFromNative(vars)); err != nil {
				return err
			}
			return writeJSON(a.out, res)
		},
	}

	cmd.Flags().StringVar(&a.ip, "ip", "", "IP address of the action, printed in hex form to store next to the dump")
	return cmd
}

func newLoadCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load DUMP...",
		Short: "Load dump fields and print their variables as the viewer may see them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer := &cliViewer{name: a.viewer, canSeeProtected: a.canSeeProtected}
			results := make([]map[string]interface{}, len(args))

			var g errgroup.Group
			for i, field := range args {
				i, field := i, field
				g.Go(func() error {
					holder, err := a.env.store.LoadVarDump(vardump.LogRow{VarDump: &field, IPHex: a.ipHex})
					if err != nil {
						return err
					}
					results[i] = a.env.store.ExportForViewer(holder, viewer)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			return writeJSON(a.out, results)
		},
	}

	cmd.Flags().StringVar(&a.ipHex, "ip-hex", "", "Hex IP stored next to the dumps, used to restore user_unnamed_ip")
	cmd.Flags().StringVar(&a.viewer, "viewer", "cli", "Name recorded in the access log when protected variables are shown")
	cmd.Flags().BoolVar(&a.canSeeProtected, "viewer-can-see-protected", false, "Show protected variables instead of redacting them")
	return cmd
}

type keywordsResult struct {
	Builtin    []string          `json:"builtin"`
	Deprecated map[string]string `json:"deprecated"`
	Disabled   []string          `json:"disabled"`
}

func newKeywordsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List the builtin, deprecated and disabled variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := a.env.keywords
			return writeJSON(a.out, keywordsResult{
				Builtin:    k.BuiltinVars(),
				Deprecated: k.DeprecatedVars(),
				Disabled:   k.DisabledVars(),
			})
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
