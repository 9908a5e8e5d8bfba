package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/nir/cache"
)

func newCacheCmd() *cobra.Command {
	var dir string
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk shader cache",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "cache directory (default: config file, then $NIR_CACHE_DIR)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML cache config file")

	// openCache resolves flags over config file over environment.
	openCache := func(cmd *cobra.Command) (*cache.Cache, error) {
		var cfg cache.Config
		var err error
		if configPath != "" {
			cfg, err = cache.LoadConfig(configPath)
			if err != nil {
				return nil, err
			}
		} else {
			cfg = cache.DefaultConfig()
		}
		if dir != "" {
			cfg.Dir = dir
		}
		cfg.Logger = loggerFromContext(cmd.Context())
		return cache.Open(cfg)
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry count and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(cmd)
			if errors.Is(err, cache.ErrDisabled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")
				return nil
			}
			if err != nil {
				return err
			}
			st, err := c.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Directory: %s\nEntries: %d\nSize: %d bytes\n",
				c.Dir(), st.Entries, st.Size)
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(cmd)
			if errors.Is(err, cache.ErrDisabled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cache is disabled")
				return nil
			}
			if err != nil {
				return err
			}
			st, err := c.Stats()
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entries (%d bytes)\n", st.Entries, st.Size)
			return nil
		},
	}

	cmd.AddCommand(stats)
	cmd.AddCommand(clear)
	return cmd
}
