package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yeisme/spacedash/pkg/app"
	ctxPkg "github.com/yeisme/spacedash/pkg/context"
	"github.com/yeisme/spacedash/pkg/internal/service"
	"github.com/yeisme/spacedash/pkg/internal/types"
	"github.com/yeisme/spacedash/pkg/rule"
	"github.com/yeisme/spacedash/pkg/usage"
)

var (
	usageJSON bool

	usageCmd = &cobra.Command{
		Use:   "usage <user>",
		Short: "print the storage dashboard of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userArg(args[0]); err != nil {
				return err
			}

			return withStorage(cmd, func(ctx context.Context) error {
				// CLI 总是读取最新数据
				d, err := service.NewDashboardService(ctx, service.WithCache(nil)).Build(ctx, args[0])
				if err != nil {
					return err
				}

				if usageJSON {
					b, err := sonic.ConfigStd.MarshalIndent(d, "", "  ")
					if err != nil {
						return err
					}

					fmt.Fprintln(cmd.OutOrStdout(), string(b))

					return nil
				}

				return printDashboard(cmd.OutOrStdout(), d)
			})
		},
	}

	quotaCmd = &cobra.Command{
		Use:   "quota",
		Short: "quota subcommands",
	}

	quotaGetCmd = &cobra.Command{
		Use:   "get <user>",
		Short: "print the quota of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userArg(args[0]); err != nil {
				return err
			}

			return withStorage(cmd, func(ctx context.Context) error {
				q, err := service.NewQuotaService(ctx).Get(ctx, args[0])
				if err != nil {
					return err
				}

				printQuota(cmd.OutOrStdout(), q)

				return nil
			})
		},
	}

	quotaSetCmd = &cobra.Command{
		Use:     "set <user> <size>",
		Short:   "set the quota of a user, e.g. quota set alice@example.com \"5 GB\"",
		Args:    cobra.ExactArgs(2),
		Example: `  spacedash quota set alice@example.com 5GB`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userArg(args[0]); err != nil {
				return err
			}

			bytes, err := usage.ParseSize(args[1])
			if err != nil {
				return err
			}

			return withStorage(cmd, func(ctx context.Context) error {
				q, err := service.NewQuotaService(ctx).Set(ctx, args[0], bytes)
				if err != nil {
					return err
				}

				printQuota(cmd.OutOrStdout(), q)

				return nil
			})
		},
	}
)

// userArg 校验命令行传入的用户.
func userArg(user string) error {
	if err := rule.ValidateUser(user); err != nil {
		return fmt.Errorf("invalid user %q: %v", user, rule.Errors(err))
	}

	return nil
}

// withStorage 初始化存储并把 Manager 注入 ctx 后执行 fn，结束时关闭存储.
func withStorage(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	mgr, err := app.InitCore(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer mgr.Close()

	return fn(ctxPkg.WithStorageManager(cmd.Context(), mgr))
}

func printDashboard(w io.Writer, d types.Dashboard) error {
	t := d.Totals
	fmt.Fprintf(w, "%s: %s of %s used (%d%%), %s available\n", d.User, t.UsedText, t.QuotaText, t.UsedPercent, t.AvailableText)

	if t.OverQuota {
		fmt.Fprintln(w, "warning: over quota")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nCATEGORY\tFILES\tSIZE\tLATEST")

	for _, c := range d.Summary {
		latest := "-"
		if c.LatestAt != nil {
			latest = humanize.Time(*c.LatestAt)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Title, humanize.Comma(int64(c.Count)), c.Size, latest)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if len(d.Recent) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nRecent files:")

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range d.Recent {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", f.Name, f.Category, f.SizeText, humanize.Time(f.CreatedAt))
	}

	return tw.Flush()
}

func printQuota(w io.Writer, q types.QuotaResponse) {
	suffix := ""
	if q.Default {
		suffix = " (default)"
	}

	fmt.Fprintf(w, "%s: %s%s\n", q.User, q.Text, suffix)
}

// registerUsageCommands 注册用量与配额命令.
func registerUsageCommands() {
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(usageCmd)

	quotaCmd.AddCommand(quotaGetCmd, quotaSetCmd)
	rootCmd.AddCommand(quotaCmd)
}
