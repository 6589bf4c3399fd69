package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yeisme/spacedash/pkg/internal/storage/db"
	"github.com/yeisme/spacedash/pkg/internal/storage/kv"
	"github.com/yeisme/spacedash/pkg/internal/storage/mq"
)

// listCommand 构造打印已注册后端类型的 ls 子命令.
func listCommand(kind string, names func() []string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "list all registered " + kind + " backends",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			out := names()
			slices.Sort(out)

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s types:\n", kind)

			for _, n := range out {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+n)
			}
		},
	}
}

func stringsOf[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}

	return out
}

// registerStorageCommands 注册 db / kv / mq 子命令.
func registerStorageCommands() {
	for _, c := range []struct {
		use, short string
		aliases    []string
		names      func() []string
	}{
		{"db", "file metadata database commands", nil, func() []string { return stringsOf(db.GetRegisteredDBTypes()) }},
		{"kv", "dashboard cache store commands", []string{"keyvalue"}, func() []string { return stringsOf(kv.GetRegisteredKVTypes()) }},
		{"mq", "event message queue commands", []string{"messagequeue"}, func() []string { return stringsOf(mq.GetRegisteredMQTypes()) }},
	} {
		parent := &cobra.Command{Use: c.use, Short: c.short, Aliases: c.aliases}
		parent.AddCommand(listCommand(c.use, c.names))
		rootCmd.AddCommand(parent)
	}
}
