package commands

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/willibrandon/tusk-sub001/pkg/catalog/introspect"
	"github.com/willibrandon/tusk-sub001/pkg/dialect"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
)

// parserBackend names the syntax tree source compiled into the binary.
const parserBackend = "tree-sitter SQL grammar (incremental), lexer fallback"

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build capabilities",
		Long: `Display the tusk version together with the parser backend, the SQL
dialects and catalog drivers compiled in, and the available themes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "tusk v%s\n", version)
			if short {
				return
			}
			writeBuildInfo(out)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version")
	return cmd
}

func writeBuildInfo(w io.Writer) {
	def := ""
	if d := dialect.Default(); d != nil {
		def = strings.ToLower(d.Name)
	}
	names := dialect.List()
	for i, name := range names {
		if name == def {
			names[i] += " (default)"
		}
	}

	rows := [][2]string{
		{"parser", parserBackend},
		{"dialects", strings.Join(names, ", ")},
		{"drivers", strings.Join(introspect.Drivers(), ", ")},
		{"themes", fmt.Sprintf("%d chroma styles (default %s)", len(highlight.ThemeNames()), highlight.DefaultTheme)},
		{"go", fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "  %-9s %s\n", r[0]+":", r[1])
	}
}
