package main

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/finboard/dashboard"
)

// defaultHost is the page the dashboard is mounted into when --page is unset.
var defaultHost = template.Must(template.New("host").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.}} - Financial Analysis</title></head>
<body>
<h1>{{.}}</h1>
<div id="financial-dashboard"></div>
</body>
</html>
`))

// renderCmd renders a company dashboard to a static HTML document.
var renderCmd = &cobra.Command{
	Use:   "render SYMBOL",
	Short: "Render a company dashboard as HTML",
	Long: `Fetch metrics for SYMBOL and render the dashboard as static HTML.

The dashboard is mounted into the #financial-dashboard element of the host
page given by --page, or into a minimal built-in page. With --fragment only
the dashboard markup is written.

Example:
  finboard render VALE > vale.html
  finboard render --page report.html --out vale.html VALE`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addConfigFlag(renderCmd, false)
	renderCmd.Flags().String("page", "", "host HTML page containing #financial-dashboard")
	renderCmd.Flags().String("out", "", "output file (default stdout)")
	renderCmd.Flags().Bool("fragment", false, "write only the dashboard markup")
}

func runRender(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.fb.Fetch(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", args[0], err)
	}
	dm := s.Metrics.Dashboard()

	render := func(w io.Writer) error {
		if fragment, _ := cmd.Flags().GetBool("fragment"); fragment {
			return dashboard.New(&dm).Render(w)
		}
		host, err := hostPage(cmd, s.Symbol)
		if err != nil {
			return err
		}
		if err := dashboard.RenderPage(w, host, &dm); err != nil {
			return fmt.Errorf("failed to render page: %w", err)
		}
		return nil
	}

	if path, _ := cmd.Flags().GetString("out"); path != "" {
		return writeFile(path, render)
	}
	return render(cmd.OutOrStdout())
}

// writeFile creates path and fills it with write. The file is removed when
// writing or closing fails.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}

// hostPage opens --page, or renders the built-in page for symbol.
func hostPage(cmd *cobra.Command, symbol string) (io.Reader, error) {
	path, _ := cmd.Flags().GetString("page")
	if path == "" {
		var b strings.Builder
		if err := defaultHost.Execute(&b, symbol); err != nil {
			return nil, err
		}
		return strings.NewReader(b.String()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read host page: %w", err)
	}
	return strings.NewReader(string(data)), nil
}
