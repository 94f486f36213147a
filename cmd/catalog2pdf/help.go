package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: catalog2pdf [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Render the product catalog to PDF (default)")
	fmt.Fprintln(w, "  serve      Run the HTTP service (product CRUD + PDF generation)")
	fmt.Fprintln(w, "  import     Copy a product file into PostgreSQL")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'catalog2pdf help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: catalog2pdf generate [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the product list to a PDF catalog.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "      --data <path>         Product list (default ./dados.json)")
	fmt.Fprintln(w, "      --images <dir>        Product images (default ./imagens)")
	fmt.Fprintln(w, "  -o, --out <path>          PDF output (default ./catalogo.pdf)")
	fmt.Fprintln(w, "      --html                Also write the composed HTML")
	fmt.Fprintln(w, "      --backup-dir <dir>    Move the previous output into <dir>")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Catalog:")
	fmt.Fprintln(w, "      --titulo <s>          Title (default \"Catálogo de Produtos\")")
	fmt.Fprintln(w, "      --cols <n>            Grid columns, clamped to 1-4 (default 2)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (default 30s)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles and templates")
	fmt.Fprintln(w, "      --style <name>        Style name or CSS file path")
	fmt.Fprintln(w)
	printOutputUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: catalog2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  GET    /api/produtos        List products")
	fmt.Fprintln(w, "  POST   /api/produtos        Add a product")
	fmt.Fprintln(w, "  PUT    /api/produtos/:id    Replace a product")
	fmt.Fprintln(w, "  DELETE /api/produtos/:id    Remove a product")
	fmt.Fprintln(w, "  POST   /api/gerar-pdf       Back up, render and write the PDF")
	fmt.Fprintln(w, "  GET    /api/catalogo.pdf    Stream the PDF (?titulo=&cols=)")
	fmt.Fprintln(w, "  GET    /metrics, /healthz")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :3000)")
	fmt.Fprintln(w, "      --data <path>         Product list (default ./dados.json)")
	fmt.Fprintln(w, "      --images <dir>        Product images (default ./imagens)")
	fmt.Fprintln(w, "  -o, --out <path>          PDF output for /api/gerar-pdf")
	fmt.Fprintln(w, "      --static <dir>        Serve files for unmatched GET requests")
	fmt.Fprintln(w, "  -w, --workers <n>         Browser pool size (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (default 30s)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles and templates")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printOutputUsage(w)
}

// printImportUsage prints usage for the import command.
func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: catalog2pdf import [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Replace the produtos table with the contents of a product file.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --data <path>         Product list (default ./dados.json)")
	fmt.Fprintln(w, "      --postgres-dsn <dsn>  PostgreSQL connection string")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printOutputUsage(w)
}

func printOutputUsage(w io.Writer) {
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed progress")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  CATALOG_*                 Override config fields (read from .env too)")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN           Chrome/Chromium binary to use")
}

// runHelp prints help for a command, or the main usage.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "import":
		printImportUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: catalog2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: catalog2pdf help [command]")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
	}
}
