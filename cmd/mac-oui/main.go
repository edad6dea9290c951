package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	ouidb "github.com/pre-history/mac-oui"
)

const usage = "usage: mac-oui [-dir path | -file path] [-v] <MAC> [...] | echo <MAC> | mac-oui\n" +
	"       mac-oui -manufacturer <name> | -search <text> | -stats"

type options struct {
	dir          string
	file         string
	verbose      bool
	manufacturer string
	search       string
	stats        bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var o options
	fs := flag.NewFlagSet("mac-oui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dir, "dir", "", "data directory containing oui.csv")
	fs.StringVar(&o.file, "file", "", "assignment CSV file")
	fs.BoolVar(&o.verbose, "v", false, "print the whole record")
	fs.StringVar(&o.manufacturer, "manufacturer", "", "list the blocks assigned to a manufacturer")
	fs.StringVar(&o.search, "search", "", "list manufacturers whose name contains text")
	fs.BoolVar(&o.stats, "stats", false, "print database statistics")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := log.NewWithOptions(stderr, log.Options{Prefix: "mac-oui"})
	db, err := openDB(o, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		return 2
	}

	switch {
	case o.stats:
		printStats(stdout, db)
		return 0
	case o.manufacturer != "":
		recs := db.LookupByManufacturer(o.manufacturer)
		for _, r := range recs {
			printRecord(stdout, r, true)
		}
		if len(recs) == 0 {
			return 1
		}
		return 0
	case o.search != "":
		return search(stdout, db, o.search)
	}

	if rest := fs.Args(); len(rest) > 0 {
		for _, s := range rest {
			lookup(stdout, stderr, db, s, o.verbose)
		}
		return 0
	}

	// Read from stdin, one per line
	if f, ok := stdin.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprintln(stderr, usage)
			return 1
		}
	}

	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lookup(stdout, stderr, db, line, o.verbose)
		}
	}
	if err := sc.Err(); err != nil {
		logger.Error("read stdin", "error", err)
		return 2
	}
	return 0
}

func openDB(o options, logger *log.Logger) (*ouidb.DB, error) {
	switch {
	case o.file != "":
		return ouidb.Open(ouidb.WithDir(filepath.Dir(o.file)), ouidb.WithFile(filepath.Base(o.file)), ouidb.WithLogger(logger))
	case o.dir != "":
		return ouidb.Open(ouidb.WithDir(o.dir), ouidb.WithLogger(logger))
	}
	return ouidb.Default()
}

// lookup prints the company name for s, or an empty line when nothing matches.
func lookup(stdout, stderr io.Writer, db *ouidb.DB, s string, verbose bool) {
	rec, ok, err := db.Lookup(s)
	if err != nil {
		fmt.Fprintln(stderr, color.RedString("%v", err))
		fmt.Fprintln(stdout)
		return
	}
	if !ok {
		fmt.Fprintln(stdout)
		return
	}
	printRecord(stdout, rec, verbose)
}

func printRecord(w io.Writer, r ouidb.Record, verbose bool) {
	if !verbose {
		fmt.Fprintln(w, r.CompanyName)
		return
	}
	row := ouidb.RowFromRecord(r)
	name := color.New(color.FgHiBlue, color.Bold).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s\t%s\t%s", row.Prefix, row.BlockSize, name(r.CompanyName))
	if r.CountryCode != "" {
		fmt.Fprintf(w, "\t%s", r.CountryCode)
	}
	if r.IsPrivate {
		fmt.Fprintf(w, "\t%s", color.YellowString("private"))
	}
	if r.CompanyAddress != "" {
		fmt.Fprintf(w, "\t%s", dim(r.CompanyAddress))
	}
	fmt.Fprintln(w)
}

func search(w io.Writer, db *ouidb.DB, text string) int {
	needle := strings.ToLower(strings.TrimSpace(text))
	found := 0
	for _, m := range db.Manufacturers() {
		if strings.Contains(strings.ToLower(m), needle) {
			fmt.Fprintf(w, "%s\t%d\n", m, len(db.LookupByManufacturer(m)))
			found++
		}
	}
	if found == 0 {
		return 1
	}
	return 0
}

func printStats(w io.Writer, db *ouidb.DB) {
	label := color.New(color.FgHiBlue).SprintFunc()
	mans := db.Manufacturers()

	fmt.Fprintf(w, "%s %d\n", label("records:"), db.Len())
	fmt.Fprintf(w, "%s %d\n", label("manufacturers:"), len(mans))
	fmt.Fprintf(w, "%s %d\n", label("ouis:"), len(db.OUIs()))
	fmt.Fprintf(w, "%s %d\n", label("warnings:"), len(db.Warnings()))
	if len(mans) > 0 {
		fmt.Fprintf(w, "%s %s .. %s\n", label("range:"), mans[0], mans[len(mans)-1])
	}
}
