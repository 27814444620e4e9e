package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/address"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/occupancy"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func describe(r address.Result) string {
	if r.Kind != address.Parsed {
		if r.Kind == address.Ambiguous {
			return fmt.Sprintf("ambiguous (repeated %s)", r.Conflict)
		}
		return r.Kind.String()
	}
	num, ok := r.Number()
	if !ok {
		num = "-"
	}
	return fmt.Sprintf("number %s, street %q", num, r.Street())
}

// renderVerdict prints one classification in the same label layout as the
// rest of the command output.
func renderVerdict(w io.Writer, color bool, c *occupancy.Classifier, property, taxpayer, name sql.NullString) {
	paint := func(s, code string) string {
		if !color {
			return s
		}
		return code + s + colorReset
	}

	corporate := occupancy.IsCorporate(name)
	res := c.Classify(property, taxpayer, corporate)

	verdict := paint("No", colorRed)
	if res.IsOwnerOccupied {
		verdict = paint("Yes", colorGreen)
	}

	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "Property address  : %s\n", property.String)
	fmt.Fprintf(w, "  parsed          : %s\n", describe(address.Parse(c.Tagger, property)))
	fmt.Fprintf(w, "Taxpayer address  : %s\n", taxpayer.String)
	fmt.Fprintf(w, "  parsed          : %s\n", describe(address.Parse(c.Tagger, taxpayer)))
	if name.Valid {
		fmt.Fprintf(w, "Taxpayer name     : %s\n", name.String)
	}
	fmt.Fprintf(w, "Corporate owner   : %t\n", corporate)
	fmt.Fprintf(w, "Similarity score  : %.2f (threshold %.2f)\n", res.SimilarityScore, c.Threshold)
	fmt.Fprintf(w, "Owner occupied    : %s\n", verdict)
	fmt.Fprintln(w, strings.Repeat("-", 80))
}

func createClassifyCmd() *cobra.Command {
	var taxpayerName string
	cmd := &cobra.Command{
		Use:   "classify <property-address> <taxpayer-address>",
		Short: "Classify one property/taxpayer address pair",
		Long:  `Run the owner-occupancy rules on a single address pair and print the parse, the similarity score and the verdict.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClassifier()
			if err != nil {
				return err
			}
			color := term.IsTerminal(int(os.Stdout.Fd()))
			renderVerdict(cmd.OutOrStdout(), color, c, nullable(args[0]), nullable(args[1]), nullable(taxpayerName))
			return nil
		},
	}
	cmd.Flags().StringVar(&taxpayerName, "taxpayer-name", "", "taxpayer name, checked for corporate markers")
	return cmd
}
