// Command preprocess converts attestation test fixtures into Cairo source
// literals: it rewrites the PEM certificate chain of binary quotes to DER,
// embeds PEM certificates and arbitrary binary files as byte array constants,
// and maps QE Identity and TCB Info collateral documents to struct literals.
package main

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/urfave/cli/v2"

	"github.com/dcap-cairo/preprocess/convert"
)

func main() {
	log15.Root().SetHandler(log15.StreamHandler(os.Stderr, log15.LogfmtFormat()))

	app := &cli.App{
		Name:  "preprocess",
		Usage: "convert attestation test fixtures into Cairo source literals",
		Commands: []*cli.Command{
			newCommand("quote", "rewrite the PEM certificate chain of a binary quote to length-prefixed DER", convert.Quote),
			newCommand("pem", "convert the certificates of a PEM file into a byte array literal", convert.PEM),
			newCommand("include-bytes", "convert an arbitrary binary file into a byte array literal", convert.IncludeBytes),
			newCommand("qeidentity", "convert a QE Identity JSON document into a struct literal", convert.QEIdentity),
			newCommand("tcbinfo", "convert a TCB Info JSON document into a struct literal", convert.TCBInfo),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log15.Error("preprocessing failed", "error", err)
		os.Exit(1)
	}
}

// newCommand wraps a bytes-in, bytes-out converter as a CLI subcommand.
// The output file is only written after the conversion succeeded, so a failed
// run never truncates or replaces an existing output.
func newCommand(name, usage string, convertFunc func([]byte) ([]byte, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Usage:    "path to the input file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "path to the output file (defaults to stdout)",
			},
		},
		Action: func(ctx *cli.Context) error {
			input := ctx.String("input")
			output := ctx.String("output")

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("reading input file: %w", err)
			}

			converted, err := convertFunc(data)
			if err != nil {
				return fmt.Errorf("converting %s: %w", input, err)
			}

			if output == "" {
				_, err := os.Stdout.Write(converted)
				return err
			}
			if err := os.WriteFile(output, converted, 0o644); err != nil {
				return fmt.Errorf("writing output file: %w", err)
			}

			log15.Info("conversion succeeded", "command", name, "input", input, "output", output)
			return nil
		},
	}
}
