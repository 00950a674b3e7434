package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/rsacalc/internal/output"
	"github.com/user/rsacalc/internal/rsacore"
	"github.com/user/rsacalc/internal/server"
	"github.com/user/rsacalc/internal/storage"
	"github.com/user/rsacalc/internal/verify"
	"github.com/user/rsacalc/pkg/sysinfo"
)

var (
	pFlag        string
	qFlag        string
	eFlag        string
	mFlag        string
	outputFormat string
	outputFile   string
	verbose      bool
	showTrace    bool
	verifyMode   bool
	samples      int
	parallel     int
	showProgress bool
	timeout      int
	webMode      bool
	webPort      string
	dbPath       string
)

var rootCmd = &cobra.Command{
	Use:   "rsacalc",
	Short: "A textbook RSA arithmetic calculator",
	Long: `rsacalc walks through the arithmetic of RSA step by step: modulus and
totient from a prime pair, the private exponent via the extended
Euclidean algorithm, then encryption and decryption of a numeric
message by square-and-multiply modular exponentiation.

Run with no arguments it computes the classic example (p=61, q=53,
e=17, M=65) and prints every intermediate value. All parameters accept
arbitrary-precision decimal strings.`,
	RunE: runDemo,
}

func init() {
	rootCmd.Flags().StringVarP(&pFlag, "prime-p", "p", "61", "First prime p")
	rootCmd.Flags().StringVarP(&qFlag, "prime-q", "q", "53", "Second prime q")
	rootCmd.Flags().StringVarP(&eFlag, "exponent", "e", "17", "Public exponent e")
	rootCmd.Flags().StringVarP(&mFlag, "message", "m", "65", "Message M (must be below p*q)")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format (text, table, json, csv)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (includes system info)")
	rootCmd.Flags().BoolVar(&showTrace, "trace", false, "Show the extended Euclidean step trace")
	rootCmd.Flags().BoolVar(&verifyMode, "verify", false, "Sweep the round-trip property over a message range")
	rootCmd.Flags().IntVar(&samples, "samples", 1000, "Number of messages to check in verify mode")
	rootCmd.Flags().IntVar(&parallel, "parallel", 0, "Parallel workers in verify mode (0 = NumCPU)")
	rootCmd.Flags().BoolVar(&showProgress, "progress", true, "Show progress bar in verify mode")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", 300, "Timeout in seconds for verify mode")
	rootCmd.Flags().BoolVarP(&webMode, "web", "w", false, "Run in web server mode")
	rootCmd.Flags().StringVar(&webPort, "port", "8080", "Web server port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite file for persisting solve history")
}

func runDemo(cmd *cobra.Command, args []string) error {
	var db *storage.DB
	if dbPath != "" {
		var err error
		db, err = storage.OpenDB(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
	}

	if webMode {
		srv, err := server.NewServer(webPort, db)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		fmt.Printf("Starting rsacalc web server on http://localhost:%s\n", webPort)
		fmt.Println("Press Ctrl+C to stop")

		return srv.Start()
	}

	sysInfo, err := sysinfo.Collect()
	if err != nil {
		return fmt.Errorf("failed to collect system info: %w", err)
	}

	params, err := rsacore.ParseParams(pFlag, qFlag, eFlag, mFlag)
	if err != nil {
		return err
	}

	result, err := rsacore.Solve(params)
	if err != nil {
		return err
	}

	if db != nil {
		if err := db.SaveSolve(storage.NewSolveRecord(result)); err != nil {
			return fmt.Errorf("failed to persist solve: %w", err)
		}
	}

	var verification *verify.Result
	if verifyMode {
		config := verify.Config{
			Samples:      samples,
			Parallel:     parallel,
			ShowProgress: showProgress,
			Timeout:      timeout,
			Verbose:      verbose,
		}
		v, err := verify.NewRunner(config, params).Run()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		verification = &v
	}

	formatter, err := output.NewFormatter(outputFormat)
	if err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	writer := os.Stdout
	if outputFile != "" {
		writer, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer writer.Close()
	}

	data := output.Data{
		SystemInfo:   sysInfo,
		Result:       result,
		Verification: verification,
		ShowTrace:    showTrace,
		Verbose:      verbose,
	}
	if err := formatter.Format(writer, data); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if verification != nil && !verification.OK() {
		return fmt.Errorf("round-trip property failed for %d of %d messages", verification.Failures, verification.Checked)
	}

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
