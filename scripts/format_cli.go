package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"codescrybe/internal/config"
	"codescrybe/internal/markdown"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Interactive harness for the message formatter. Paste a chat reply,
// terminate it with a lone ".", and inspect the node tree and the
// sanitized HTML the API would serve.
func main() {
	logFile, err := config.SetupLogFile("logs", 5)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))
	formatter := markdown.NewFormatter(logger)
	renderer := markdown.NewRenderer()

	fmt.Printf("%s=== codescrybe formatter CLI ===%s\n", colorCyan, colorReset)
	fmt.Println("Enter a message, then a single '.' on its own line. Ctrl+D to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Printf("\n%s> %s", colorGreen, colorReset)

		var lines []string
		for scanner.Scan() {
			line := scanner.Text()
			if line == "." {
				break
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			if scanner.Err() == nil {
				fmt.Println("\nbye")
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", scanner.Err())
			return
		}

		raw := strings.Join(lines, "\n")
		nodes := formatter.Format(raw)

		pretty, err := json.MarshalIndent(nodes, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal nodes: %v\n", err)
			continue
		}

		fmt.Printf("%s--- nodes (%d) ---%s\n%s\n", colorBlue, len(nodes), colorReset, pretty)
		fmt.Printf("%s--- html ---%s\n%s\n", colorYellow, colorReset, renderer.Render(nodes))
	}
}
