package main

import (
	"fmt"
	"os"
	"strings"

	"damo_go/benchmark"
	"damo_go/config"
	"damo_go/damo"
	"damo_go/history"
	"damo_go/motif_sim"
	"damo_go/sanity_check"
	"damo_go/site_scan"
)

// printCustomHelp formats a custom help menu
func printCustomHelp() {
	fmt.Println(`DAMO Go - Custom Help Menu
Usage:
  damo_go <tool> [options]

Tools:
  damo			Discriminatively optimize a JASPAR PWM
			damo [options] <positive_seqs> <negative_seqs> <jaspar_profile>
  scan			Report the best motif site of every sequence
  motif_sim		Simulate positive/negative FASTA with planted sites
  history		List or show runs recorded with damo -history
  check			Run diagnostic self-test

Global Flags:
  -h, -help		Show this help message
  -v, -version		Show version information

Benchmarking:
  -benchmark		Must be used in association with a tool.
			Reports computational resource usage and
			pertinent operating system information to stderr
  `,
	)
	os.Exit(0)
}

func printVersion() {
	fmt.Println("DAMO Go - Version Information Menu")
	fmt.Println("Central Executable:")
	fmt.Printf("\tDAMO Go:\t\t%s\n", config.Main_version)
	fmt.Printf("\nModular tools:\n")
	fmt.Printf("\tDAMO:\t\t\t%s\n", config.DAMO)
	fmt.Printf("\tSite Scan:\t\t%s\n", config.Site_Scan)
	fmt.Printf("\tMotif Simulator:\t%s\n", config.Motif_Sim)
	fmt.Printf("\tRun History:\t\t%s\n", config.History)
	fmt.Printf("\tSanity Check:\t\t%s\n", config.Sanity_check)
	fmt.Printf("\tBenchmark:\t\t%s\n", config.Benchmark)
	fmt.Println("")

	os.Exit(0)
}

// Main controller
func main() {

	// If no arguments are given, show help
	if len(os.Args) < 2 {
		printCustomHelp()
	}

	// Executable-level help only when no tool was named
	if len(os.Args) == 2 && (os.Args[1] == "-h" || os.Args[1] == "-help") {
		printCustomHelp()
	}

	// Version request
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "-version" {
			printVersion()
		}
	}

	toolName := os.Args[1]
	toolArgs := os.Args[2:]

	// Check for global -benchmark flag
	benchmarking := false
	var cleanedArgs []string
	for _, arg := range toolArgs {
		if arg == "-benchmark" {
			benchmarking = true
		} else {
			cleanedArgs = append(cleanedArgs, arg)
		}
	}

	// Tool execution wrapper
	run := func() {
		switch toolName {
		case "damo":
			damo.Run(cleanedArgs)
		case "scan":
			site_scan.Run(cleanedArgs)
		case "motif_sim":
			motif_sim.Run(cleanedArgs)
		case "history":
			history.Run(cleanedArgs)
		case "check":
			sanity_check.Run(cleanedArgs)
		default:
			fmt.Fprintf(os.Stderr, "Unknown tool: %s\n", toolName)
			os.Exit(1)
		}
	}

	if benchmarking {
		label := fmt.Sprintf("damo_go %s %s", toolName, strings.Join(cleanedArgs, " "))
		benchmark.Run(label, os.Stderr, run)
	} else {
		run()
	}
}
