// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Exzap/wut-tools/go/rpl"
)

const usageString = `elf2rpl - convert a PowerPC ELF into a Cafe OS RPL/RPX file

Usage: %s [flags] <src.elf> <dst.rpl>

`

var (
	rplOutput = flag.Bool("rpl", false, "produce an RPL module instead of an RPX executable")
	showHelp  = flag.Bool("help", false, "print usage and exit")
)

func init() {
	flag.BoolVar(rplOutput, "r", false, "shorthand for -rpl")
	flag.BoolVar(showHelp, "H", false, "shorthand for -help")
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showHelp {
		usage()
		return
	}

	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}

	if err := runConvert(flag.Arg(0), flag.Arg(1), *rplOutput); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runConvert(src, dst string, asRpl bool) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	flags := rpl.IsRpxFlag
	if asRpl {
		flags = 0
	}

	return rpl.Convert(in, out, flags)
}
