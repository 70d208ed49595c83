package main

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/homier/smallmap"
	"github.com/homier/smallmap/internal/codec"
)

var countCmd = &cli.Command{
	Name:      "count",
	Usage:     "count tokens of the given files (stdin when none)",
	ArgsUsage: "[FILE...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "split",
			Usage: "token boundary: words or lines",
			Value: "words",
		},
		&cli.BoolFlag{
			Name:  "ignore-case",
			Usage: "fold tokens to lower case before counting",
		},
		&cli.UintFlag{
			Name:  "min",
			Usage: "drop tokens counted fewer than this many times",
		},
	},
	Action: func(cctx *cli.Context) error {
		c, err := formatCodec(cctx)
		if err != nil {
			return err
		}

		split, err := splitFunc(cctx.String("split"))
		if err != nil {
			return err
		}

		counter := smallmap.NewCounter[string]()
		fold := cctx.Bool("ignore-case")

		err = eachInput(cctx.Args().Slice(), func(name string, r io.Reader) error {
			n, err := countTokens(r, split, fold, counter)
			if err != nil {
				return fmt.Errorf("counting %s: %w", name, err)
			}

			slog.Debug("counted input", "input", name, "tokens", n, "distinct", counter.Len())

			return nil
		})
		if err != nil {
			return err
		}

		if minCount := cctx.Uint("min"); minCount > 0 {
			counter.Retain(func(_ string, count *uint) bool {
				return *count >= minCount
			})
		}

		warnSpilled(counter)

		return writeCounter(cctx.App.Writer, c, counter)
	},
}

var mergeCmd = &cli.Command{
	Name:      "merge",
	Usage:     "sum previously written counters",
	ArgsUsage: "FILE...",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "prune",
			Usage: "drop keys whose merged count is zero",
		},
	},
	Action: func(cctx *cli.Context) error {
		c, err := formatCodec(cctx)
		if err != nil {
			return err
		}

		if cctx.NArg() == 0 {
			return fmt.Errorf("merge needs at least one input")
		}

		merged := smallmap.NewCounter[string]()

		for _, path := range cctx.Args().Slice() {
			in, err := readCounter(path, c)
			if err != nil {
				return err
			}

			mergeInto(merged, in)
			slog.Debug("merged counter", "input", path, "distinct", merged.Len())
		}

		if cctx.Bool("prune") {
			merged.Prune()
		}

		warnSpilled(merged)

		return writeCounter(cctx.App.Writer, c, merged)
	},
}

var subtractCmd = &cli.Command{
	Name:      "subtract",
	Usage:     "take the counts of SUB away from BASE, stopping at zero",
	ArgsUsage: "BASE SUB",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "prune",
			Usage: "drop keys whose count reached zero",
		},
	},
	Action: func(cctx *cli.Context) error {
		c, err := formatCodec(cctx)
		if err != nil {
			return err
		}

		if cctx.NArg() != 2 {
			return fmt.Errorf("subtract needs exactly two inputs, got %d", cctx.NArg())
		}

		base, err := readCounter(cctx.Args().Get(0), c)
		if err != nil {
			return err
		}

		sub, err := readCounter(cctx.Args().Get(1), c)
		if err != nil {
			return err
		}

		if missed := subtract(base, sub); missed > 0 {
			slog.Info("some removals had nothing left to take", "missed", missed)
		}

		if cctx.Bool("prune") {
			base.Prune()
		}

		return writeCounter(cctx.App.Writer, c, base)
	},
}

var topCmd = &cli.Command{
	Name:      "top",
	Usage:     "print the most frequent keys of a written counter",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "n",
			Aliases: []string{"limit"},
			Usage:   "number of keys to print",
			Value:   10,
		},
	},
	Action: func(cctx *cli.Context) error {
		c, err := formatCodec(cctx)
		if err != nil {
			return err
		}

		if cctx.NArg() != 1 {
			return fmt.Errorf("top needs exactly one input, got %d", cctx.NArg())
		}

		counter, err := readCounter(cctx.Args().First(), c)
		if err != nil {
			return err
		}

		for _, p := range topN(counter, cctx.Int("n")) {
			fmt.Fprintf(cctx.App.Writer, "%d\t%s\n", p.Value, p.Key)
		}

		return nil
	},
}

func splitFunc(name string) (bufio.SplitFunc, error) {
	switch name {
	case "words":
		return bufio.ScanWords, nil
	case "lines":
		return bufio.ScanLines, nil
	}

	return nil, fmt.Errorf("unknown split mode %q (want words or lines)", name)
}

// eachInput calls fn for every named file, or once for stdin when there are
// no names. "-" also means stdin.
func eachInput(paths []string, fn func(name string, r io.Reader) error) error {
	if len(paths) == 0 {
		return fn("-", os.Stdin)
	}

	for _, path := range paths {
		if path == "-" {
			if err := fn(path, os.Stdin); err != nil {
				return err
			}
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}

		err = fn(path, f)
		f.Close()

		if err != nil {
			return err
		}
	}

	return nil
}

// countTokens adds every token of r to counter and returns how many it saw.
func countTokens(r io.Reader, split bufio.SplitFunc, fold bool, counter *smallmap.Counter[string]) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(split)

	n := 0
	for scanner.Scan() {
		token := scanner.Text()
		if fold {
			token = strings.ToLower(token)
		}

		counter.Add(token)
		n++
	}

	return n, scanner.Err()
}

func mergeInto(dst, src *smallmap.Counter[string]) {
	for key, count := range src.All() {
		dst.AddN(key, count)
	}
}

// subtract removes the counts of sub from base one occurrence at a time and
// returns how many removals found nothing left to take.
func subtract(base, sub *smallmap.Counter[string]) uint {
	var missed uint

	for key, count := range sub.All() {
		for range count {
			if !base.Remove(key) {
				missed++
			}
		}
	}

	return missed
}

// topN returns up to n pairs ordered by descending count, ties by key.
func topN(counter *smallmap.Counter[string], n int) []smallmap.Pair[string, uint] {
	pairs := slices.Clone(counter.AsSlice())

	// The counter is already sorted by key, a stable sort keeps ties in key order.
	slices.SortStableFunc(pairs, func(a, b smallmap.Pair[string, uint]) int {
		return cmp.Compare(b.Value, a.Value)
	})

	if n >= 0 && n < len(pairs) {
		pairs = pairs[:n]
	}

	return pairs
}

func readCounter(path string, c codec.Codec) (*smallmap.Counter[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	counter := smallmap.NewCounter[string]()
	if err := c.Unmarshal(data, counter); err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", path, c.Name(), err)
	}

	return counter, nil
}

func writeCounter(w io.Writer, c codec.Codec, counter *smallmap.Counter[string]) error {
	data, err := c.Marshal(counter)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func warnSpilled(counter *smallmap.Counter[string]) {
	if stats := counter.Stats(); stats.Spilled {
		slog.Warn("counter outgrew its inline buffer", "distinct", stats.Size, "inline", stats.InlineCapacity)
	}
}
