// Command dictbuild splits a CSV word list into LBMS dictionary files
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/dictionary"
)

var (
	input  = flag.String("in", "unigram_freq.csv", "CSV word list, one word per row in the first column")
	outDir = flag.String("out", "Dictionaries", "Output directory for dictNN.json files")
)

func main() {
	flag.Parse()

	f, err := os.Open(*input)
	if err != nil {
		logrus.Fatalf("Failed to open word list: %v", err)
	}
	defer f.Close()

	words, err := dictionary.ReadWordList(f)
	if err != nil {
		logrus.Fatalf("Failed to read word list: %v", err)
	}

	paths, err := dictionary.WriteDictionaries(*outDir, words)
	if err != nil {
		logrus.Fatalf("Failed to write dictionaries: %v", err)
	}

	fmt.Printf("✓ %d words written to %d dictionaries\n", len(words), len(paths))
	for _, p := range paths {
		fmt.Printf("   %s\n", p)
	}
}
