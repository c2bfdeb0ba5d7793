// Command padgen creates a one-time pad and its metadata
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/lbms-node/pkg/crypto"
)

var (
	outDir     = flag.String("out", "Pad", "Directory to write OTP.otp and OTPMeta.json into")
	blockSize  = flag.Int("block-size", crypto.DefaultBlockSize, "Bytes per block")
	blockCount = flag.Int("blocks", crypto.DefaultBlockCount, "Number of blocks (at most 65536)")
	verify     = flag.Bool("verify", false, "Verify the pad in -out against its digest instead of creating one")
)

func main() {
	flag.Parse()

	if *verify {
		verifyPad(*outDir)
		return
	}

	if err := os.MkdirAll(*outDir, 0700); err != nil {
		logrus.Fatalf("Failed to create output directory: %v", err)
	}

	meta, err := crypto.CreatePad(*outDir, *blockSize, *blockCount)
	if err != nil {
		logrus.Fatalf("Failed to create pad: %v", err)
	}

	fmt.Println("✓ Pad created")
	fmt.Printf("   OTP ID:     %s\n", meta.OTPID)
	fmt.Printf("   Pad file:   %s (%d bytes)\n", meta.PadFile, meta.PadSize())
	fmt.Printf("   Metadata:   %s\n", meta.MetaFile)
	fmt.Printf("   Blocks:     %d x %d bytes\n", meta.BlockCount, meta.BlockSize)
	fmt.Printf("   Digest:     %s\n", meta.Digest)
	fmt.Println()
	fmt.Println("Copy both files to every station that shares this pad.")
}

func verifyPad(dir string) {
	pad, err := crypto.OpenPadDir(dir)
	if err != nil {
		logrus.Fatalf("Pad check failed: %v", err)
	}
	defer pad.Close()

	meta := pad.Metadata()
	fmt.Printf("✓ Pad %s verified\n", meta.OTPID)
	fmt.Printf("   Next block: %d\n", meta.CurrentBlockID)
	fmt.Printf("   Remaining:  %d blocks\n", pad.Remaining())
}
