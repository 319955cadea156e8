// Command pocketcodec compresses and decompresses fixed-length spacecraft
// housekeeping packet streams using the CCSDS 124.0-B-1 POCKET+ algorithm.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/stratolink/pocketcodec/container"
	"github.com/stratolink/pocketcodec/session"
	"github.com/stratolink/pocketcodec/transport"
)

func usage(progName string) {
	fmt.Fprintf(os.Stderr, "CCSDS 124.0-B-1 POCKET+ housekeeping packet codec\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  %s <input> <packet_size> <pt> <ft> <rt> <robustness>  compress\n", progName)
	fmt.Fprintf(os.Stderr, "  %s -d <input.pkt> <packet_size> <robustness>          decompress\n", progName)
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	decompressMode := flag.Bool("d", false, "decompress (default is compress)")
	containerFlag := flag.String("container", "none", "archival container: none, gzip, s2, lz4")
	lossyRate := flag.Float64("lossy", 0, "simulate this fraction (0-1) of transport frames being dropped")
	flag.Usage = func() { usage(os.Args[0]) }
	flag.Parse()

	args := flag.Args()

	codecType, err := parseContainer(*containerFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *decompressMode {
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "Error: decompress requires <input.pkt> <packet_size> <robustness>")
			usage(os.Args[0])
			os.Exit(1)
		}
		os.Exit(runDecompress(args[0], atoiOrDie("packet_size", args[1]), atoiOrDie("robustness", args[2]), codecType))
	}

	if len(args) != 6 {
		fmt.Fprintln(os.Stderr, "Error: compress requires <input> <packet_size> <pt> <ft> <rt> <robustness>")
		usage(os.Args[0])
		os.Exit(1)
	}
	os.Exit(runCompress(
		args[0],
		atoiOrDie("packet_size", args[1]),
		atoiOrDie("pt", args[2]),
		atoiOrDie("ft", args[3]),
		atoiOrDie("rt", args[4]),
		atoiOrDie("robustness", args[5]),
		codecType,
		*lossyRate,
	))
}

func parseContainer(name string) (container.CompressionType, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return container.CompressionNone, nil
	case "gzip":
		return container.CompressionGzip, nil
	case "s2":
		return container.CompressionS2, nil
	case "lz4":
		return container.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown container %q (want none, gzip, s2, or lz4)", name)
	}
}

func atoiOrDie(name, s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("Error: %s must be an integer, got %q", name, s)
	}
	return n
}

func runCompress(inputPath string, packetSize, pt, ft, rt, robustness int, codecType container.CompressionType, lossyRate float64) int {
	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open input file: %s\n", inputPath)
		return 1
	}
	if len(inputData) == 0 {
		fmt.Fprintln(os.Stderr, "Error: input file is empty")
		return 1
	}
	if len(inputData)%packetSize != 0 {
		fmt.Fprintf(os.Stderr, "Error: input size (%d) not divisible by packet size (%d)\n", len(inputData), packetSize)
		return 1
	}

	comp, err := session.NewCompressor(packetSize*8, session.WithRobustness(robustness), session.WithSchedule(pt, ft, rt))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer comp.Release()

	outputData, err := comp.Compress(inputData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: compression failed: %v\n", err)
		return 1
	}

	if lossyRate > 0 {
		demonstrateLossRecovery(packetSize*8, robustness, lossyRate)
	}

	if codecType != container.CompressionNone {
		codec, err := container.CreateCodec(codecType, "compressed output")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		archived, err := codec.Compress(outputData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: container compress failed: %v\n", err)
			return 1
		}
		stats := container.CompressionStats{Algorithm: codecType, OriginalSize: int64(len(outputData)), CompressedSize: int64(len(archived))}
		fmt.Printf("Container:   %s (%.1f%% smaller)\n", codecType, stats.SpaceSavings())
		outputData = archived
	}

	outputPath := inputPath + ".pkt"
	if err := os.WriteFile(outputPath, outputData, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write output file: %s\n", outputPath)
		return 1
	}

	numPackets := len(inputData) / packetSize
	ratio := float64(len(inputData)) / float64(len(outputData))
	fmt.Printf("Input:       %s (%d bytes, %d packets)\n", inputPath, len(inputData), numPackets)
	fmt.Printf("Output:      %s (%d bytes)\n", outputPath, len(outputData))
	fmt.Printf("Ratio:       %.2fx\n", ratio)
	fmt.Printf("Parameters:  R=%d, pt=%d, ft=%d, rt=%d\n", robustness, pt, ft, rt)

	return 0
}

func runDecompress(inputPath string, packetSize, robustness int, codecType container.CompressionType) int {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open input file: %s\n", inputPath)
		return 1
	}
	if len(raw) == 0 {
		fmt.Fprintln(os.Stderr, "Error: input file is empty")
		return 1
	}

	if codecType != container.CompressionNone {
		codec, err := container.CreateCodec(codecType, "decompress input")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		raw, err = codec.Decompress(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: container decompress failed: %v\n", err)
			return 1
		}
	}

	decomp, err := session.NewDecompressor(packetSize*8, session.WithRobustness(robustness))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	output, err := decomp.Decompress(raw, len(raw)*8)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: decompression failed: %v\n", err)
		return 1
	}

	outputPath := makeDecompressFilename(inputPath)
	if err := os.WriteFile(outputPath, output, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write output file: %s\n", outputPath)
		return 1
	}

	numPackets := len(output) / packetSize
	fmt.Printf("Input:       %s (%d bytes)\n", inputPath, len(raw))
	fmt.Printf("Output:      %s (%d bytes, %d packets)\n", outputPath, len(output), numPackets)
	fmt.Printf("Parameters:  packet_size=%d, R=%d\n", packetSize, robustness)

	return 0
}

func makeDecompressFilename(input string) string {
	if strings.HasSuffix(input, ".pkt") {
		return strings.TrimSuffix(input, ".pkt") + ".depkt"
	}
	return input + ".depkt"
}

// demonstrateLossRecovery frames a throwaway packet sequence through a
// LossySimulator to show how NotifyPacketLoss keeps a live decompressor
// synchronized; it is a demonstration path only, not the real compress
// output's transport.
func demonstrateLossRecovery(frameBits, robustness int, rate float64) {
	decomp, err := session.NewDecompressor(frameBits, session.WithRobustness(robustness))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: lossy demo skipped: %v\n", err)
		return
	}

	var sink discardWriter
	fw := transport.NewWriter(&sink)
	sim := transport.NewLossySimulator(fw, rate, 1)

	dropped, notified := 0, 0
	const demoFrames = 50
	for i := 0; i < demoFrames; i++ {
		sent, err := sim.Send([]byte{byte(i)})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: lossy demo failed: %v\n", err)
			return
		}
		if !sent {
			dropped++
			continue
		}
		if gap := sim.DrainLoss(); gap > 0 {
			decomp.NotifyPacketLoss(gap)
			notified += gap
		}
	}

	fmt.Printf("Lossy demo:  rate=%.2f, dropped %d/%d frames, %d reported to the decompressor\n", rate, dropped, demoFrames, notified)
}

type discardWriter struct{}

func (*discardWriter) Write(p []byte) (int, error) { return len(p), nil }
