// Command inpaint fills a masked hole in an image by greedy
// exemplar-based patch copying, alongside the usual
// -debug-dir/-report/-interactive trimmings a command-line image tool
// carries.
//
// Usage:
//
//	inpaint IMAGE MASK PATCH_HALF_WIDTH OUTPUT [flags]
//
// Exit codes: 0 success, 1 argument error, 2 runtime error.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Fepozopo/inpaint/pkg/accept"
	"github.com/Fepozopo/inpaint/pkg/cli"
	"github.com/Fepozopo/inpaint/pkg/engine"
	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/overlay"
	"github.com/Fepozopo/inpaint/pkg/rasterio"
	"github.com/Fepozopo/inpaint/pkg/report"
	"github.com/Fepozopo/inpaint/pkg/search"
	"github.com/Fepozopo/inpaint/pkg/verify"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// pkg/cli's init() already calls godotenv.Load() for a .env file in
	// the working directory before main ever runs.
	fs := flag.NewFlagSet("inpaint", flag.ContinueOnError)
	maxForwardLook := fs.Int("k", envInt("INPAINT_MAX_FORWARD_LOOK", 10), "max forward-look target patches per step")
	topPatches := fs.Int("n", envInt("INPAINT_TOP_PATCHES", search.DefaultTopPatches), "top-N ranked source candidates kept per target")
	acceptName := fs.String("accept", "", "acceptance visitor: avg|variance|composite (default: accept first ranked candidate)")
	diffName := fs.String("diff", "ssd", "patch difference function: ssd|luminance|hsv|gmh")
	continuation := fs.Bool("continuation", false, "re-rank the top-N by isophote continuation before acceptance")
	debugDir := fs.String("debug-dir", os.Getenv("INPAINT_DEBUG_DIR"), "directory to write per-iteration target/source overlay images")
	reportPath := fs.String("report", "", "write an HTML progress chart (hole count / priority / patches) to this path")
	interactive := fs.Bool("interactive", false, "fall back to a terminal Accept/Replace/Quit prompt when every candidate is rejected")
	update := fs.Bool("u", false, "check for and install an inpaint update, then exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage:
  inpaint IMAGE MASK PATCH_HALF_WIDTH OUTPUT [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *update {
		if err := cli.CheckForUpdates(); err != nil {
			fmt.Fprintf(os.Stderr, "inpaint: %v\n", err)
			return 2
		}
		return 0
	}

	if fs.NArg() != 4 {
		fs.Usage()
		return 1
	}
	imagePath, maskPath, radiusArg, outputPath := fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)

	radius := envInt("INPAINT_PATCH_RADIUS", 0)
	if radiusArg != "" {
		r, err := strconv.Atoi(radiusArg)
		if err != nil || r <= 0 {
			fmt.Fprintf(os.Stderr, "inpaint: PATCH_HALF_WIDTH must be a positive integer, got %q\n", radiusArg)
			return 1
		}
		radius = r
	}
	if radius <= 0 {
		fmt.Fprintln(os.Stderr, "inpaint: PATCH_HALF_WIDTH must be a positive integer")
		return 1
	}

	diffFunc, err := parseDifference(*diffName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inpaint: %v\n", err)
		return 1
	}

	acceptVisitor, err := parseAcceptance(*acceptName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inpaint: %v\n", err)
		return 1
	}

	img, err := rasterio.ReadImage(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inpaint: %v\n", err)
		return 2
	}
	m, err := rasterio.ReadMask(maskPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inpaint: %v\n", err)
		return 2
	}

	eng, err := engine.New(img, m, radius)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inpaint: %v\n", err)
		return 2
	}
	eng.SetMaxForwardLook(*maxForwardLook)
	eng.SetTopPatches(*topPatches)
	eng.SetDifference(diffFunc)
	eng.SetUseContinuation(*continuation)
	if acceptVisitor != nil {
		eng.SetAcceptance(acceptVisitor)
	}
	if *interactive {
		eng.SetVerification((&verify.TerminalVerificationUI{Radius: radius, BrowseDir: *debugDir}).Verify)
	}

	if *debugDir != "" {
		if err := os.MkdirAll(*debugDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "inpaint: debug-dir: %v\n", err)
			return 2
		}
		dir := *debugDir
		eng.SetOnPatchCopied(func(pair engine.PatchPair) {
			if err := writeDebugOverlay(dir, eng.Iteration(), eng.Image(), pair); err != nil {
				log.Printf("inpaint: debug-dir: %v", err)
			}
		})
	}

	for {
		outcome, stepErr := eng.Step()
		if stepErr != nil {
			fmt.Fprintf(os.Stderr, "inpaint: %v\n", stepErr)
			cli.FinishProgress()
			return 2
		}
		cli.PrintProgress(eng.Iteration(), outcome.HoleCount, len(outcome.Patches))
		if outcome.Finished {
			break
		}
	}
	cli.FinishProgress()

	if err := rasterio.WriteImage(outputPath, eng.Image()); err != nil {
		fmt.Fprintf(os.Stderr, "inpaint: %v\n", err)
		return 2
	}

	if *reportPath != "" {
		if err := report.WriteHTML(*reportPath, eng.History()); err != nil {
			log.Printf("inpaint: report: %v", err)
		}
	}

	return 0
}

// writeDebugOverlay burns target/source rectangles for this iteration
// onto a copy of the working image (never the measurement buffers,
// preferring an explicit overlay over sentinel colouring in place) and
// writes it under debugDir. The filename encodes the target patch's
// centre ("_r<row>_c<col>.png") so pkg/verify's candidate-centre regexp
// can map a browsed thumbnail back to a patch during an -interactive
// session.
func writeDebugOverlay(debugDir string, iteration int, img *field.Image, pair engine.PatchPair) error {
	overlaid := overlay.DrawPatchPair(img, iteration, pair.Target, pair.Source)
	centre := pair.Target.Center()
	name := fmt.Sprintf("iter%04d_r%d_c%d.png", iteration, centre.Row, centre.Col)
	return cli.SaveImage(filepath.Join(debugDir, name), overlaid)
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseDifference(name string) (search.DifferenceFunc, error) {
	switch name {
	case "", "ssd":
		return search.SumSquaredDifference, nil
	case "luminance":
		return search.LuminanceDifference, nil
	case "hsv":
		return search.HSVHistogramDifference, nil
	case "gmh":
		return search.GradientMagnitudeHistogramDifference, nil
	default:
		return nil, fmt.Errorf("unknown -diff %q (use ssd|luminance|hsv|gmh)", name)
	}
}

func parseAcceptance(name string) (accept.Visitor, error) {
	switch name {
	case "":
		return nil, nil
	case "avg":
		return accept.AverageDifferenceAcceptanceVisitor(accept.DefaultVarianceThreshold), nil
	case "variance":
		return accept.VarianceDifferenceAcceptanceVisitor(accept.DefaultVarianceThreshold), nil
	case "composite":
		return accept.CompositeAcceptance(
			accept.AverageDifferenceAcceptanceVisitor(accept.DefaultVarianceThreshold),
			accept.VarianceDifferenceAcceptanceVisitor(accept.DefaultVarianceThreshold),
		), nil
	default:
		return nil, fmt.Errorf("unknown -accept %q (use avg|variance|composite)", name)
	}
}
