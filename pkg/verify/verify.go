// Package verify implements the VerificationUI collaborator: a
// synchronous human-in-the-loop check consulted whenever every ranked
// candidate for a target patch is rejected by the acceptance visitor.
// It is grounded in the original source's
// Interactive/PatchVerificationDialog.hpp — a Qt dialog rendering the
// query patch, the proposed source patch, and an Accept/Replace/Quit
// control — reimagined for a terminal host using pkg/cli's
// inline-image preview and line prompts instead of a GUI.
package verify

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Fepozopo/inpaint/pkg/cli"
	"github.com/Fepozopo/inpaint/pkg/engine"
	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/raster"
	"github.com/Fepozopo/inpaint/pkg/rasterio"
)

// TerminalVerificationUI renders the query (target) and proposed
// (source) patches via pkg/cli's terminal image preview and reads an
// Accept/Replace/Quit decision from stdin, satisfying engine.VerificationFunc.
type TerminalVerificationUI struct {
	// Radius is the patch half-width, needed to validate a typed
	// replacement centre into a full PatchRegion.
	Radius int

	// BrowseDir is the directory SelectFileWithFzf searches when the
	// operator types "/" at the replacement prompt. Defaults to "."
	// when empty.
	BrowseDir string
}

// Verify implements engine.VerificationFunc. It previews target and
// proposed as cropped patches of image, then prompts for a decision.
func (ui *TerminalVerificationUI) Verify(target, proposed raster.Region, image *field.Image, m *mask.Mask) engine.VerificationResult {
	ui.previewPair(target, proposed, image)

	for {
		answer, err := cli.PromptLine("Accept proposed source? [a]ccept / [r]eplace / [q]uit: ")
		if err != nil {
			// stdin closed or unreadable: treat as quit, the same
			// terminal behavior as an interactive dialog losing its
			// input source.
			return engine.VerificationResult{Decision: engine.VerificationQuit}
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "a", "accept", "":
			return engine.VerificationResult{Decision: engine.VerificationAccept}
		case "q", "quit":
			return engine.VerificationResult{Decision: engine.VerificationQuit}
		case "r", "replace":
			region, ok := ui.promptReplacement(m)
			if !ok {
				continue
			}
			return engine.VerificationResult{Decision: engine.VerificationReplace, Replacement: region}
		default:
			fmt.Println("please answer a, r, or q")
		}
	}
}

// previewPair crops target and proposed out of image and sends them to
// the terminal as one side-by-side composite if the host supports
// inline image preview; otherwise it prints the two regions as text
// instead, and the prompt follows either way.
func (ui *TerminalVerificationUI) previewPair(target, proposed raster.Region, img *field.Image) {
	if !cli.PreviewSupported() {
		fmt.Printf("query (target): %+v\n", target)
		fmt.Printf("proposed source: %+v (terminal preview unavailable)\n", proposed)
		return
	}
	queryCrop, ok := ui.cropPatch(target, img)
	if !ok {
		return
	}
	proposedCrop, ok := ui.cropPatch(proposed, img)
	if !ok {
		return
	}
	fmt.Println("query (target) | proposed source:")
	if err := cli.PreviewPatchPair(rasterio.ToNRGBA(queryCrop), rasterio.ToNRGBA(proposedCrop), "png"); err != nil {
		fmt.Printf("(preview failed: %v)\n", err)
	}
}

// cropPatch crops region out of image into a standalone *field.Image,
// reporting false when the crop is empty (region wholly outside image
// bounds).
func (ui *TerminalVerificationUI) cropPatch(region raster.Region, img *field.Image) (*field.Image, bool) {
	crop := region.Crop(img.Bounds())
	if crop.Empty() {
		return nil, false
	}
	patch := field.NewImage(crop.W, crop.H, img.C)
	patch.CopyRegion(patch.Bounds(), img, crop)
	return patch, true
}

// candidateCentreName matches the "..._r<row>_c<col>.<ext>" filename
// convention cmd/inpaint's debug-dir writer (writeDebugOverlay) uses for
// its per-copy overlay images, whose name encodes the centre of the
// target patch that copy filled, so a browsed file can be mapped back to
// a patch centre in the working image.
var candidateCentreName = regexp.MustCompile(`_r(-?\d+)_c(-?\d+)\.[a-zA-Z0-9]+$`)

// promptReplacement asks the operator for a replacement patch centre
// "row,col", or "/" to fzf-browse a debug-dir candidate thumbnail whose
// filename encodes the centre it was rendered from. Returns ok=false
// when the input should be re-prompted.
func (ui *TerminalVerificationUI) promptReplacement(m *mask.Mask) (raster.Region, bool) {
	browseDir := ui.BrowseDir
	if browseDir == "" {
		browseDir = "."
	}
	answer, err := cli.PromptLine("Replacement centre 'row,col' or '/' to browse a candidate thumbnail: ")
	if err != nil {
		return raster.Region{}, false
	}
	if answer == "/" {
		sel, selErr := cli.SelectFileWithFzf(browseDir)
		if selErr != nil || sel == "" {
			fmt.Println("no file selected")
			return raster.Region{}, false
		}
		answer = sel
	}
	if answer == "" {
		return raster.Region{}, false
	}

	var row, col int
	if groups := candidateCentreName.FindStringSubmatch(filepath.Base(answer)); groups != nil {
		row, _ = strconv.Atoi(groups[1])
		col, _ = strconv.Atoi(groups[2])
	} else {
		parts := strings.SplitN(answer, ",", 2)
		if len(parts) != 2 {
			fmt.Println("expected 'row,col' or a candidate thumbnail filename")
			return raster.Region{}, false
		}
		row, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			fmt.Println("invalid row")
			return raster.Region{}, false
		}
		col, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			fmt.Println("invalid col")
			return raster.Region{}, false
		}
	}

	region := raster.RegionInRadius(raster.Index{Row: row, Col: col}, ui.Radius)
	if !m.IsValidRegion(region) {
		fmt.Println("that patch is not fully valid; pick another centre")
		return raster.Region{}, false
	}
	return region, true
}
