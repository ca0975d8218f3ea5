// Package engine drives the per-iteration boundary -> priority ->
// search -> accept -> copy loop that exemplar-based inpainting repeats
// until every hole pixel has been filled.
package engine

import (
	"github.com/Fepozopo/inpaint/pkg/accept"
	"github.com/Fepozopo/inpaint/pkg/boundary"
	"github.com/Fepozopo/inpaint/pkg/field"
	"github.com/Fepozopo/inpaint/pkg/isophote"
	"github.com/Fepozopo/inpaint/pkg/mask"
	"github.com/Fepozopo/inpaint/pkg/priority"
	"github.com/Fepozopo/inpaint/pkg/raster"
	"github.com/Fepozopo/inpaint/pkg/search"
	"github.com/Fepozopo/inpaint/pkg/sourceindex"
)

// state is the engine's own lifecycle, distinct from the caller-visible
// StepOutcome: Uninitialised only exists before New returns successfully.
type state int

const (
	stateIdle state = iota
	stateFinished
)

// VerificationDecision is the outcome of the VerificationUI collaborator
// when every ranked candidate has been vetoed by the acceptance
// visitor.
type VerificationDecision int

const (
	// VerificationAccept uses the candidate the resolver was shown.
	VerificationAccept VerificationDecision = iota
	// VerificationReplace substitutes VerificationResult.Replacement as
	// the source region.
	VerificationReplace
	// VerificationQuit aborts the step with a UserQuit error.
	VerificationQuit
)

// VerificationResult is returned by a VerificationFunc.
type VerificationResult struct {
	Decision    VerificationDecision
	Replacement raster.Region
}

// VerificationFunc mirrors a VerificationUI.verify call: given the
// target region and the best candidate every acceptance visitor
// rejected, it synchronously returns a decision. It may block
// arbitrarily awaiting a human; the engine does not impose a timeout.
type VerificationFunc func(target, proposed raster.Region, image *field.Image, m *mask.Mask) VerificationResult

// PatchPair records one accepted target/source match, in the order it
// was copied.
type PatchPair struct {
	Target raster.Region
	Source raster.Region
	Score  float32
}

// IterationRecord summarises one Step call for History/reporting.
type IterationRecord struct {
	Iteration    int
	Patches      []PatchPair
	HoleCount    int
	MeanPriority float64
}

// History is the ordered log of every completed iteration.
type History []IterationRecord

// StepOutcome reports what a single Step call did.
type StepOutcome struct {
	Patches   []PatchPair
	HoleCount int
	Finished  bool
}

// Engine owns every live data structure the inpainting loop needs and
// advances them one greedy iteration at a time via Step.
type Engine struct {
	image         *field.Image
	blurredImage  *field.Image
	mask          *mask.Mask
	confidenceMap *field.Scalar
	isophotes     *field.Vector
	sourceIdx     *sourceindex.Index

	radius int
	state  state

	maxForwardLook  int
	topPatches      int
	diffFunc        search.DifferenceFunc
	priorityFn      priority.Strategy
	acceptVisitor   accept.Visitor
	verification    VerificationFunc
	useContinuation bool

	isoSigma        float64
	normalVariance  float64
	searchBlurSigma float64
	recomputeEveryN int

	iteration int
	history   History

	onPatchCopied func(PatchPair)
}

// New validates image/mask and builds an Engine ready to Step. The mask
// must match the image's dimensions and at least one fully-VALID patch
// of the requested radius must exist somewhere in the image, or there is
// no material to copy from.
func New(img *field.Image, m *mask.Mask, patchRadius int) (*Engine, error) {
	if img == nil || m == nil {
		return nil, newError(InvalidInput, "image and mask must not be nil")
	}
	if img.W != m.Width() || img.H != m.Height() {
		return nil, newError(InvalidInput, "image and mask dimensions differ")
	}
	if patchRadius <= 0 {
		return nil, newError(InvalidInput, "patch radius must be positive")
	}

	confidenceMap := field.NewScalar(img.W, img.H)
	for row := 0; row < img.H; row++ {
		for col := 0; col < img.W; col++ {
			idx := raster.Index{Row: row, Col: col}
			if m.IsValid(idx) {
				confidenceMap.Set(idx, 1)
			}
		}
	}

	idx := sourceindex.New(patchRadius)
	idx.ScanFull(m)
	if idx.Len() == 0 {
		return nil, newError(NoSourcePatches, "no fully-valid patch of the requested radius exists")
	}

	e := &Engine{
		image:           img,
		mask:            m,
		confidenceMap:   confidenceMap,
		sourceIdx:       idx,
		radius:          patchRadius,
		maxForwardLook:  10,
		topPatches:      search.DefaultTopPatches,
		diffFunc:        search.SumSquaredDifference,
		priorityFn:      priority.DefaultStrategy,
		isoSigma:        isophote.DefaultSigma,
		normalVariance:  boundary.DefaultNormalVariance,
		searchBlurSigma: 1.0,
		recomputeEveryN: 0,
	}
	return e, nil
}

// --- configuration ---

// SetMaxForwardLook sets how many top-priority targets are processed per
// Step before priorities are recomputed (spec §4.J forward look-ahead).
func (e *Engine) SetMaxForwardLook(n int) {
	if n > 0 {
		e.maxForwardLook = n
	}
}

// SetTopPatches sets NumberOfTopPatchesToSave, the candidate shortlist
// size kept per target before acceptance filtering.
func (e *Engine) SetTopPatches(n int) {
	if n > 0 {
		e.topPatches = n
	}
}

// SetDifference overrides the patch comparison function used to rank
// candidates (default SumSquaredDifference).
func (e *Engine) SetDifference(d search.DifferenceFunc) {
	if d != nil {
		e.diffFunc = d
	}
}

// SetPriority overrides the per-boundary-pixel priority strategy used to
// rank targets (default priority.DefaultStrategy, Confidence x Data).
func (e *Engine) SetPriority(s priority.Strategy) {
	if s != nil {
		e.priorityFn = s
	}
}

// SetAcceptance installs a Visitor that can veto a ranked candidate.
// A nil visitor (the default) accepts every top-ranked candidate.
func (e *Engine) SetAcceptance(v accept.Visitor) { e.acceptVisitor = v }

// SetVerification installs the VerificationUI fallback consulted when
// every ranked candidate is vetoed by the acceptance visitor. A nil
// resolver (the default) makes that condition terminal: Step returns
// AllCandidatesRejected.
func (e *Engine) SetVerification(fn VerificationFunc) { e.verification = fn }

// SetUseContinuation enables the isophote-continuation tiebreaker
// re-rank stage. Off by default.
func (e *Engine) SetUseContinuation(on bool) { e.useContinuation = on }

// SetRecomputeIsophotesEveryNSteps controls how often the isophote field
// is fully recomputed from the working Image rather than left as the
// value transported by copyPatch. n<=0 (the default) means "never":
// IsophoteField is computed once at the first Step and thereafter only
// updated by copyPatch, exactly like BlurredImage. n>0 recomputes it
// from scratch every n iterations.
func (e *Engine) SetRecomputeIsophotesEveryNSteps(n int) { e.recomputeEveryN = n }

// SetIsophoteSigma overrides the masked-blur scale feeding isophote
// extraction (default isophote.DefaultSigma).
func (e *Engine) SetIsophoteSigma(sigma float64) {
	if sigma > 0 {
		e.isoSigma = sigma
	}
}

// SetNormalVariance overrides the Gaussian variance feeding boundary
// normal estimation (default boundary.DefaultNormalVariance).
func (e *Engine) SetNormalVariance(variance float64) {
	if variance > 0 {
		e.normalVariance = variance
	}
}

// SetSearchBlurSigma overrides the blur applied to the image copy that
// patch search scores against (the "blurred" measurement buffer).
func (e *Engine) SetSearchBlurSigma(sigma float64) {
	if sigma >= 0 {
		e.searchBlurSigma = sigma
	}
}

// SetOnPatchCopied installs a callback invoked synchronously after every
// accepted patch copy, useful for debug overlays and progress reporting.
func (e *Engine) SetOnPatchCopied(fn func(PatchPair)) { e.onPatchCopied = fn }

// --- accessors ---

// Image returns the engine's working image. Mutated in place by Step; a
// caller that needs a stable snapshot should clone it.
func (e *Engine) Image() *field.Image { return e.image }

// Mask returns the engine's working mask.
func (e *Engine) Mask() *mask.Mask { return e.mask }

// Iteration returns the number of Step calls completed so far.
func (e *Engine) Iteration() int { return e.iteration }

// History returns every completed iteration's record.
func (e *Engine) History() History { return e.history }

// HoleCount returns the number of remaining HOLE pixels.
func (e *Engine) HoleCount() int { return e.mask.HoleCount() }

// Finished reports whether the engine has filled every hole.
func (e *Engine) Finished() bool { return e.state == stateFinished }

// computeBlurredImage builds the persistent BlurredImage (spec §3/§4.J
// step 3): a per-channel masked blur of the working Image, using the
// same renormalised-over-VALID-taps convolution isophote.MaskedBlur
// applies to luminance, so HOLE-side content already present under the
// sentinel-free hole never contaminates a VALID pixel's blurred value.
// Computed once, on the first Step, and afterwards transported by copyPatch exactly
// like the isophote field, never recomputed from the raw Image again.
func (e *Engine) computeBlurredImage() *field.Image {
	if e.searchBlurSigma <= 0 {
		return e.image
	}
	out := field.NewImage(e.image.W, e.image.H, e.image.C)
	for c := 0; c < e.image.C; c++ {
		channel := field.NewScalar(e.image.W, e.image.H)
		for row := 0; row < e.image.H; row++ {
			for col := 0; col < e.image.W; col++ {
				idx := raster.Index{Row: row, Col: col}
				channel.Set(idx, e.image.At(idx)[c])
			}
		}
		blurred := isophote.MaskedBlur(channel, e.mask, e.searchBlurSigma)
		for row := 0; row < e.image.H; row++ {
			for col := 0; col < e.image.W; col++ {
				idx := raster.Index{Row: row, Col: col}
				out.At(idx)[c] = blurred.At(idx)
			}
		}
	}
	return out
}

// Step performs one iteration of the inpainting loop: boundary and
// priority extraction, a forward-look batch of greedy target
// selections, ranked candidate search, acceptance filtering, and patch
// copy with the resulting mask/confidence/isophote updates.
func (e *Engine) Step() (StepOutcome, error) {
	if e.state == stateFinished {
		return StepOutcome{HoleCount: 0, Finished: true}, nil
	}
	if e.mask.HoleCount() == 0 {
		e.state = stateFinished
		return StepOutcome{HoleCount: 0, Finished: true}, nil
	}

	boundaryField := boundary.Extract(e.mask)
	if isEmptyByteField(boundaryField) {
		return StepOutcome{}, newError(InternalInvariant, "holes remain but no boundary pixels were found")
	}

	normals := boundary.Normals(e.mask, boundaryField, e.normalVariance)

	// IsophoteField and BlurredImage are both computed once and then
	// only ever transported by copyPatch (spec §3, §9): recomputing
	// either from scratch every step would reintroduce meaningless
	// gradients/averages at freshly-copied seams. recomputeEveryN is an
	// opt-in exception to that for IsophoteField only (default 0,
	// "never" — spec §9); BlurredImage has no such cadence knob.
	if e.isophotes == nil {
		e.isophotes = isophote.Compute(e.image, e.mask, e.isoSigma)
	} else if e.recomputeEveryN > 0 && e.iteration%e.recomputeEveryN == 0 {
		e.isophotes = isophote.Compute(e.image, e.mask, e.isoSigma)
	}
	if e.blurredImage == nil {
		e.blurredImage = e.computeBlurredImage()
	}

	// confidenceTerm is computed independently of the priority strategy:
	// it is the value propagated to newly-filled pixels (spec §4.C/§4.J
	// step 5), not merely a ranking input a custom Strategy might drop.
	confidenceTerm := priority.Confidence(e.confidenceMap, e.mask, boundaryField, e.radius)
	priorities := e.priorityFn(e.confidenceMap, e.isophotes, normals, e.mask, boundaryField, e.radius)

	targets := priority.TopKTargets(priorities, boundaryField, e.maxForwardLook, e.radius)
	if len(targets) == 0 {
		return StepOutcome{}, newError(PriorityDesync, "top-K target selection returned no boundary pixels while holes remain")
	}

	ctx := &search.Context{Image: e.blurredImage, Mask: e.mask}
	acceptCtx := &accept.Context{Image: e.image, Mask: e.mask}

	var patches []PatchPair
	var meanPriority float64

	for _, targetCenter := range targets {
		if boundaryField.At(targetCenter) == 0 || (len(patches) > 0 && !e.mask.HasHoleNeighbor8(targetCenter)) {
			// a previous copy in this forward-look batch already
			// resolved this pixel's neighbourhood; skip it rather
			// than fail the whole step.
			continue
		}
		// spec §4.J step 3: a target picked off the priority grid must
		// still have a HOLE 8-neighbour in the live mask, or priority
		// extraction and the mask have desynced.
		if !e.mask.HasHoleNeighbor8(targetCenter) {
			return StepOutcome{}, newError(PriorityDesync, "top-K target has no HOLE 8-neighbour")
		}
		meanPriority += float64(priorities.At(targetCenter))

		targetRegion := raster.RegionInRadius(targetCenter, e.radius)
		candidates := search.Rank(ctx, e.sourceIdx.Regions(), targetRegion, e.diffFunc, e.topPatches)
		if len(candidates) == 0 {
			return StepOutcome{}, newError(NoSourcePatches, "no candidate source patches available")
		}

		if e.useContinuation {
			boundaryOffsets := boundaryOffsetsIn(boundaryField, targetRegion)
			rescoreByContinuation(ctx, e.isophotes, boundaryOffsets, targetRegion, candidates)
		}

		chosen := -1
		for i, cand := range candidates {
			if e.acceptVisitor == nil || e.acceptVisitor(acceptCtx, targetRegion, cand.Source) {
				chosen = i
				break
			}
		}

		var sourceRegion raster.Region
		var score float32
		if chosen >= 0 {
			sourceRegion = candidates[chosen].Source
			score = candidates[chosen].Score
		} else if e.verification != nil {
			result := e.verification(targetRegion, candidates[0].Source, e.image, e.mask)
			switch result.Decision {
			case VerificationAccept:
				sourceRegion = candidates[0].Source
				score = candidates[0].Score
			case VerificationReplace:
				if !e.mask.IsValidRegion(result.Replacement) {
					return StepOutcome{}, newError(InternalInvariant, "verification replacement region is not fully valid")
				}
				sourceRegion = result.Replacement
			case VerificationQuit:
				return StepOutcome{}, newError(UserQuit, "verification UI requested quit")
			default:
				return StepOutcome{}, newError(InternalInvariant, "verification UI returned an unknown decision")
			}
		} else {
			return StepOutcome{}, newError(AllCandidatesRejected, "every ranked candidate was vetoed")
		}
		c := confidenceTerm.At(targetCenter)
		e.copyPatch(targetRegion, sourceRegion, c)

		pair := PatchPair{Target: targetRegion, Source: sourceRegion, Score: score}
		patches = append(patches, pair)
		if e.onPatchCopied != nil {
			e.onPatchCopied(pair)
		}

		grown := targetRegion.GrowBy(e.radius).Crop(e.mask.Bounds())
		e.sourceIdx.ScanRegion(e.mask, grown)
	}

	if len(targets) > 0 {
		meanPriority /= float64(len(targets))
	}

	e.iteration++
	record := IterationRecord{
		Iteration:    e.iteration,
		Patches:      patches,
		HoleCount:    e.mask.HoleCount(),
		MeanPriority: meanPriority,
	}
	e.history = append(e.history, record)

	finished := record.HoleCount == 0
	if finished {
		e.state = stateFinished
	}
	return StepOutcome{Patches: patches, HoleCount: record.HoleCount, Finished: finished}, nil
}

// RunToCompletion steps the engine until every hole is filled or
// maxSteps is reached (0 means unlimited). It returns the accumulated
// History on success.
func (e *Engine) RunToCompletion(maxSteps int) (History, error) {
	for maxSteps <= 0 || e.iteration < maxSteps {
		outcome, err := e.Step()
		if err != nil {
			return e.history, err
		}
		if outcome.Finished {
			break
		}
	}
	return e.history, nil
}

// copyPatch transports source onto every HOLE offset of target, flips
// those pixels VALID, and propagates the patch's confidence term to
// them (spec §4.J step: "confidence of a newly filled pixel equals the
// confidence term computed for the patch that filled it").
func (e *Engine) copyPatch(target, source raster.Region, confidenceValue float32) {
	holeOffsets := e.mask.HoleOffsetsIn(target)
	for _, o := range holeOffsets {
		t := target.Origin.Add(o)
		s := source.Origin.Add(o)
		e.image.Set(t, e.image.At(s))
		if e.blurredImage != nil && e.blurredImage != e.image {
			e.blurredImage.Set(t, e.blurredImage.At(s))
		}
		e.isophotes.Set(t, e.isophotes.At(s))
		e.confidenceMap.Set(t, confidenceValue)
		e.mask.SetValid(t)
	}
}

func isEmptyByteField(b *field.Byte) bool {
	for _, v := range b.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

// boundaryOffsetsIn returns, relative to target.Origin, the offsets of
// every boundary pixel inside target — the support Continuation steps
// from.
func boundaryOffsetsIn(boundaryField *field.Byte, target raster.Region) []raster.Offset {
	var out []raster.Offset
	target.Offsets(func(o raster.Offset) {
		idx := target.Origin.Add(o)
		if idx.Row < 0 || idx.Row >= boundaryField.H || idx.Col < 0 || idx.Col >= boundaryField.W {
			return
		}
		if boundaryField.At(idx) != 0 {
			out = append(out, o)
		}
	})
	return out
}

// rescoreByContinuation re-ranks candidates in place by adding the
// isophote-continuation score as a tiebreaker on top of the base
// difference score.
func rescoreByContinuation(ctx *search.Context, isophotes *field.Vector, boundaryOffsets []raster.Offset, target raster.Region, candidates []search.Candidate) {
	for i := range candidates {
		cont := search.Continuation(ctx, isophotes, boundaryOffsets, candidates[i].Source, target)
		candidates[i].Score += cont
	}
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].Score < candidates[j-1].Score; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
}
