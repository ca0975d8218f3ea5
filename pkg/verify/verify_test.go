package verify

import "testing"

func TestCandidateCentreNameMatchesDebugDirConvention(t *testing.T) {
	groups := candidateCentreName.FindStringSubmatch("iter0007_r12_c-34.png")
	if groups == nil {
		t.Fatal("expected the debug-dir filename convention to match")
	}
	if groups[1] != "12" || groups[2] != "-34" {
		t.Fatalf("expected row=12 col=-34, got row=%q col=%q", groups[1], groups[2])
	}
}

func TestCandidateCentreNameRejectsUnrelatedFilenames(t *testing.T) {
	if candidateCentreName.MatchString("snapshot.png") {
		t.Fatal("expected a filename without the _r<row>_c<col> convention to not match")
	}
}
