package resolver

import (
	"reflect"
	"testing"

	"github.com/mgrajesh1/cyclonedx-python/internal/model"
	"github.com/mgrajesh1/cyclonedx-python/internal/registry"
)

func TestSelectHashes_WheelsPreferredLastWins(t *testing.T) {
	artifacts := []registry.ReleaseArtifact{
		{PackageType: "sdist", Digests: map[string]string{"sha256": "A"}},
		{PackageType: "bdist_wheel", Digests: map[string]string{"sha256": "B"}},
		{PackageType: "bdist_wheel", Digests: map[string]string{"md5": "C"}},
	}

	got := SelectHashes(artifacts)

	// Wheels win over the sdist, and among wheels the last artifact
	// providing an algorithm wins. Output is sorted by algorithm name.
	expect := []model.Hash{
		{Algorithm: model.HashMD5, Value: "C"},
		{Algorithm: model.HashSHA256, Value: "B"},
	}
	if !reflect.DeepEqual(got, expect) {
		t.Errorf("SelectHashes() = %v, want %v", got, expect)
	}
}

func TestSelectHashes_SdistFallback(t *testing.T) {
	artifacts := []registry.ReleaseArtifact{
		{PackageType: "sdist", Digests: map[string]string{"sha256": "A", "md5": "M"}},
		{PackageType: "bdist_egg", Digests: map[string]string{"sha256": "E"}},
	}

	got := SelectHashes(artifacts)
	expect := []model.Hash{
		{Algorithm: model.HashMD5, Value: "M"},
		{Algorithm: model.HashSHA256, Value: "A"},
	}
	if !reflect.DeepEqual(got, expect) {
		t.Errorf("SelectHashes() = %v, want %v", got, expect)
	}
}

func TestSelectHashes_LastWheelOverwrites(t *testing.T) {
	artifacts := []registry.ReleaseArtifact{
		{PackageType: "bdist_wheel", Digests: map[string]string{"sha256": "first"}},
		{PackageType: "bdist_wheel", Digests: map[string]string{"sha256": "second"}},
	}

	got := SelectHashes(artifacts)
	if len(got) != 1 || got[0].Value != "second" {
		t.Errorf("SelectHashes() = %v, want the last wheel's sha256", got)
	}
}

func TestSelectHashes_UnrecognizedAlgorithmsDropped(t *testing.T) {
	artifacts := []registry.ReleaseArtifact{
		{PackageType: "sdist", Digests: map[string]string{"blake2b_256": "X", "sha256": "A"}},
	}

	got := SelectHashes(artifacts)
	if len(got) != 1 || got[0].Algorithm != model.HashSHA256 {
		t.Errorf("SelectHashes() = %v, want only sha256 kept", got)
	}
}

func TestSelectHashes_Empty(t *testing.T) {
	if got := SelectHashes(nil); len(got) != 0 {
		t.Errorf("SelectHashes(nil) = %v, want empty", got)
	}
}
