package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVariantCatalogueIntegrity(t *testing.T) {
	seen := make(map[string]bool)
	for _, v := range variantCatalogue {
		require.False(t, seen[v.Key], "duplicate variant key %q", v.Key)
		seen[v.Key] = true

		if v.Abstract || !v.StatusChanging() || v.Conditional() {
			continue
		}
		require.NotEmpty(t, v.ValidSources, "variant %q has no source statuses", v.Key)
		require.NotEmpty(t, v.ResultStatus, "variant %q has no result status", v.Key)
		for _, s := range v.ValidSources {
			require.True(t, s.IsValid(), "variant %q has invalid source %q", v.Key, s)
		}
	}
}

func TestVariantForUnknownKeyFallsBack(t *testing.T) {
	v := VariantFor("no-such-variant")
	require.Equal(t, "", v.Key)
	require.False(t, v.StatusChanging())

	require.Equal(t, "applied", VariantFor("applied").Key)
}

func TestAdmissibleFrom(t *testing.T) {
	applied := VariantFor("applied")
	require.True(t, applied.AdmissibleFrom(StatusNew))
	require.False(t, applied.AdmissibleFrom(StatusApplied))
	require.False(t, applied.AdmissibleFrom(StatusClosed))

	// closed lists its own result status, so closing twice is legal.
	closed := VariantFor("closed")
	require.True(t, closed.AdmissibleFrom(StatusClosed))
	require.True(t, closed.AdmissibleFrom(StatusNew))

	// Plain variants are admissible everywhere.
	contacted := VariantFor("contacted")
	for _, s := range AllStatuses() {
		require.True(t, contacted.AdmissibleFrom(s))
	}

	// Conditional variants defer to their predicate.
	referred := VariantFor("referred")
	require.True(t, referred.AdmissibleFrom(StatusNew))
	require.False(t, referred.AdmissibleFrom(StatusInterviewing))

	reopened := VariantFor("reopened")
	require.True(t, reopened.AdmissibleFrom(StatusClosed))
	require.False(t, reopened.AdmissibleFrom(StatusOffered))

	require.False(t, VariantFor("status").AdmissibleFrom(StatusNew))
}

func TestApplicableVariants(t *testing.T) {
	keys := func(current Status) map[string]bool {
		out := make(map[string]bool)
		for _, c := range ApplicableVariants(current) {
			out[c.Key] = true
		}
		return out
	}

	fresh := keys(StatusNew)
	require.True(t, fresh[""])
	require.True(t, fresh["applied"])
	require.True(t, fresh["pitched"])
	require.True(t, fresh["referred"])
	require.True(t, fresh["expired"])
	require.False(t, fresh["interview"])
	require.False(t, fresh["accepted"])
	require.False(t, fresh["status"])

	offered := keys(StatusOffered)
	require.True(t, offered["accepted"])
	require.True(t, offered["declined"])
	require.True(t, offered["rejected"])
	require.False(t, offered["applied"])
	require.False(t, offered["reopened"])

	closed := keys(StatusClosed)
	require.True(t, closed["reopened"])
	require.True(t, closed["closed"])
	require.True(t, closed[""])
	require.False(t, closed["withdrawn"])
}
