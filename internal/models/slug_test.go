package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKebab(t *testing.T) {
	require.Equal(t, "phone-screen", Kebab("Phone Screen"))
	require.Equal(t, "acme-corp", Kebab("  Acme,  Corp!  "))
	require.Equal(t, "round-2", Kebab("Round #2"))
	require.Equal(t, "", Kebab("!!!"))
}

func TestEventSlug(t *testing.T) {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "2026-01-05-applied", EventSlug(day, 0, "Applied"))
	require.Equal(t, "2026-01-05-3-phone-screen", EventSlug(day, 3, "Phone Screen"))
	require.Equal(t, "applied", EventSlug(time.Time{}, 0, "Applied"))
	require.Equal(t, "2026-01-05", EventSlug(day, 0, ""))
	require.Equal(t, "2026-01-05-2", EventSlug(day, 2, ""))
}

func TestValidSlug(t *testing.T) {
	require.True(t, ValidSlug("2026-01-05-applied"))
	require.True(t, ValidSlug("a"))
	require.False(t, ValidSlug(""))
	require.False(t, ValidSlug("-leading"))
	require.False(t, ValidSlug("trailing-"))
	require.False(t, ValidSlug("double--dash"))
	require.False(t, ValidSlug("Upper-Case"))
}
