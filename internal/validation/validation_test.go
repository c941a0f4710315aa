package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	verrs := Errors{}
	require.False(t, verrs.Any())
	require.Empty(t, verrs.On("slug"))

	verrs.Add("slug", "has already been taken")
	verrs.Addf("event_date", "must be on or after %s", "2026-01-05")
	verrs.Static("type")

	require.True(t, verrs.Any())
	require.Equal(t, []string{"has already been taken"}, verrs.On("slug"))
	require.Equal(t, []string{"must be on or after 2026-01-05"}, verrs.On("event_date"))
	require.Equal(t, []string{"is static and cannot be changed"}, verrs.On("type"))
}

func TestErrorsMessage(t *testing.T) {
	verrs := Errors{}
	verrs.Add("slug", "can't be blank")
	verrs.Add("slug", "must be kebab-case")
	verrs.Add("company", "can't be blank")

	require.Equal(t,
		"company can't be blank; slug can't be blank, must be kebab-case",
		verrs.Error())
}
