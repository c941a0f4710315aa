package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/roletrack/internal/models"
)

func TestValidateTransition(t *testing.T) {
	require.Nil(t, validateTransition(models.StatusNew, models.VariantFor("applied")))
	require.Nil(t, validateTransition(models.StatusInterviewing, models.VariantFor("interview")))
	require.Nil(t, validateTransition(models.StatusClosed, models.VariantFor("closed")))

	err := validateTransition(models.StatusNew, models.VariantFor("offered"))
	require.NotNil(t, err)
	require.Equal(t, models.StatusNew, err.Current)
	require.Equal(t, models.StatusOffered, err.Attempted)
	require.Equal(t, []models.Status{models.StatusInterviewing}, err.Valid)
	require.False(t, err.AlreadyInStatus())
}

func TestValidateTransitionSelfTransition(t *testing.T) {
	err := validateTransition(models.StatusApplied, models.VariantFor("applied"))
	require.NotNil(t, err)
	require.True(t, err.AlreadyInStatus())
	require.Equal(t, "role is already applied", err.Error())
}

func TestInvalidStatusTransitionErrorMessage(t *testing.T) {
	err := validateTransition(models.StatusNew, models.VariantFor("rejected"))
	require.NotNil(t, err)
	require.Equal(t,
		"role must be applied, interviewing, or offered to become closed, but is new",
		err.Error())

	err = validateTransition(models.StatusNew, models.VariantFor("interview"))
	require.NotNil(t, err)
	require.Equal(t,
		"role must be applied or interviewing to become interviewing, but is new",
		err.Error())

	err = validateTransition(models.StatusClosed, models.VariantFor("offered"))
	require.NotNil(t, err)
	require.Equal(t,
		"role must be interviewing to become offered, but is closed",
		err.Error())
}
