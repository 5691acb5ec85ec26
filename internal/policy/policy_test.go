package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
)

func TestMinConfidenceFloor(t *testing.T) {
	t.Cleanup(Reset)
	Set(Config{MinConfidence: 0.5})

	low := 0.3
	err := Check("store", Params{"confidence": low})
	require.Error(t, err)
	require.Equal(t, errs.KindPolicy, errs.KindOf(err))

	high := 0.8
	require.NoError(t, Check("store", Params{"confidence": high}))
}

func TestMissingConfidenceAllowedUnlessRequired(t *testing.T) {
	t.Cleanup(Reset)
	Set(Config{MinConfidence: 0.9})
	require.NoError(t, Check("store", Params{}))

	Set(Config{RequiredFields: map[string][]string{"store": {"confidence"}}})
	require.Error(t, Check("store", Params{}))
}

func TestRequiredFieldMissing(t *testing.T) {
	t.Cleanup(Reset)
	Set(Config{RequiredFields: map[string][]string{"relate": {"source"}}})

	require.Error(t, Check("relate", Params{}))
	require.NoError(t, Check("relate", Params{"source": "human"}))
}

func TestResetRestoresDefaults(t *testing.T) {
	Set(Config{MinConfidence: 1})
	Reset()
	require.Equal(t, 0.0, Current().MinConfidence)
}
