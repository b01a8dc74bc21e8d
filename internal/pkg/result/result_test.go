package result

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultEnvelope(t *testing.T) {
	tests := []struct {
		name string
		res  Result[[]string]
		want string
	}{
		{name: "ok", res: Ok([]string{"A", "B"}), want: `{"success":true,"data":["A","B"]}`},
		{name: "ok empty list", res: Ok([]string{}), want: `{"success":true,"data":[]}`},
		{name: "err", res: Err[[]string]("class not found"), want: `{"success":false,"message":"class not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.res)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestFromErrorAndFallbacks(t *testing.T) {
	failed := FromError("A001", errors.New("sequence unavailable"))
	assert.False(t, failed.IsOk())
	assert.Equal(t, "sequence unavailable", failed.Message())
	assert.Equal(t, "", failed.ValueOr(""))

	ok := FromError("A001", nil)
	v, isOk := ok.Value()
	assert.True(t, isOk)
	assert.Equal(t, "A001", v)
}

func TestUnmarshalEnvelope(t *testing.T) {
	var r Result[string]
	require.NoError(t, json.Unmarshal([]byte(`{"success":true,"data":"B004"}`), &r))
	assert.Equal(t, "B004", r.ValueOr("x"))

	require.NoError(t, json.Unmarshal([]byte(`{"success":false,"message":"boom"}`), &r))
	assert.False(t, r.IsOk())
	assert.Equal(t, "boom", r.Message())
}

func TestCauseIsKeptButNotSerialized(t *testing.T) {
	cause := errors.New("section not found")
	r := FromError[[]string](nil, cause)
	assert.ErrorIs(t, r.Cause(), cause)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"section not found"}`, string(b))

	assert.Nil(t, Err[int]("plain").Cause())
}
