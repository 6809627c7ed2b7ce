package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestOK(t *testing.T) {
	r := OK("created", widget{ID: 1, Name: "bowl"})

	assert.True(t, r.Succeeded())
	assert.Equal(t, KindOK, r.Kind())
	v, ok := r.Value()
	require.True(t, ok)
	assert.Equal(t, "bowl", v.Name)

	b, err := json.Marshal(r.Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":true,"message":"created","data":{"id":1,"name":"bowl"}}`, string(b))
}

func TestDone_HasNoData(t *testing.T) {
	r := Done[widget]("deleted")

	assert.True(t, r.Succeeded())
	_, ok := r.Value()
	assert.False(t, ok)

	b, err := json.Marshal(r.Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":true,"message":"deleted"}`, string(b))
}

func TestNotFoundAndFail_CarryNoValue(t *testing.T) {
	nf := NotFound[widget]("widget not found")
	assert.False(t, nf.Succeeded())
	assert.True(t, nf.IsNotFound())
	_, ok := nf.Value()
	assert.False(t, ok)
	assert.Equal(t, "not_found", nf.Kind().String())

	failed := Fail[widget]("failed to save widget")
	assert.False(t, failed.Succeeded())
	assert.False(t, failed.IsNotFound())
	assert.Equal(t, KindFailed, failed.Kind())

	b, err := json.Marshal(failed.Envelope())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":false,"message":"failed to save widget"}`, string(b))
}
