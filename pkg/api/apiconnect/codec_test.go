package apiconnect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitme/splitme/pkg/api"
)

func TestJSONCodec_Timestamps(t *testing.T) {
	codec := jsonCodec{}
	created := time.Unix(1700000000, 0).UTC()

	data, err := codec.Marshal(&api.Group{
		Id:        "g1",
		Members:   []string{},
		CreatedAt: api.NewTimestamp(created),
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"createdAt":"2023-11-14T22:13:20Z"`)
	assert.Contains(t, string(data), `"members":[]`)

	var got api.Group
	require.NoError(t, codec.Unmarshal(data, &got))
	require.NotNil(t, got.CreatedAt)
	assert.True(t, got.CreatedAt.AsTime().Equal(created))
	assert.Equal(t, "g1", got.Id)
}

func TestJSONCodec_MissingTimestamp(t *testing.T) {
	codec := jsonCodec{}

	data, err := codec.Marshal(&api.Share{Participant: "0xA", Amount: "1", Paid: "0"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "settledAt")

	var got api.Share
	require.NoError(t, codec.Unmarshal([]byte(`{"participant":"0xA","settledAt":null}`), &got))
	assert.Nil(t, got.SettledAt)

	err = codec.Unmarshal([]byte(`{"settledAt":"yesterday"}`), &got)
	assert.Error(t, err)
}

func TestJSONCodec_EmptyBody(t *testing.T) {
	var got api.Group
	require.NoError(t, jsonCodec{}.Unmarshal(nil, &got))
	assert.Empty(t, got.Id)
}
