package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "OL45804W", want: "OL45804W"},
		{in: "/works/OL45804W", want: "OL45804W"},
		{in: "works/OL45804W", want: "OL45804W"},
		{in: "/works/OL45804W/", want: "OL45804W"},
		{in: "%2Fworks%2FOL45804W", want: "OL45804W"},
		{in: "  OL45804W ", want: "OL45804W"},
		{in: "", want: ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, NormalizeKey(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusToRead, NormalizeStatus("to_read"))
	assert.Equal(t, StatusToRead, NormalizeStatus("To Read"))
	assert.Equal(t, StatusReading, NormalizeStatus(" reading "))
	assert.Equal(t, StatusRead, NormalizeStatus("READ"))
	assert.Equal(t, "", NormalizeStatus("abandoned"))
	assert.Equal(t, "", NormalizeStatus(""))
}

func TestStringListAcceptsBothShapes(t *testing.T) {
	var many StringList
	require.NoError(t, json.Unmarshal([]byte(`["Frank Herbert","Brian Herbert"]`), &many))
	require.Equal(t, StringList{"Frank Herbert", "Brian Herbert"}, many)

	var one StringList
	require.NoError(t, json.Unmarshal([]byte(`"Frank Herbert"`), &one))
	require.Equal(t, StringList{"Frank Herbert"}, one)

	var empty StringList
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	require.Nil(t, empty)

	var bad StringList
	require.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestStringListString(t *testing.T) {
	assert.Equal(t, "Frank Herbert, Brian Herbert", StringList{"Frank Herbert", "Brian Herbert"}.String())
	assert.Equal(t, "", StringList{}.String())
}
