package witnessio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leopardracer/noir/fieldimpl"
)

func TestParseProgramSingleAssertZero(t *testing.T) {
	data := []byte(`{
		"opcodes": [
			{"assert_zero": {
				"lin_terms": [{"coefficient": "1", "witness": 0}, {"coefficient": "2", "witness": 1}],
				"q_c": "-7"
			}}
		],
		"witness": {"0": "3"}
	}`)

	opcodes, w, err := ParseProgram(data)
	assert.NoError(t, err)
	assert.Len(t, opcodes, 1)
	assert.NotNil(t, opcodes[0].AssertZero)

	v, ok := w.Get(0)
	assert.True(t, ok)
	assert.True(t, v.Equal(fieldimpl.NewBN254FromUint64(3)))
}

func TestParseProgramRejectsUnrecognizedOpcode(t *testing.T) {
	data := []byte(`{"opcodes": [{}], "witness": {}}`)
	_, _, err := ParseProgram(data)
	assert.Error(t, err)
}

func TestParseProgramRejectsMalformedDecimal(t *testing.T) {
	data := []byte(`{"opcodes": [], "witness": {"0": "not-a-number"}}`)
	_, _, err := ParseProgram(data)
	assert.Error(t, err)
}

func TestParseFieldDecimalNegative(t *testing.T) {
	v, err := parseFieldDecimal("-7")
	assert.NoError(t, err)
	assert.True(t, v.Equal(fieldimpl.NewBN254FromUint64(7).Neg()))
}
