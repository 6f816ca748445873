package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBengaliDigits(t *testing.T) {
	assert.Equal(t, "০১২৩৪৫৬৭৮৯", ToBengaliDigits("0123456789"))
	assert.Equal(t, "৪২", ToBengaliDigits("42"))
	assert.Equal(t, "nid-৭৭", ToBengaliDigits("nid-77"))
	assert.Equal(t, "৯৯", ToBengaliDigits("৯৯"))
	assert.Equal(t, "", ToBengaliDigits(""))
}
