package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullableHelpers(t *testing.T) {
	assert.Nil(t, StringOrNil("   "))
	assert.Equal(t, "Anfield", *StringOrNil("  Anfield "))
	assert.Equal(t, "", OrZero[string](nil))
	assert.Equal(t, 7, OrZero(Ptr(7)))
	assert.Nil(t, NilIfZero(0))
	assert.Equal(t, 3, *NilIfZero(3))
}
