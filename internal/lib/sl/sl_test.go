package sl_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/parking-lot/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "something went wrong", attr.Value.String())
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "<nil>", attr.Value.String())
	})
}

func TestMoney(t *testing.T) {
	attr := sl.Money("total_fee", 14000)

	assert.Equal(t, "total_fee", attr.Key)
	assert.Equal(t, slog.KindInt64, attr.Value.Kind())
	assert.Equal(t, int64(14000), attr.Value.Int64())
}
