package example

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOne(t *testing.T) {
	one()
}

func TestTwo(t *testing.T) {
	two()
}

func TestThree(t *testing.T) {
	three()
}
