package diffeq_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDiffeq(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Diffeq Suite")
}
