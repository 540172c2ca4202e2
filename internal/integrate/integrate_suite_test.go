package integrate_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegrate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Integrate Suite")
}
