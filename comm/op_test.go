package comm

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Op", func() {
	DescribeTable("combine",
		func(op Op, dst, src, want []float64) {
			op.Combine(dst, src)
			Expect(dst).To(Equal(want))
		},
		Entry("sum", OpSum, []float64{1, 2}, []float64{3, -4}, []float64{4, -2}),
		Entry("max", OpMax, []float64{1, 2}, []float64{3, -4}, []float64{3, 2}),
		Entry("min", OpMin, []float64{1, 2}, []float64{3, -4}, []float64{1, -4}),
		Entry("and", OpAnd, []float64{1, 0, 2}, []float64{5, 1, 0}, []float64{1, 0, 0}),
		Entry("or", OpOr, []float64{0, 0, 2}, []float64{0, 1, 0}, []float64{0, 1, 1}),
	)

	It("should keep infinities through max and min", func() {
		dst := []float64{math.Inf(-1), math.Inf(1)}

		OpMax.Combine(dst[:1], []float64{-1e300})
		OpMin.Combine(dst[1:], []float64{1e300})

		Expect(dst).To(Equal([]float64{-1e300, 1e300}))
	})

	It("should panic on length mismatch", func() {
		Expect(func() { OpSum.Combine(make([]float64, 2), make([]float64, 3)) }).
			To(Panic())
	})

	It("should normalize logical operands only", func() {
		buf := []float64{0, 3, -2}
		OpAnd.Normalize(buf)
		Expect(buf).To(Equal([]float64{0, 1, 1}))

		buf = []float64{0, 3, -2}
		OpMax.Normalize(buf)
		Expect(buf).To(Equal([]float64{0, 3, -2}))
	})

	It("should name the operators", func() {
		Expect(OpAnd.String()).To(Equal("AND"))
		Expect(OpSum.String()).To(Equal("SUM"))
		Expect(Op(42).String()).To(Equal("Op(42)"))
	})
})
