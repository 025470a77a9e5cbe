package field

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func iota3(nx, ny, nz int) *Field {
	f := New(nx, ny, nz)
	for i := range f.Data() {
		f.Data()[i] = float64(i)
	}

	return f
}

var _ = Describe("Field", func() {
	It("should lay out data row-major", func() {
		f := iota3(2, 3, 4)

		Expect(f.At(0, 0, 1)).To(Equal(1.0))
		Expect(f.At(0, 1, 0)).To(Equal(4.0))
		Expect(f.At(1, 0, 0)).To(Equal(12.0))
		Expect(f.Offset(1, 2, 3)).To(Equal(23))
	})

	It("should panic on out of bounds access", func() {
		f := New(2, 2)

		Expect(func() { f.At(2, 0) }).To(Panic())
		Expect(func() { f.At(0) }).To(Panic())
	})

	It("should panic when data and shape disagree", func() {
		Expect(func() { FromData(make([]float64, 5), 2, 3) }).To(Panic())
	})

	It("should extract a block with trailing axes implied", func() {
		f := iota3(4, 3, 2)

		b := f.Extract(Span(1, 3), Span(2, End))

		Expect(b.Shape()).To(Equal([]int{2, 1, 2}))
		Expect(b.Data()).To(Equal([]float64{10, 11, 16, 17}))
	})

	It("should assign a block", func() {
		f := New(4, 4)
		src := FromData([]float64{1, 2, 3, 4}, 2, 2)

		Expect(f.Assign(src, Span(2, 4), Span(0, 2))).To(Succeed())

		Expect(f.At(2, 0)).To(Equal(1.0))
		Expect(f.At(2, 1)).To(Equal(2.0))
		Expect(f.At(3, 0)).To(Equal(3.0))
		Expect(f.At(3, 1)).To(Equal(4.0))
		Expect(f.At(0, 0)).To(Equal(0.0))
	})

	It("should reject a block of the wrong shape", func() {
		f := New(4, 4)
		src := New(3, 2)

		err := f.Assign(src, Span(0, 2), Span(0, 2))

		var mismatch *ShapeMismatchError
		Expect(errors.As(err, &mismatch)).To(BeTrue())
		Expect(mismatch.Want).To(Equal([]int{2, 2}))
		Expect(mismatch.Got).To(Equal([]int{3, 2}))
	})

	It("should reject ranges outside the array", func() {
		_, err := Resolve([]int{4}, []Range{Span(2, 5)})

		Expect(err).To(HaveOccurred())
	})

	It("should compute region shapes", func() {
		Expect(RegionShape([]int{8, 6, 3}, []Range{Span(0, 2), All()})).
			To(Equal([]int{2, 6, 3}))
	})

	It("should compare bit patterns", func() {
		a := FromData([]float64{math.NaN(), 1}, 2)
		b := a.Clone()
		c := FromData([]float64{math.Copysign(0, -1), 1}, 2)
		d := FromData([]float64{0, 1}, 2)

		Expect(Identical(a, b)).To(BeTrue())
		Expect(Identical(c, d)).To(BeFalse())
		Expect(Identical(a, New(3))).To(BeFalse())
	})
})
