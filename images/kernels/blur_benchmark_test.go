package kernels

import (
	"testing"
)

func BenchmarkAverageNaive_320_k7(b *testing.B) {
	src := genBuffer(320, 240, 3)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = averageNaive(src, 7)
	}
}

func BenchmarkAverage_320_k7(b *testing.B) {
	src := genBuffer(320, 240, 3)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Average(src, 7)
	}
}

func BenchmarkAverage_1080p_k15(b *testing.B) {
	src := genBuffer(1920, 1080, 3)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Average(src, 15)
	}
}

func BenchmarkGaussian_640_k5(b *testing.B) {
	src := genBuffer(640, 480, 3)
	k := Gaussian(5, 1.5)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Convolve(src, k)
	}
}

func BenchmarkMinFilter_640_k15(b *testing.B) {
	src := genBuffer(640, 480, 1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = MinFilter(src, 15)
	}
}
