package resample_test

import (
	"fmt"

	"github.com/cwbudde/pitchchorus/dsp/resample"
)

func ExampleResampler_ProcessChannel() {
	r, _ := resample.New(1, resample.WithCursorMode(resample.CursorResetPerBlock))

	in := []float64{0, 1, 2, 3}
	out := make([]float64, len(in))
	r.ProcessChannel(0, out, in, 2)

	fmt.Println(out)
	// Output:
	// [0 2 0 2]
}

func ExampleResampler_Cursor() {
	r, _ := resample.New(1)

	out := make([]float64, 8)
	r.ProcessChannel(0, out, []float64{0, 1, 2, 3, 4, 5, 6, 7}, 0.5)

	fmt.Println(out, r.Cursor(0))
	// Output:
	// [0 0.5 1 1.5 2 2.5 3 3.5] 4
}
