// Package interp provides interpolation kernels used by the resampler and
// the modulated delay lines.
//
//   - [Linear2]:  2-point linear interpolation (resampler read cursor)
//   - [Hermite4]: 4-point cubic Hermite (fractional delay reads)
package interp
