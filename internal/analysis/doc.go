// Package analysis characterizes chain trajectories offline.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via trajectory separation
//   - [LyapunovSpectrum]: one separation estimate per state dimension
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a sampled angle
//   - [GeneratePhasePortrait]: (θ, ω) trajectory of a single bob
//   - [GeneratePoincareSection]: stroboscopic section of phase space
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic motion:
//
//	lambda, err := analysis.LyapunovExponent(sys, integ, x0, dt, duration, 1e-8)
//	if err == nil && lambda > 0 {
//	    // chain is chaotic
//	}
package analysis
