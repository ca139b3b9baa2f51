// Package mastering assembles synthesized voice clips into a single
// continuous listening program.
//
// Each clip passes through a fixed processing chain: a pitch shift that
// retunes the recording (432 Hz concert pitch by default), a spectral
// de-esser that tames sibilance, a synthetic convolution reverb, and a
// Haas-delay stereo widener. The processed clips are joined with silent
// gaps and the whole program is peak-normalized once, so relative loudness
// between clips is preserved.
//
// All processing is offline on planar float64 buffers. WAV decoding and
// encoding live at the edges; everything in between is sample math.
//
// Basic usage:
//
//	params := mastering.DefaultParams()
//	chain, err := mastering.NewChain(params)
//	if err != nil {
//		return err
//	}
//	program, err := chain.Run(ctx, clipPaths)
//	if err != nil {
//		return err
//	}
//	return program.WriteWAV("program.wav", 16)
package mastering
