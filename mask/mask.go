// Package mask implements the CCSDS 124.0-B-1 section 4 prediction
// equations: the running build vector Bt, the unpredictable-bit mask Mt,
// the change vector Dt that communicates mask updates, and a
// predict/residual/reconstruct helper set. The session package builds
// packet payloads by bit extraction and does not use these helpers.
package mask

import "github.com/stratolink/pocketcodec/bitvec"

// UpdateBuild advances the build vector per Equation 6.
//
//	Bt = 0                        if t == 0 or newMask
//	Bt = (It XOR It-1) OR Bt-1    otherwise
func UpdateBuild(build, input, prevInput *bitvec.Vector, newMask bool, t int) {
	if t == 0 || newMask {
		build.Zero()
		return
	}

	changes := input.XOR(prevInput)
	build.ORInto(changes, build)
}

// UpdateMask advances the mask vector per Equation 7.
//
//	Mt = (It XOR It-1) OR Bt-1    if newMask
//	Mt = (It XOR It-1) OR Mt-1    otherwise
func UpdateMask(mask, input, prevInput, prevBuild *bitvec.Vector, newMask bool) {
	changes := input.XOR(prevInput)

	if newMask {
		mask.ORInto(changes, prevBuild)
		return
	}

	updated := changes.OR(mask)
	mask.CopyFrom(updated)
}

// ComputeChange derives the change vector per Equation 8.
//
//	Dt = Mt         if t == 0 (M-1 is taken to be the zero vector)
//	Dt = Mt XOR Mt-1 otherwise
func ComputeChange(change, mask, prevMask *bitvec.Vector, t int) {
	if t == 0 {
		change.CopyFrom(mask)
		return
	}

	change.XORInto(mask, prevMask)
}

// Predict returns P(It) = It-1 AND NOT Mt: the prediction that unmasked bits
// repeat their previous value and masked bits are treated as always 0.
func Predict(prevInput, mask *bitvec.Vector) *bitvec.Vector {
	return prevInput.AND(mask.NOT())
}

// Residual returns Rt = It XOR P(It), which is 0 at every unmasked bit
// that repeated its previous value.
func Residual(input, prevInput, mask *bitvec.Vector) *bitvec.Vector {
	return input.XOR(Predict(prevInput, mask))
}

// Reconstruct returns It = Rt XOR P(It), the decoder-side inverse of
// Residual.
func Reconstruct(residual, prevInput, mask *bitvec.Vector) *bitvec.Vector {
	return residual.XOR(Predict(prevInput, mask))
}
