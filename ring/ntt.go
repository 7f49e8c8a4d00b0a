package ring

// zeta is the primitive 256-th root of unity modulo q used by ML-KEM.
const zeta = 17

// nInv128 is 128⁻¹ mod q, the scaling factor of the inverse transform.
const nInv128 = 3303

// zetas[k] = ζ^BitRev7(k) mod q, the twiddle factors of the transform.
var zetas = func() (z [128]Element) {
	for k := range z {
		z[k] = Pow(zeta, uint(bitRev7(uint8(k))))
	}
	return z
}()

// gammas[i] = ζ^(2·BitRev7(i)+1) mod q, the roots of the degree-2 factors
// X² - γ used by the base-case multiplication.
var gammas = func() (g [128]Element) {
	for i := range g {
		g[i] = Pow(zeta, 2*uint(bitRev7(uint8(i)))+1)
	}
	return g
}()

// bitRev7 reverses the lower 7 bits of x.
func bitRev7(x uint8) uint8 {
	var r uint8
	for i := 0; i < 7; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// NTT maps a standard-domain element to the NTT domain (FIPS 203,
// Algorithm 9).
func NTT(f *Poly) NTTPoly {
	out := NTTPoly(*f)
	k := 1
	for length := 128; length >= 2; length /= 2 {
		for start := 0; start < n; start += 2 * length {
			z := zetas[k]
			k++
			lo, hi := out[start:start+length], out[start+length:start+2*length]
			for j := range lo {
				t := Mul(z, hi[j])
				hi[j] = Sub(lo[j], t)
				lo[j] = Add(lo[j], t)
			}
		}
	}
	return out
}

// InverseNTT maps an NTT-domain element back to the standard domain (FIPS
// 203, Algorithm 10).
func InverseNTT(f *NTTPoly) Poly {
	out := Poly(*f)
	k := 127
	for length := 2; length <= 128; length *= 2 {
		for start := 0; start < n; start += 2 * length {
			z := zetas[k]
			k--
			lo, hi := out[start:start+length], out[start+length:start+2*length]
			for j := range lo {
				t := lo[j]
				lo[j] = Add(t, hi[j])
				hi[j] = mulSub(z, hi[j], t)
			}
		}
	}
	for i := range out {
		out[i] = Mul(out[i], nInv128)
	}
	return out
}

// MulNTT multiplies two NTT-domain elements (FIPS 203, Algorithm 11). The
// product is 128 multiplications of degree-one polynomials modulo X² - γᵢ.
func MulNTT(f, g *NTTPoly) NTTPoly {
	var h NTTPoly
	for i := 0; i < n; i += 2 {
		a0, a1 := f[i], f[i+1]
		b0, b1 := g[i], g[i+1]
		h[i] = addMul(a0, b0, Mul(a1, b1), gammas[i/2])
		h[i+1] = addMul(a0, b1, a1, b0)
	}
	return h
}
