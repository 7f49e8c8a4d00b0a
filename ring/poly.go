package ring

import (
	mlkem "github.com/BackendStack21/mlkem-go"
)

const n = mlkem.N

// Poly is a ring element in the standard (coefficient) domain.
type Poly [n]Element

// NTTPoly is a ring element in the NTT domain. Arithmetic rules differ from
// Poly, so the two representations are distinct types.
type NTTPoly [n]Element

// Add returns a + b coefficient-wise.
func (a *Poly) Add(b *Poly) Poly {
	var s Poly
	for i := range s {
		s[i] = Add(a[i], b[i])
	}
	return s
}

// Sub returns a - b coefficient-wise.
func (a *Poly) Sub(b *Poly) Poly {
	var s Poly
	for i := range s {
		s[i] = Sub(a[i], b[i])
	}
	return s
}

// Add returns a + b coefficient-wise.
func (a *NTTPoly) Add(b *NTTPoly) NTTPoly {
	var s NTTPoly
	for i := range s {
		s[i] = Add(a[i], b[i])
	}
	return s
}

// Zeroize clears the coefficients of a.
func (a *Poly) Zeroize() {
	clear(a[:])
}

// Zeroize clears the coefficients of a.
func (a *NTTPoly) Zeroize() {
	clear(a[:])
}

// Vec is a vector of standard-domain ring elements.
type Vec []Poly

// NTTVec is a vector of NTT-domain ring elements.
type NTTVec []NTTPoly

// Zeroize clears every element of v.
func (v Vec) Zeroize() {
	for i := range v {
		v[i].Zeroize()
	}
}

// Zeroize clears every element of v.
func (v NTTVec) Zeroize() {
	for i := range v {
		v[i].Zeroize()
	}
}

// DotNTT returns the inner product Σ a[i]∘b[i] in the NTT domain.
func DotNTT(a, b NTTVec) NTTPoly {
	var acc NTTPoly
	for i := range a {
		prod := MulNTT(&a[i], &b[i])
		acc = acc.Add(&prod)
	}
	return acc
}

// NTTAll transforms every element of v.
func NTTAll(v Vec) NTTVec {
	out := make(NTTVec, len(v))
	for i := range v {
		out[i] = NTT(&v[i])
	}
	return out
}
