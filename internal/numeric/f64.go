package numeric

import "math"

// F64 is the plain-real implementation of Scalar, used on the serving path
// where no gradient is ever needed.
type F64 float64

var _ Scalar[F64] = F64(0)

func (f F64) Add(o F64) F64 { return f + o }
func (f F64) Sub(o F64) F64 { return f - o }
func (f F64) Mul(o F64) F64 { return f * o }
func (f F64) Div(o F64) F64 { return f / o }
func (f F64) Neg() F64      { return -f }

func (f F64) Exp() F64 { return F64(math.Exp(float64(f))) }

func (f F64) Log() F64 { return F64(math.Log(float64(f))) }

func (f F64) Pow(exp F64) F64 { return F64(math.Pow(float64(f), float64(exp))) }

func (f F64) Max(o F64) F64 { return F64(math.Max(float64(f), float64(o))) }
func (f F64) Min(o F64) F64 { return F64(math.Min(float64(f), float64(o))) }

func (f F64) Clamp(lo, hi F64) F64 {
	return f.Max(lo).Min(hi)
}

// Lift ignores the receiver; F64 carries no state beyond its value.
func (f F64) Lift(v float64) F64 { return F64(v) }

func (f F64) Float64() float64 { return float64(f) }
