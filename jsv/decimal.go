package jsv

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Decimal arithmetic errors
var (
	ErrDivisionByZero = errors.New("decimal: division by zero")
	ErrOverflow       = errors.New("decimal: overflow")
)

// Decimal is a 128-bit decimal number: value = coefficient * 10^(-scale).
// It is the built-in scalar for exact numbers and is written as a plain
// number in both formats, keeping its scale ("1.50" stays "1.50").
type Decimal struct {
	Scale int8     // Digits after the decimal point: -127 to 127
	Coef  [16]byte // 128-bit coefficient (two's complement, big-endian)
}

// NewDecimalFromInt64 creates a Decimal from an int64.
func NewDecimalFromInt64(value int64) Decimal {
	return Decimal{Coef: intToCoef(big.NewInt(value))}
}

// NewDecimalFromString parses "123.45", "-0.001", "1e3" style input.
func NewDecimalFromString(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Decimal{}, fmt.Errorf("invalid decimal format: %q", s)
	}

	exp := 0
	if idx := strings.IndexAny(s, "eE"); idx >= 0 {
		e, err := strconv.Atoi(s[idx+1:])
		if err != nil {
			return Decimal{}, fmt.Errorf("invalid decimal exponent: %q", s)
		}
		exp = e
		s = s[:idx]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") || strings.ContainsAny(fracPart, "+-") {
		return Decimal{}, fmt.Errorf("invalid decimal format: %q", s)
	}

	scale := len(fracPart) - exp
	if scale < -127 || scale > 127 {
		return Decimal{}, fmt.Errorf("scale out of range: %d", scale)
	}

	coef, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Decimal{}, fmt.Errorf("invalid number: %q", s)
	}
	if coef.BitLen() > 127 {
		return Decimal{}, ErrOverflow
	}
	return Decimal{Scale: int8(scale), Coef: intToCoef(coef)}, nil
}

// NewDecimalFromFloat64 creates a Decimal from a float64 using its shortest
// round-trip representation.
func NewDecimalFromFloat64(f float64) (Decimal, error) {
	return NewDecimalFromString(strconv.FormatFloat(f, 'f', -1, 64))
}

// MustDecimal is like NewDecimalFromString but panics on error.
func MustDecimal(s string) Decimal {
	d, err := NewDecimalFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Int64 converts the decimal to int64, truncating the fractional part.
func (d Decimal) Int64() int64 {
	q := coefToInt(d.Coef[:])
	switch {
	case d.Scale > 0:
		q.Quo(q, pow10(int(d.Scale)))
	case d.Scale < 0:
		q.Mul(q, pow10(int(-d.Scale)))
	}
	return q.Int64()
}

// Float64 converts the decimal to float64. Precision may be lost.
func (d Decimal) Float64() float64 {
	f, _ := strconv.ParseFloat(d.String(), 64)
	return f
}

// String returns the decimal in plain notation.
func (d Decimal) String() string {
	coefStr := coefToInt(d.Coef[:]).String()

	if d.Scale == 0 {
		return coefStr
	}
	if d.Scale < 0 {
		if coefStr == "0" {
			return "0"
		}
		return coefStr + strings.Repeat("0", int(-d.Scale))
	}

	negative := false
	if coefStr[0] == '-' {
		negative = true
		coefStr = coefStr[1:]
	}

	if pad := int(d.Scale) + 1 - len(coefStr); pad > 0 {
		coefStr = strings.Repeat("0", pad) + coefStr
	}

	insertPos := len(coefStr) - int(d.Scale)
	result := coefStr[:insertPos] + "." + coefStr[insertPos:]
	if negative {
		result = "-" + result
	}
	return result
}

// MarshalText implements encoding.TextMarshaler.
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decimal) UnmarshalText(text []byte) error {
	v, err := NewDecimalFromString(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) (Decimal, error) {
	a, b, scale := align(d, other)
	a.Add(a, b)
	return fromBig(a, scale)
}

// Sub returns d - other.
func (d Decimal) Sub(other Decimal) (Decimal, error) {
	a, b, scale := align(d, other)
	a.Sub(a, b)
	return fromBig(a, scale)
}

// Mul returns d * other.
func (d Decimal) Mul(other Decimal) (Decimal, error) {
	a := coefToInt(d.Coef[:])
	a.Mul(a, coefToInt(other.Coef[:]))
	scale := int(d.Scale) + int(other.Scale)
	if scale > 127 || scale < -127 {
		return Decimal{}, ErrOverflow
	}
	return fromBig(a, int8(scale))
}

// Div returns d / other, truncated to the scale of d minus the scale of other.
func (d Decimal) Div(other Decimal) (Decimal, error) {
	b := coefToInt(other.Coef[:])
	if b.Sign() == 0 {
		return Decimal{}, ErrDivisionByZero
	}
	a := coefToInt(d.Coef[:])
	a.Quo(a, b)
	scale := int(d.Scale) - int(other.Scale)
	if scale > 127 || scale < -127 {
		return Decimal{}, ErrOverflow
	}
	return fromBig(a, int8(scale))
}

// Neg returns the negation.
func (d Decimal) Neg() Decimal {
	c := coefToInt(d.Coef[:])
	c.Neg(c)
	d.Coef = intToCoef(c)
	return d
}

// Cmp compares two decimals. Returns -1 if d < other, 0 if d == other, 1 if d > other.
func (d Decimal) Cmp(other Decimal) int {
	a, b, _ := align(d, other)
	return a.Cmp(b)
}

// Equal returns true if d and other denote the same number, whatever their scale.
func (d Decimal) Equal(other Decimal) bool {
	return d.Cmp(other) == 0
}

// IsZero returns true if d == 0.
func (d Decimal) IsZero() bool {
	return coefToInt(d.Coef[:]).Sign() == 0
}

// Sign returns -1, 0 or 1.
func (d Decimal) Sign() int {
	return coefToInt(d.Coef[:]).Sign()
}

// ============================================================
// Helper Functions
// ============================================================

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// align returns both coefficients scaled to the larger of the two scales.
func align(x, y Decimal) (*big.Int, *big.Int, int8) {
	a := coefToInt(x.Coef[:])
	b := coefToInt(y.Coef[:])
	switch {
	case x.Scale < y.Scale:
		a.Mul(a, pow10(int(y.Scale)-int(x.Scale)))
		return a, b, y.Scale
	case x.Scale > y.Scale:
		b.Mul(b, pow10(int(x.Scale)-int(y.Scale)))
	}
	return a, b, x.Scale
}

func fromBig(v *big.Int, scale int8) (Decimal, error) {
	if v.BitLen() > 127 {
		return Decimal{}, ErrOverflow
	}
	return Decimal{Scale: scale, Coef: intToCoef(v)}, nil
}

// intToCoef converts a big.Int to 16-byte two's complement representation.
func intToCoef(value *big.Int) [16]byte {
	var result [16]byte
	v := value
	if value.Sign() < 0 {
		// value + 2^128 is the two's complement
		v = new(big.Int).Add(value, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	bytes := v.Bytes()
	if len(bytes) > 16 {
		bytes = bytes[len(bytes)-16:]
	}
	copy(result[16-len(bytes):], bytes)
	return result
}

// coefToInt converts a 16-byte two's complement representation to big.Int.
func coefToInt(coef []byte) *big.Int {
	result := new(big.Int).SetBytes(coef)
	if coef[0]&0x80 != 0 {
		result.Sub(result, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return result
}
