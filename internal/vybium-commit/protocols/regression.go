package protocols

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidDataset is returned when raw data cannot be fitted or quantized
var ErrInvalidDataset = errors.New("invalid dataset")

// LineFit is a least-squares fit y ≈ Slope*x + Intercept
type LineFit struct {
	Slope     float64
	Intercept float64
}

// PreparedInput is the quantized model and data that enter the circuit
type PreparedInput struct {
	Record *InputRecord
	Fit    LineFit
	SSE    *big.Int // integer sum of squared errors, as the circuit computes it
}

// FitLine fits y ≈ m*x + c by ordinary least squares
func FitLine(x []int64, y []float64) (LineFit, error) {
	if len(x) != len(y) {
		return LineFit{}, fmt.Errorf("%w: %d x values but %d y values", ErrInvalidDataset, len(x), len(y))
	}
	if len(x) < 2 {
		return LineFit{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidDataset, len(x))
	}

	xs := make([]float64, len(x))
	distinct := false
	for i, v := range x {
		xs[i] = float64(v)
		if v != x[0] {
			distinct = true
		}
	}
	if !distinct {
		return LineFit{}, fmt.Errorf("%w: all x values are equal", ErrInvalidDataset)
	}

	alpha, beta := stat.LinearRegression(xs, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(alpha, 0) || math.IsInf(beta, 0) {
		return LineFit{}, fmt.Errorf("%w: regression did not converge", ErrInvalidDataset)
	}
	return LineFit{Slope: beta, Intercept: alpha}, nil
}

// Quantize scales a float and truncates it toward zero
func Quantize(v float64, scale int64) (*big.Int, error) {
	scaled := math.Trunc(v * float64(scale))
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return nil, fmt.Errorf("%w: %v scaled by %d is not finite", ErrInvalidDataset, v, scale)
	}
	result, _ := new(big.Float).SetFloat64(scaled).Int(nil)
	return result, nil
}

// CircuitSSE computes Σ (y_i - (m*x_i + c))² with exact integer arithmetic
func CircuitSSE(x, y []*big.Int, m, c *big.Int) (*big.Int, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d x values but %d y values", ErrInvalidDataset, len(x), len(y))
	}

	sse := new(big.Int)
	pred := new(big.Int)
	diff := new(big.Int)
	for i := range x {
		pred.Mul(m, x[i])
		pred.Add(pred, c)
		diff.Sub(y[i], pred)
		diff.Mul(diff, diff)
		sse.Add(sse, diff)
	}
	return sse, nil
}

// Threshold adds a truncated fractional buffer to the SSE. buffer must be finite.
func Threshold(sse *big.Int, buffer float64) *big.Int {
	var extra *big.Int
	f, _ := new(big.Float).SetInt(sse).Float64()
	if product := math.Trunc(f * buffer); !math.IsInf(product, 0) && !math.IsNaN(product) {
		extra, _ = new(big.Float).SetFloat64(product).Int(nil)
	} else {
		// beyond float64 range
		extra, _ = new(big.Float).Mul(new(big.Float).SetInt(sse), big.NewFloat(buffer)).Int(nil)
	}
	return new(big.Int).Add(sse, extra)
}

// PrepareInput fits, quantizes and thresholds raw data into an input record.
//
// x stays unscaled, y, m and c are multiplied by scale and truncated, and the
// threshold is the integer SSE of the quantized model plus buffer*SSE.
func PrepareInput(x []int64, y []float64, scale int64, buffer float64) (*PreparedInput, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale must be positive, got %d", ErrInvalidDataset, scale)
	}
	if buffer < 0 || math.IsNaN(buffer) || math.IsInf(buffer, 0) {
		return nil, fmt.Errorf("%w: threshold buffer must be a non-negative number, got %v", ErrInvalidDataset, buffer)
	}

	fit, err := FitLine(x, y)
	if err != nil {
		return nil, err
	}

	xs := make([]*big.Int, len(x))
	ys := make([]*big.Int, len(y))
	for i := range x {
		if x[i] < 0 {
			return nil, fmt.Errorf("%w: x[%d] = %d is negative", ErrInvalidDataset, i, x[i])
		}
		xs[i] = big.NewInt(x[i])
		ys[i], err = Quantize(y[i], scale)
		if err != nil {
			return nil, fmt.Errorf("y[%d]: %w", i, err)
		}
		if ys[i].Sign() < 0 {
			return nil, fmt.Errorf("%w: scaled y[%d] = %s is negative", ErrInvalidDataset, i, ys[i].String())
		}
	}

	m, err := Quantize(fit.Slope, scale)
	if err != nil {
		return nil, fmt.Errorf("slope: %w", err)
	}
	c, err := Quantize(fit.Intercept, scale)
	if err != nil {
		return nil, fmt.Errorf("intercept: %w", err)
	}

	sse, err := CircuitSSE(xs, ys, m, c)
	if err != nil {
		return nil, err
	}

	return &PreparedInput{
		Record: &InputRecord{
			X: xs,
			Y: ys,
			Scalars: Scalars{
				M:         IntScalar(m),
				C:         IntScalar(c),
				Threshold: IntScalar(Threshold(sse, buffer)),
			},
		},
		Fit: fit,
		SSE: sse,
	}, nil
}
