package regression

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// MarketPoint is one observation from the historical market data file.
type MarketPoint struct {
	RawPrediction float64 `json:"rawPrediction"`
	Sentiment     float64 `json:"sentiment"`
	Price         float64 `json:"price"`
}

// Coefficients holds the fitted linear model
// price = Alpha*rawPrediction + Beta*normalizedSentiment + Intercept.
type Coefficients struct {
	Alpha     float64
	Beta      float64
	Intercept float64
}

// NormalizeSentiments rescales sentiment values to [0, 1] by min-max. When all
// values are equal the input is returned unchanged.
func NormalizeSentiments(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(values))
	if max == min {
		copy(out, values)
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}

// Fit runs ordinary least squares over the observations.
func Fit(points []MarketPoint) (Coefficients, error) {
	if len(points) < 3 {
		return Coefficients{}, errors.New("need at least 3 data points to fit coefficients")
	}

	sentiments := make([]float64, len(points))
	for i, p := range points {
		sentiments[i] = p.Sentiment
	}
	normalized := NormalizeSentiments(sentiments)

	n := len(points)
	x := mat.NewDense(n, 3, nil)
	y := mat.NewDense(n, 1, nil)
	for i, p := range points {
		x.Set(i, 0, p.RawPrediction)
		x.Set(i, 1, normalized[i])
		x.Set(i, 2, 1)
		y.Set(i, 0, p.Price)
	}

	var qr mat.QR
	qr.Factorize(x)

	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, y); err != nil {
		return Coefficients{}, err
	}

	return Coefficients{
		Alpha:     coef.At(0, 0),
		Beta:      coef.At(1, 0),
		Intercept: coef.At(2, 0),
	}, nil
}
